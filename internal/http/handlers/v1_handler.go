package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "shopkart/internal/log"
	"shopkart/internal/repos"
	"shopkart/internal/services"
	"shopkart/internal/validate"
)

// V1Handler serves the API-key-gated machine surface. Its pricing policy is
// client-priced and intentionally different from the storefront's.
type V1Handler struct {
	Catalog *services.CatalogService
	Orders  *services.OrderService
}

// GET /api/v1/products
func (h *V1Handler) Products(c *fiber.Ctx) error {
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		p, err := h.Catalog.GetView(id)
		if err == sql.ErrNoRows {
			return jsonError(c, fiber.StatusNotFound, "product not found")
		}
		if err != nil {
			applog.Error(c, "v1.products.get.fail", err, map[string]any{"product_id": id})
			return jsonError(c, fiber.StatusInternalServerError, "internal server error")
		}
		return c.JSON(p)
	}

	f := repos.Filter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		MinPrice: parsePrice(c.Query("minPrice")),
		MaxPrice: parsePrice(c.Query("maxPrice")),
		Limit:    validate.Limit(c.Query("limit"), 50),
		Offset:   validate.Offset(c.Query("offset")),
	}
	page, err := h.Catalog.List(f)
	if err != nil {
		applog.Error(c, "v1.products.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(page)
}

type v1OrderBody struct {
	UserID          string               `json:"userId"`
	Items           []services.ItemInput `json:"items"`
	ShippingAddress json.RawMessage      `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
	CustomerName    string               `json:"customerName"`
	CustomerEmail   string               `json:"customerEmail"`
	CustomerPhone   string               `json:"customerPhone"`
}

// POST /api/v1/orders  (client-priced policy)
func (h *V1Handler) PlaceOrder(c *fiber.Ctx) error {
	var body v1OrderBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contact := services.Contact{Name: body.CustomerName, Email: body.CustomerEmail, Phone: body.CustomerPhone}
	order, err := h.Orders.PlaceClientPriced(body.UserID, body.Items, body.ShippingAddress, body.PaymentMethod, contact)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrProductNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, repos.ErrInsufficientStock):
		// The machine surface reports short stock as a conflict, not a
		// validation failure. Keep the two codes distinct.
		applog.Security(c, "v1.order.place.stock", map[string]any{"error": err.Error()})
		return jsonError(c, fiber.StatusConflict, err.Error())
	case err == services.ErrNoItems || err == services.ErrAddressRequired || err == services.ErrPaymentRequired:
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		applog.Error(c, "v1.order.place.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	applog.Audit(c, "v1.order.place", map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"order": fiber.Map{
			"id":            order.ID,
			"orderNumber":   order.OrderNumber,
			"total":         order.Total,
			"status":        order.Status,
			"paymentStatus": order.PaymentStatus,
			"createdAt":     order.CreatedAt,
			"items":         order.Items,
		},
	})
}
