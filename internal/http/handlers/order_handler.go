package handlers

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "shopkart/internal/log"
	"shopkart/internal/repos"
	"shopkart/internal/services"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type placeOrderBody struct {
	Items           []services.ItemInput `json:"items"`
	ShippingAddress json.RawMessage      `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
	CustomerName    string               `json:"customerName"`
	CustomerEmail   string               `json:"customerEmail"`
	CustomerPhone   string               `json:"customerPhone"`
	Notes           string               `json:"notes"`
}

// POST /api/orders  (storefront-priced policy)
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var body placeOrderBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contact := services.Contact{Name: body.CustomerName, Email: body.CustomerEmail, Phone: body.CustomerPhone}
	order, err := h.Orders.PlaceStorefront(userID(c), body.Items, body.ShippingAddress, body.PaymentMethod, contact, body.Notes)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrProductNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, repos.ErrInsufficientStock):
		// Internal storefront reports short stock as a validation failure.
		applog.Security(c, "order.place.stock", map[string]any{"error": err.Error()})
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case err == services.ErrNoItems || err == services.ErrAddressRequired || err == services.ErrPaymentRequired:
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		applog.Error(c, "order.place.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})
	return c.Status(fiber.StatusCreated).JSON(order)
}

// GET /api/orders
func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	orders, err := h.Orders.MyOrders(userID(c))
	if err != nil {
		applog.Error(c, "orders.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(orders)
}

// GET /api/orders/track?orderNumber=|orderId=
// Public: tracking by order number is a customer-facing capability and
// performs no ownership check.
func (h *OrderHandler) Track(c *fiber.Ctx) error {
	value := strings.TrimSpace(c.Query("orderNumber"))
	if value == "" {
		value = strings.TrimSpace(c.Query("orderId"))
	}
	if value == "" {
		return jsonError(c, fiber.StatusBadRequest, "order number or order ID is required")
	}

	order, err := h.Orders.Track(value)
	if err == services.ErrOrderNotFound {
		return jsonError(c, fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		applog.Error(c, "orders.track.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(order)
}
