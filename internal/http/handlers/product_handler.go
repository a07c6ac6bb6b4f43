package handlers

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "shopkart/internal/log"
	"shopkart/internal/repos"
	"shopkart/internal/services"
	"shopkart/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func parsePrice(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := repos.Filter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		MinPrice: parsePrice(c.Query("minPrice")),
		MaxPrice: parsePrice(c.Query("maxPrice")),
		SortBy:   strings.TrimSpace(c.Query("sortBy")),
		Limit:    validate.Limit(c.Query("limit"), 50),
		Offset:   validate.Offset(c.Query("offset")),
	}

	page, err := h.Catalog.List(f)
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(page)
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "product ID is required")
	}

	p, err := h.Catalog.Get(id)
	if err == sql.ErrNoRows {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		applog.Error(c, "products.detail.fail", err, map[string]any{"product_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(p)
}
