package handlers

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"shopkart/internal/domain"
	applog "shopkart/internal/log"
	"shopkart/internal/repos"
	"shopkart/internal/validate"
)

type AdminHandler struct {
	Prods   *repos.ProductRepo
	Orders  *repos.OrderRepo
	Users   *repos.UserRepo
	Reviews *repos.ReviewRepo
}

// encodeArrayField normalizes an images/sizes/colors request field to its
// stored JSON-array string form. The field may arrive as a JSON array or as
// an already-serialized string.
func encodeArrayField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "[]"
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if json.Valid([]byte(asString)) && strings.HasPrefix(strings.TrimSpace(asString), "[") {
			return asString
		}
		return "[]"
	}
	var asArray []string
	if err := json.Unmarshal(raw, &asArray); err == nil {
		b, _ := json.Marshal(asArray)
		return string(b)
	}
	return "[]"
}

func pagination(c *fiber.Ctx) (page, limit, skip int) {
	page = validate.Page(c.Query("page"))
	limit = validate.Limit(c.Query("limit"), 50)
	skip = (page - 1) * limit
	return
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ---------- Products ----------

// GET /api/admin/products
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	page, limit, skip := pagination(c)
	prods, total, err := h.Prods.AdminList(c.Query("search"), c.Query("category"), limit, skip)
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{
		"products":   prods,
		"total":      total,
		"page":       page,
		"totalPages": totalPages(total, limit),
	})
}

type adminProductBody struct {
	ID          string          `json:"id"`
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Price       *int64          `json:"price"`
	BasePrice   *int64          `json:"basePrice"`
	Category    *string         `json:"category"`
	Image       *string         `json:"image"`
	Images      json.RawMessage `json:"images"`
	Sizes       json.RawMessage `json:"sizes"`
	Colors      json.RawMessage `json:"colors"`
	Stock       *int            `json:"stock"`
	Active      *bool           `json:"isActive"`
}

// POST /api/admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var body adminProductBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.ID == "" || body.Name == nil || body.Price == nil || body.Category == nil {
		return jsonError(c, fiber.StatusBadRequest, "missing required fields")
	}
	if _, ok := validate.ID(body.ID); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product ID")
	}

	p := domain.Product{
		ID:         body.ID,
		Name:       *body.Name,
		Category:   *body.Category,
		Price:      *body.Price,
		BasePrice:  *body.Price,
		Image:      "/placeholder.svg",
		ImagesJSON: encodeArrayField(body.Images),
		SizesJSON:  encodeArrayField(body.Sizes),
		ColorsJSON: encodeArrayField(body.Colors),
		Active:     true,
	}
	if body.Description != nil {
		p.Description = *body.Description
	}
	if body.BasePrice != nil {
		p.BasePrice = *body.BasePrice
	}
	if body.Image != nil {
		p.Image = *body.Image
	}
	if body.Stock != nil {
		p.Stock = *body.Stock
	}

	if err := h.Prods.Create(p); err != nil {
		applog.Error(c, "admin.products.create.fail", err, map[string]any{"product_id": p.ID})
		return jsonError(c, fiber.StatusBadRequest, "could not create product")
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/admin/products
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	var body adminProductBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.ID == "" {
		return jsonError(c, fiber.StatusBadRequest, "product ID required")
	}

	cols := map[string]any{}
	if body.Name != nil {
		cols["name"] = *body.Name
	}
	if body.Description != nil {
		cols["description"] = *body.Description
	}
	if body.Price != nil {
		cols["price"] = *body.Price
	}
	if body.BasePrice != nil {
		cols["base_price"] = *body.BasePrice
	}
	if body.Category != nil {
		cols["category"] = *body.Category
	}
	if body.Image != nil {
		cols["image"] = *body.Image
	}
	if body.Images != nil {
		cols["images_json"] = encodeArrayField(body.Images)
	}
	if body.Sizes != nil {
		cols["sizes_json"] = encodeArrayField(body.Sizes)
	}
	if body.Colors != nil {
		cols["colors_json"] = encodeArrayField(body.Colors)
	}
	if body.Stock != nil {
		cols["stock"] = *body.Stock
	}
	if body.Active != nil {
		cols["is_active"] = *body.Active
	}

	if err := h.Prods.Update(body.ID, cols); err != nil {
		applog.Error(c, "admin.products.update.fail", err, map[string]any{"product_id": body.ID})
		return jsonError(c, fiber.StatusBadRequest, "could not update product")
	}

	p, err := h.Prods.Get(body.ID)
	if err == sql.ErrNoRows {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		applog.Error(c, "admin.products.update.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": body.ID})
	return c.JSON(p)
}

// DELETE /api/admin/products?id=
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "product ID required")
	}
	if err := h.Prods.Delete(id); err != nil {
		applog.Error(c, "admin.products.delete.fail", err, map[string]any{"product_id": id})
		return jsonError(c, fiber.StatusBadRequest, "could not delete product")
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "product deleted"})
}

// ---------- Orders ----------

type adminOrderRow struct {
	domain.Order
	ShippingAddress json.RawMessage       `json:"shippingAddress"`
	User            fiber.Map             `json:"user"`
	Items           []repos.OrderItemRow  `json:"items"`
	Tracking        *domain.OrderTracking `json:"tracking"`
}

func (h *AdminHandler) orderRow(o domain.Order) (adminOrderRow, error) {
	items, err := h.Orders.Items(o.ID)
	if err != nil {
		return adminOrderRow{}, err
	}
	tracking, err := h.Orders.Tracking(o.ID)
	if err != nil {
		return adminOrderRow{}, err
	}
	user := fiber.Map{}
	if u, err := h.Users.ByID(o.UserID); err == nil {
		user = fiber.Map{"id": u.ID, "name": u.Name, "email": u.Email}
	}
	addr := json.RawMessage(o.AddressJSON)
	if !json.Valid(addr) {
		addr = json.RawMessage("null")
	}
	return adminOrderRow{Order: o, ShippingAddress: addr, User: user, Items: items, Tracking: tracking}, nil
}

// GET /api/admin/orders
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	page, limit, skip := pagination(c)
	orders, total, err := h.Orders.AdminList(c.Query("status"), limit, skip)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	rows := make([]adminOrderRow, 0, len(orders))
	for _, o := range orders {
		row, err := h.orderRow(o)
		if err != nil {
			applog.Error(c, "admin.orders.list.fail", err, nil)
			return jsonError(c, fiber.StatusInternalServerError, "internal server error")
		}
		rows = append(rows, row)
	}
	return c.JSON(fiber.Map{
		"orders":     rows,
		"total":      total,
		"page":       page,
		"totalPages": totalPages(total, limit),
	})
}

type orderStatusBody struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// PUT /api/admin/orders updates the status and the tracking mirror.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var body orderStatusBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.OrderID == "" || body.Status == "" {
		return jsonError(c, fiber.StatusBadRequest, "order ID and status required")
	}

	err := h.Orders.UpdateStatus(body.OrderID, body.Status)
	if err == sql.ErrNoRows {
		return jsonError(c, fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": body.OrderID})
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	o, _, err := h.Orders.GetByID(body.OrderID)
	if err != nil {
		applog.Error(c, "admin.orders.update.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	row, err := h.orderRow(o)
	if err != nil {
		applog.Error(c, "admin.orders.update.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": body.OrderID, "status": body.Status})
	return c.JSON(row)
}

// ---------- Users ----------

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, limit, skip := pagination(c)
	users, total, err := h.Users.AdminList(c.Query("search"), limit, skip)
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	return c.JSON(fiber.Map{
		"users":      users,
		"total":      total,
		"page":       page,
		"totalPages": totalPages(total, limit),
	})
}

type userRoleBody struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// PUT /api/admin/users updates a user role.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	var body userRoleBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.UserID == "" || body.Role == "" {
		return jsonError(c, fiber.StatusBadRequest, "user ID and role required")
	}
	role, ok := validate.Role(body.Role)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid role")
	}

	if err := h.Users.UpdateRole(body.UserID, role); err != nil {
		applog.Error(c, "admin.users.role.fail", err, map[string]any{"user_id": body.UserID})
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	u, err := h.Users.ByID(body.UserID)
	if err == sql.ErrNoRows {
		return jsonError(c, fiber.StatusNotFound, "user not found")
	}
	if err != nil {
		applog.Error(c, "admin.users.role.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	applog.Audit(c, "admin.users.role", map[string]any{"user_id": body.UserID, "role": role})
	return c.JSON(u)
}

// ---------- Stats ----------

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	totalProducts, err := h.Prods.CountAll()
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	totalUsers, err := h.Users.CountAll()
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	totalOrders, err := h.Orders.CountAll()
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	lowStock, err := h.Prods.CountLowStock(10)
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	revenue, err := h.Orders.Revenue()
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	recent, err := h.Orders.ListLatest(10)
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(fiber.Map{
		"totalProducts":    totalProducts,
		"totalUsers":       totalUsers,
		"totalOrders":      totalOrders,
		"lowStockProducts": lowStock,
		"totalRevenue":     revenue,
		"recentOrders":     recent,
	})
}
