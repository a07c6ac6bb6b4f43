package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	applog "shopkart/internal/log"
	"shopkart/internal/repos"
)

type ProfileHandler struct {
	Users   *repos.UserRepo
	Reviews *repos.ReviewRepo
}

// GET /api/users/profile
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	uid := userID(c)
	u, err := h.Users.ByID(uid)
	if err == sql.ErrNoRows {
		return jsonError(c, fiber.StatusNotFound, "user not found")
	}
	if err != nil {
		applog.Error(c, "profile.get.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	orderCount, err := h.Users.CountOrders(uid)
	if err != nil {
		applog.Error(c, "profile.get.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	reviewCount, err := h.Reviews.CountByUser(uid)
	if err != nil {
		applog.Error(c, "profile.get.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(fiber.Map{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"phone":      u.Phone,
		"role":       u.Role,
		"isVerified": u.Verified,
		"createdAt":  u.CreatedAt,
		"_count": fiber.Map{
			"orders":  orderCount,
			"reviews": reviewCount,
		},
	})
}

type profileBody struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// PUT /api/users/profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var body profileBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	cols := map[string]any{}
	if body.Name != nil && *body.Name != "" {
		cols["name"] = *body.Name
	}
	if body.Phone != nil {
		cols["phone"] = *body.Phone
	}
	if err := h.Users.UpdateProfile(userID(c), cols); err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	u, err := h.Users.ByID(userID(c))
	if err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	applog.Audit(c, "profile.update", nil)
	return c.JSON(u)
}
