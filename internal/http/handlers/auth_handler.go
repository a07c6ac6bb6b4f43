package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shopkart/internal/log"
	"shopkart/internal/services"
	"shopkart/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var body credentials
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	email, ok := validate.Email(body.Email)
	if !ok {
		applog.Security(c, "auth.signup.fail", map[string]any{"reason": "bad_email"})
		return jsonError(c, fiber.StatusBadRequest, "valid email is required")
	}
	if !validate.Password(body.Password) {
		applog.Security(c, "auth.signup.fail", map[string]any{"reason": "bad_password"})
		return jsonError(c, fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	u, tok, err := h.Auth.Signup(email, body.Password, body.Name)
	if err == services.ErrEmailTaken {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		applog.Error(c, "auth.signup.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	applog.Audit(c, "auth.signup", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u, "token": tok})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body credentials
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	u, tok, err := h.Auth.Login(body.Email, body.Password)
	if err == services.ErrBadCreds {
		applog.Security(c, "auth.login.fail", map[string]any{"email": body.Email})
		return jsonError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		applog.Error(c, "auth.login.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	applog.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"user": u, "token": tok})
}
