package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "shopkart/internal/log"
	"shopkart/internal/repos"
	"shopkart/internal/services"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// RequireUser verifies the bearer token and stashes the claims in Locals.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return jsonError(c, fiber.StatusUnauthorized, "authentication required")
		}
		claims, err := auth.Parse(tok)
		if err != nil {
			applog.Security(c, "auth.token.invalid", nil)
			return jsonError(c, fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals("userID", claims.UserID)
		c.Locals("userEmail", claims.Email)
		c.Locals("userRole", claims.Role)
		return c.Next()
	}
}

// RequireAdmin verifies the bearer token and the ADMIN role claim.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return jsonError(c, fiber.StatusUnauthorized, "authentication required")
		}
		claims, err := auth.Parse(tok)
		if err != nil {
			applog.Security(c, "auth.token.invalid", nil)
			return jsonError(c, fiber.StatusUnauthorized, "invalid token")
		}
		if claims.Role != "ADMIN" {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": claims.UserID})
			return jsonError(c, fiber.StatusForbidden, "admin access required")
		}
		c.Locals("userID", claims.UserID)
		c.Locals("userEmail", claims.Email)
		c.Locals("userRole", claims.Role)
		return c.Next()
	}
}

// RequireAPIKey gates the v1 machine surface on the x-api-key header. A valid
// lookup touches the key's last-used timestamp as a side effect.
func RequireAPIKey(keys *repos.ApiKeyRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("x-api-key")
		if key == "" {
			return jsonError(c, fiber.StatusUnauthorized, "invalid or missing API key")
		}
		rec, err := keys.FindActive(key)
		if err != nil {
			applog.Error(c, "apikey.lookup.fail", err, nil)
			return jsonError(c, fiber.StatusUnauthorized, "invalid or missing API key")
		}
		if rec == nil {
			applog.Security(c, "apikey.invalid", nil)
			return jsonError(c, fiber.StatusUnauthorized, "invalid or missing API key")
		}
		if err := keys.TouchLastUsed(rec.ID); err != nil {
			applog.Error(c, "apikey.touch.fail", err, map[string]any{"key_id": rec.ID})
		}
		c.Locals("apiKeyID", rec.ID)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
