package handlers

import "github.com/gofiber/fiber/v2"

// All error responses share the {"error": message} body shape.
func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
