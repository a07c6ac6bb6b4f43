package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"shopkart/internal/config"
	"shopkart/internal/http/handlers"
	applog "shopkart/internal/log"
	"shopkart/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and return a generic body; never leak internals
			applog.Error(c, "server.error", err, nil)
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok && fe.Code == fiber.StatusMethodNotAllowed {
				code = fe.Code
			}
			if code == fiber.StatusMethodNotAllowed {
				return c.Status(code).JSON(fiber.Map{"error": "method not allowed"})
			}
			return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg)

	api := app.Group("/api")

	// Auth (login throttled)
	api.Post("/auth/signup", deps.AuthHandler.Signup)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), deps.AuthHandler.Login)

	// Catalog
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Detail)

	// Orders (tracking is public; the rest needs a bearer token)
	api.Get("/orders/track", deps.OrderHandler.Track)
	api.Post("/orders", handlers.RequireUser(deps.Auth), deps.OrderHandler.Place)
	api.Get("/orders", handlers.RequireUser(deps.Auth), deps.OrderHandler.MyOrders)

	// Reviews
	api.Get("/reviews", deps.ReviewHandler.List)
	api.Post("/reviews", handlers.RequireUser(deps.Auth), deps.ReviewHandler.Create)
	api.Put("/reviews", handlers.RequireUser(deps.Auth), deps.ReviewHandler.Update)
	api.Delete("/reviews", handlers.RequireUser(deps.Auth), deps.ReviewHandler.Delete)

	// Profile
	api.Get("/users/profile", handlers.RequireUser(deps.Auth), deps.ProfileHandler.Get)
	api.Put("/users/profile", handlers.RequireUser(deps.Auth), deps.ProfileHandler.Update)

	// Admin
	admin := api.Group("/admin", handlers.RequireAdmin(deps.Auth))
	admin.Get("/products", deps.AdminHandler.ListProducts)
	admin.Post("/products", deps.AdminHandler.CreateProduct)
	admin.Put("/products", deps.AdminHandler.UpdateProduct)
	admin.Delete("/products", deps.AdminHandler.DeleteProduct)
	admin.Get("/orders", deps.AdminHandler.ListOrders)
	admin.Put("/orders", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/users", deps.AdminHandler.ListUsers)
	admin.Put("/users", deps.AdminHandler.UpdateUserRole)
	admin.Get("/stats", deps.AdminHandler.Stats)

	// v1 machine surface, gated by x-api-key
	v1 := api.Group("/v1", handlers.RequireAPIKey(deps.ApiKeys))
	v1.Get("/products", deps.V1Handler.Products)
	v1.Post("/orders", deps.V1Handler.PlaceOrder)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
