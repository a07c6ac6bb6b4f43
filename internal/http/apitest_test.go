package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"shopkart/internal/config"
	"shopkart/internal/http/handlers"
	applog "shopkart/internal/log"
	"shopkart/internal/repos"
)

const testSecret = "test-secret"

// Seeded by repos.OpenDB: demo@shopkart.test is ADMIN, priya/rahul are USERs,
// all with password Demo123!, plus three products and one active api key.
const (
	adminEmail = "demo@shopkart.test"
	userEmail  = "priya@shopkart.test"
	otherEmail = "rahul@shopkart.test"
	seedPass   = "Demo123!"
	seedAPIKey = "dev-shopping-agent-key"
)

// newTestApp wires the real handlers over an in-memory database with the
// same route table the server uses.
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// :memory: databases are per-connection; keep the pool at one.
	db.SetMaxOpenConns(1)

	deps := handlers.NewDeps(db, config.Config{JWTSecret: testSecret})

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		},
	})
	app.Use(requestid.New())

	api := app.Group("/api")
	api.Post("/auth/signup", deps.AuthHandler.Signup)
	api.Post("/auth/login", deps.AuthHandler.Login)
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Get("/orders/track", deps.OrderHandler.Track)
	api.Post("/orders", handlers.RequireUser(deps.Auth), deps.OrderHandler.Place)
	api.Get("/orders", handlers.RequireUser(deps.Auth), deps.OrderHandler.MyOrders)
	api.Get("/reviews", deps.ReviewHandler.List)
	api.Post("/reviews", handlers.RequireUser(deps.Auth), deps.ReviewHandler.Create)
	api.Put("/reviews", handlers.RequireUser(deps.Auth), deps.ReviewHandler.Update)
	api.Delete("/reviews", handlers.RequireUser(deps.Auth), deps.ReviewHandler.Delete)
	api.Get("/users/profile", handlers.RequireUser(deps.Auth), deps.ProfileHandler.Get)
	api.Put("/users/profile", handlers.RequireUser(deps.Auth), deps.ProfileHandler.Update)

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

	v1 := api.Group("/v1", handlers.RequireAPIKey(deps.ApiKeys))
	v1.Get("/products", deps.V1Handler.Products)
	v1.Post("/orders", deps.V1Handler.PlaceOrder)

	return app, db
}

// doJSON sends a JSON request with optional bearer token and api key headers.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("decode body %q: %v", b, err)
	}
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email": email, "password": seedPass,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	if body.Token == "" {
		t.Fatal("login returned no token")
	}
	return body.Token
}
