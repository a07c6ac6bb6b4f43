package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// doKeyed sends a JSON request authenticated with an x-api-key header.
func doKeyed(t *testing.T, app *fiber.App, method, path, key string, body any) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestV1API_RequiresAPIKey(t *testing.T) {
	app, _ := newTestApp(t)

	if resp := doKeyed(t, app, "GET", "/api/v1/products", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no key: status %d, want 401", resp.StatusCode)
	}
	if resp := doKeyed(t, app, "GET", "/api/v1/products", "not-a-real-key", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bogus key: status %d, want 401", resp.StatusCode)
	}
	if resp := doKeyed(t, app, "GET", "/api/v1/products", seedAPIKey, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("seeded key: status %d, want 200", resp.StatusCode)
	}
}

func TestV1API_ProductsListAndByID(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doKeyed(t, app, "GET", "/api/v1/products?category=men-indian", seedAPIKey, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	var page struct {
		Products []struct {
			ID string `json:"id"`
		} `json:"products"`
		Total int `json:"total"`
	}
	decodeBody(t, resp, &page)
	if page.Total != 1 || len(page.Products) != 1 || page.Products[0].ID != "silk-kurta-1" {
		t.Errorf("men-indian list = %+v, want just silk-kurta-1", page)
	}

	resp = doKeyed(t, app, "GET", "/api/v1/products?id=denim-jacket-1", seedAPIKey, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("by id: status %d", resp.StatusCode)
	}
	var view struct {
		ID     string   `json:"id"`
		Images []string `json:"images"`
	}
	decodeBody(t, resp, &view)
	if view.ID != "denim-jacket-1" || len(view.Images) != 1 {
		t.Errorf("by id = %+v, want denim-jacket-1 with decoded images", view)
	}

	resp = doKeyed(t, app, "GET", "/api/v1/products?id=no-such", seedAPIKey, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status %d, want 404", resp.StatusCode)
	}
}

func TestV1API_OrderTrustsClientPrices(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doKeyed(t, app, "POST", "/api/v1/orders", seedAPIKey, map[string]any{
		"items":           []map[string]any{{"productId": "silk-kurta-1", "quantity": 2, "price": 100}},
		"shippingAddress": shipTo,
		"paymentMethod":   "CARD",
		"customerName":    "Agent Customer",
		"customerEmail":   "agent-customer@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("v1 order: status %d", resp.StatusCode)
	}
	var body struct {
		Success bool `json:"success"`
		Order   struct {
			OrderNumber   string `json:"orderNumber"`
			Total         int64  `json:"total"`
			PaymentStatus string `json:"paymentStatus"`
			Items         []struct {
				Price int64 `json:"price"`
			} `json:"items"`
		} `json:"order"`
	}
	decodeBody(t, resp, &body)
	if !body.Success {
		t.Error("success = false, want true")
	}
	// Client-priced: no shipping, no tax, the claimed price stands.
	if body.Order.Total != 200 {
		t.Errorf("total = %d, want 200", body.Order.Total)
	}
	if len(body.Order.Items) != 1 || body.Order.Items[0].Price != 100 {
		t.Errorf("items = %+v, want the client price of 100", body.Order.Items)
	}
	if body.Order.PaymentStatus != "PAID" {
		t.Errorf("paymentStatus = %q, want PAID for CARD", body.Order.PaymentStatus)
	}

	// Stock still moves: the two units are gone.
	resp = doJSON(t, app, "GET", "/api/products/silk-kurta-1", "", nil)
	var detail struct {
		Stock int `json:"stock"`
	}
	decodeBody(t, resp, &detail)
	if detail.Stock != 23 {
		t.Errorf("stock after v1 order = %d, want 23", detail.Stock)
	}

	// The placed order is trackable through the public endpoint.
	resp = doJSON(t, app, "GET", "/api/orders/track?orderNumber="+body.Order.OrderNumber, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("track v1 order: status %d", resp.StatusCode)
	}
}

func TestV1API_InsufficientStockIsConflict(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doKeyed(t, app, "POST", "/api/v1/orders", seedAPIKey, map[string]any{
		"items":           []map[string]any{{"productId": "saree-banarasi-1", "quantity": 100, "price": 5499}},
		"shippingAddress": shipTo,
		"paymentMethod":   "CARD",
		"customerEmail":   "agent-customer@example.com",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("short stock on v1: status %d, want 409", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/products/saree-banarasi-1", "", nil)
	var detail struct {
		Stock int `json:"stock"`
	}
	decodeBody(t, resp, &detail)
	if detail.Stock != 6 {
		t.Errorf("stock after conflict = %d, want 6", detail.Stock)
	}
}

func TestV1API_KeyUseIsRecorded(t *testing.T) {
	app, db := newTestApp(t)

	if resp := doKeyed(t, app, "GET", "/api/v1/products", seedAPIKey, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}

	var lastUsed sql.NullString
	if err := db.Get(&lastUsed, `SELECT last_used FROM api_keys WHERE key = ?`, seedAPIKey); err != nil {
		t.Fatal(err)
	}
	if !lastUsed.Valid || lastUsed.String == "" {
		t.Error("last_used not recorded after a keyed request")
	}
}
