package handlers_test

import (
	"net/http"
	"testing"
)

func TestAuthAPI_SignupAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/signup", "", map[string]string{
		"email":    "new@example.com",
		"password": "Str0ngPass",
		"name":     "New Shopper",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: status %d", resp.StatusCode)
	}
	var signup struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
			Hash  string `json:"passwordHash"`
		} `json:"user"`
	}
	decodeBody(t, resp, &signup)
	if signup.Token == "" {
		t.Error("signup returned no token")
	}
	if signup.User.Role != "USER" {
		t.Errorf("new accounts must be USER, got %q", signup.User.Role)
	}
	if signup.User.Hash != "" {
		t.Error("password hash leaked in signup response")
	}

	// Same email again is rejected.
	resp = doJSON(t, app, "POST", "/api/auth/signup", "", map[string]string{
		"email": "new@example.com", "password": "Str0ngPass",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate signup: status %d", resp.StatusCode)
	}

	// Fresh account can log in through the real endpoint.
	resp = doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email": "new@example.com", "password": "Str0ngPass",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
}

func TestAuthAPI_BadCredentialsAndMissingToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
		"email": userEmail, "password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/users/profile", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/users/profile", "not-a-jwt", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d", resp.StatusCode)
	}
}

func TestProfileAPI_GetAndUpdate(t *testing.T) {
	app, _ := newTestApp(t)
	token := login(t, app, userEmail)

	resp := doJSON(t, app, "GET", "/api/users/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile get: status %d", resp.StatusCode)
	}
	var profile struct {
		Email string `json:"email"`
		Count struct {
			Orders  int `json:"orders"`
			Reviews int `json:"reviews"`
		} `json:"_count"`
	}
	decodeBody(t, resp, &profile)
	if profile.Email != userEmail {
		t.Errorf("profile email = %q, want %q", profile.Email, userEmail)
	}

	resp = doJSON(t, app, "PUT", "/api/users/profile", token, map[string]string{
		"name": "Priya S.", "phone": "+91-90000-00000",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile update: status %d", resp.StatusCode)
	}
}
