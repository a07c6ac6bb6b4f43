package services_test

import (
	"strings"
	"testing"

	"shopkart/internal/repos"
	"shopkart/internal/services"
)

func newAuthService(t *testing.T) *services.AuthService {
	t.Helper()
	return services.NewAuthService(repos.NewUserRepo(memdb(t)), "test-secret")
}

func TestAuth_SignupLoginRoundTrip(t *testing.T) {
	svc := newAuthService(t)

	u, tok, err := svc.Signup("alice@example.com", "Sup3rSecret", "")
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "alice" {
		t.Fatalf("name should default to email local part, got %q", u.Name)
	}
	if u.Role != "USER" {
		t.Fatalf("want USER role, got %s", u.Role)
	}
	if !strings.HasPrefix(u.Hash, "$2") {
		t.Fatalf("password not bcrypt-hashed: %q", u.Hash)
	}

	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != u.ID || claims.Email != u.Email || claims.Role != "USER" {
		t.Fatalf("bad claims: %+v", claims)
	}

	u2, tok2, err := svc.Login("alice@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatal(err)
	}
	if u2.ID != u.ID || tok2 == "" {
		t.Fatalf("login mismatch: %+v", u2)
	}
}

func TestAuth_RejectsBadCredsAndDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	if _, _, err := svc.Signup("bob@example.com", "Sup3rSecret", "Bob"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Signup("bob@example.com", "Other1234", "Bob II"); err != services.ErrEmailTaken {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
	if _, _, err := svc.Login("bob@example.com", "wrongpass"); err != services.ErrBadCreds {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	if _, _, err := svc.Login("nobody@example.com", "whatever1"); err != services.ErrBadCreds {
		t.Fatalf("want ErrBadCreds for unknown email, got %v", err)
	}
}

func TestAuth_ParseRejectsForgedToken(t *testing.T) {
	svc := newAuthService(t)
	other := newAuthService(t) // different in-memory db, same claims shape

	other.Secret = "different-secret"
	_, tok, err := other.Signup("eve@example.com", "Sup3rSecret", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Parse(tok); err != services.ErrBadToken {
		t.Fatalf("token signed with another secret must fail, got %v", err)
	}
	if _, err := svc.Parse("not-a-token"); err != services.ErrBadToken {
		t.Fatalf("garbage token must fail, got %v", err)
	}
}
