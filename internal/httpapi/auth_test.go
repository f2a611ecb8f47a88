package httpapi

import (
	"testing"
	"time"

	"tindapos/backend/internal/domain"
	"tindapos/backend/internal/store/memory"
)

func TestLoginAndParseTokenRoundTrip(t *testing.T) {
	auth := NewAuthManager("test-secret-at-least-32-characters!!", time.Hour, memory.NewSeeded())

	resp, err := auth.Login(domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestParseTokenRejectsForgedToken(t *testing.T) {
	auth := NewAuthManager("test-secret-at-least-32-characters!!", time.Hour, memory.NewSeeded())
	other := NewAuthManager("another-secret-at-least-32-chars!!!!", time.Hour, memory.NewSeeded())

	resp, err := other.Login(domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("token signed with a different secret must be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	auth := NewAuthManager("test-secret-at-least-32-characters!!", time.Hour, memory.NewSeeded())

	token, err := auth.sign("admin", "admin", time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestCreateCashierValidation(t *testing.T) {
	auth := NewAuthManager("test-secret-at-least-32-characters!!", time.Hour, memory.NewSeeded())

	cases := []domain.CashierCreateRequest{
		{Username: "ab", Password: "secret123"},
		{Username: "has space", Password: "secret123"},
		{Username: "validname", Password: "short"},
		{Username: "cashier", Password: "secret123"}, // already seeded
	}
	for i, req := range cases {
		if _, err := auth.CreateCashier(req); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}

	created, err := auth.CreateCashier(domain.CashierCreateRequest{Username: "NewKid", Password: "secret123"})
	if err != nil {
		t.Fatalf("create cashier failed: %v", err)
	}
	if created.Username != "newkid" || created.Role != "cashier" || !created.Active {
		t.Fatalf("unexpected cashier: %+v", created)
	}

	if _, err := auth.Login(domain.LoginRequest{Username: "newkid", Password: "secret123"}); err != nil {
		t.Fatalf("new cashier must be able to log in: %v", err)
	}
}
