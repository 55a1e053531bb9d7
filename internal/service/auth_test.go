package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestAuth(t *testing.T, ttl time.Duration) *AuthService {
	t.Helper()
	creds := []Credential{
		{AdminID: "adm-1", Email: "admin@example.com", PasswordHash: HashPassword("hunter2")},
	}
	return NewAuthService(creds, "test-secret-key-for-jwt", ttl)
}

func TestLoginAndValidateRoundTrip(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	ctx := context.Background()

	token, p, err := auth.Login(ctx, "admin@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if p.AdminID != "adm-1" || p.Email != "admin@example.com" {
		t.Errorf("principal = %+v", p)
	}

	got, err := auth.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got.AdminID != "adm-1" || got.Email != "admin@example.com" {
		t.Errorf("validated principal = %+v", got)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	ctx := context.Background()

	if _, _, err := auth.Login(ctx, "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	auth.tokenTTL = -time.Hour
	ctx := context.Background()

	token, _, err := auth.Login(ctx, "admin@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := auth.ValidateToken(ctx, token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	auth := newTestAuth(t, time.Hour)
	if _, err := auth.ValidateToken(context.Background(), "garbage.token.here"); err == nil {
		t.Fatal("expected error for invalid token")
	}
}
