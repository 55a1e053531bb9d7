package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("") // in-memory SQLite
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &Profile{Name: "prod", BaseURL: "https://api.example.com"}
	if err := s.CreateProfile(ctx, p); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if p.ID == 0 {
		t.Error("CreateProfile did not populate ID")
	}
	if p.RetryAttempts != 3 || p.RetryDelay != time.Second {
		t.Errorf("defaults not applied: attempts=%d delay=%v", p.RetryAttempts, p.RetryDelay)
	}

	got, err := s.GetProfile(ctx, "prod")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", got.BaseURL)
	}
	if got.FieldMap == nil {
		t.Error("FieldMap should default, got nil")
	}

	if err := s.DeleteProfile(ctx, "prod"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if _, err := s.GetProfile(ctx, "prod"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: err = %v, want ErrNotFound", err)
	}
}

func TestSetCurrentIsExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"prod", "local"} {
		if err := s.CreateProfile(ctx, &Profile{Name: name, BaseURL: "http://" + name}); err != nil {
			t.Fatalf("CreateProfile(%s): %v", name, err)
		}
	}

	if err := s.SetCurrent(ctx, "prod"); err != nil {
		t.Fatalf("SetCurrent(prod): %v", err)
	}
	if err := s.SetCurrent(ctx, "local"); err != nil {
		t.Fatalf("SetCurrent(local): %v", err)
	}

	cur, err := s.CurrentProfile(ctx)
	if err != nil {
		t.Fatalf("CurrentProfile: %v", err)
	}
	if cur.Name != "local" {
		t.Errorf("current = %q, want local", cur.Name)
	}

	profiles, err := s.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	currents := 0
	for _, p := range profiles {
		if p.IsCurrent {
			currents++
		}
	}
	if currents != 1 {
		t.Errorf("found %d current profiles, want 1", currents)
	}

	if err := s.SetCurrent(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetCurrent(missing): err = %v, want ErrNotFound", err)
	}
}

func TestTokenWriteAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateProfile(ctx, &Profile{Name: "prod", BaseURL: "http://x"}); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	if err := s.SetToken(ctx, "prod", "jwt-abc"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	p, err := s.GetProfile(ctx, "prod")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Token() != "jwt-abc" {
		t.Errorf("Token = %q, want jwt-abc", p.Token())
	}

	if err := s.ClearToken(ctx, "prod"); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	p, err = s.GetProfile(ctx, "prod")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Token() != "" {
		t.Errorf("Token = %q after clear, want empty", p.Token())
	}

	if err := s.SetToken(ctx, "nope", "t"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetToken(nope): err = %v, want ErrNotFound", err)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetSetting(ctx, "theme"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSetting on empty store: err = %v, want ErrNotFound", err)
	}
	if err := s.SetSetting(ctx, "theme", "dark"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.SetSetting(ctx, "theme", "light"); err != nil {
		t.Fatalf("SetSetting upsert: %v", err)
	}
	v, err := s.GetSetting(ctx, "theme")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if v != "light" {
		t.Errorf("setting = %q, want light", v)
	}
}
