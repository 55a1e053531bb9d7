package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dta-platform/adminctl/internal/model"
)

// flakyServer returns an httptest server that kills the connection for the
// first failures requests (a transport-level error from the client's view)
// and then delegates to h. attempts counts every request that arrived.
func flakyServer(t *testing.T, failures int, attempts *atomic.Int32, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if int(n) <= failures {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("response writer does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack: %v", err)
			}
			conn.Close()
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) Config {
	cfg := DefaultConfig(baseURL)
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestDoRetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	srv := flakyServer(t, 2, &attempts, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalUsers":5}`))
	})

	c := New(testConfig(srv.URL), nil)
	stats, err := c.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.TotalUsers != 5 {
		t.Errorf("TotalUsers = %d, want 5", stats.TotalUsers)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestDoExhaustsRetryBudget(t *testing.T) {
	var attempts atomic.Int32
	srv := flakyServer(t, 100, &attempts, func(w http.ResponseWriter, r *http.Request) {})

	c := New(testConfig(srv.URL), nil)
	_, err := c.ListUsers(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
	if netErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", netErr.Attempts)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("server saw %d attempts, want 3", got)
	}
}

func TestDoDoesNotRetryHTTPErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"nope"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(testConfig(srv.URL), nil)
	_, err := c.ListTasks(context.Background())

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want *HTTPError", err)
	}
	if httpErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", httpErr.Status)
	}
	if httpErr.Message != "nope" {
		t.Errorf("Message = %q, want %q", httpErr.Message, "nope")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on HTTP errors)", got)
	}
}

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := New(testConfig(srv.URL), StaticToken("tok-123"))
	if _, err := c.ListUsers(context.Background()); err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestLoginSendsNoAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"token":"t"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(testConfig(srv.URL), nil)
	res, err := c.Login(context.Background(), model.Credentials{Email: "a@b.co", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "t" {
		t.Errorf("Token = %q, want %q", res.Token, "t")
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	var attempts atomic.Int32
	srv := flakyServer(t, 100, &attempts, func(w http.ResponseWriter, r *http.Request) {})

	cfg := testConfig(srv.URL)
	cfg.RetryDelay = time.Hour // cancellation must interrupt the pause
	c := New(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ListUsers(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}
