// Package api is the authenticated HTTP client for the platform's admin
// REST API. Every console operation is a thin typed wrapper over Client.do:
// attach the bearer token, retry transport failures within a fixed budget,
// surface non-2xx responses as terminal HTTPErrors, and decode JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dta-platform/adminctl/internal/model"
)

// TokenSource supplies the bearer token for authenticated requests. An
// empty token means the request goes out unauthenticated (login does this).
// The session store implements this; tests use a static token.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource holding a fixed token string.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Config parameterizes a Client. The two deployed console generations
// differed only in these knobs (retry budget, delay, stats schema), so they
// collapse into one implementation.
type Config struct {
	BaseURL       string
	RetryAttempts int           // total attempts, minimum 1
	RetryDelay    time.Duration // fixed pause between attempts
	FieldMap      model.FieldMap
	Timeout       time.Duration // per-attempt HTTP timeout
}

// DefaultConfig returns the production defaults: three attempts with a one
// second pause, matching the deployed console's retry policy.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
		FieldMap:      model.DefaultFieldMap(),
		Timeout:       15 * time.Second,
	}
}

// Client calls the platform admin API. It holds no resource state; every
// list is fetched fresh by the resource layer.
type Client struct {
	cfg    Config
	tokens TokenSource
	http   *http.Client
}

// New creates a Client. tokens may be nil for a purely unauthenticated
// client (login-only flows).
func New(cfg Config, tokens TokenSource) *Client {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.FieldMap == nil {
		cfg.FieldMap = model.DefaultFieldMap()
	}
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// do performs one API call with the retry policy. Only transport errors are
// retried; a parsed HTTP response of any status is terminal. On 2xx the
// body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = b
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path

	var lastErr error
	for attempt := 1; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.tokens != nil {
			if tok := c.tokens.Token(); tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}
		return c.decode(resp, out)
	}

	return &NetworkError{Attempts: c.cfg.RetryAttempts, Err: lastErr}
}

func (c *Client) decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope model.ErrorResponse
		_ = json.Unmarshal(data, &envelope) // best effort; body may not be JSON
		return &HTTPError{Status: resp.StatusCode, Message: envelope.Text(), Body: data}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
