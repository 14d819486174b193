// Crumbcoat - Bakery Portfolio Site and Admin API
// Copyright 2026 Crumbcoat Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crumbcoat/crumbcoat

// Package authclient is a programmatic client for the Crumbcoat auth
// endpoints. It mirrors the behavior of the site's browser auth service:
// handshake prefetch and caching, retried handshake fetches, scheduled
// auto-logout shortly before session expiry, and cookie or bearer token
// delivery.
package authclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/crumbcoat/crumbcoat/internal/models"
)

var (
	// ErrLoginFailed is returned when the server rejects credentials.
	ErrLoginFailed = errors.New("login failed")

	// ErrNotAuthenticated is returned for operations that need a live
	// session when none exists.
	ErrNotAuthenticated = errors.New("not authenticated")
)

const (
	// handshakeRetries is how many times a handshake fetch is attempted.
	handshakeRetries = 3

	// handshakeBackoff is the linear backoff unit between retries:
	// attempt n waits n * handshakeBackoff.
	handshakeBackoff = 250 * time.Millisecond

	// handshakeReuseMargin is the minimum remaining validity for a
	// cached handshake to be reused instead of fetching a fresh one.
	handshakeReuseMargin = 2 * time.Second

	// logoutMargin is how long before session expiry the auto-logout
	// fires.
	logoutMargin = 5 * time.Second
)

// Session is the non-sensitive metadata kept after a successful login.
// In cookie mode Token stays empty; the cookie jar carries the session.
type Session struct {
	Username  string
	Role      string
	Token     string
	LoginTime time.Time
	ExpiresAt time.Time
}

// Client talks to the Crumbcoat auth endpoints.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu              sync.Mutex
	handshake       string
	handshakeExpiry time.Time
	session         *Session
	logoutTimer     *time.Timer

	// onAutoLogout, when set, runs after a scheduled auto-logout clears
	// the session.
	onAutoLogout func()

	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithAutoLogoutFunc sets a callback invoked after auto-logout fires.
func WithAutoLogoutFunc(fn func()) Option {
	return func(c *Client) { c.onAutoLogout = fn }
}

// New creates a client for the server at baseURL. The default HTTP client
// carries a cookie jar so cookie-mode sessions work transparently.
func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EnsureHandshake returns a handshake token, reusing the cached one while
// it still has comfortable validity left and otherwise fetching a fresh
// one with retries.
func (c *Client) EnsureHandshake(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.handshake != "" && c.handshakeExpiry.Sub(c.now()) > handshakeReuseMargin {
		token := c.handshake
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= handshakeRetries; attempt++ {
		token, expiresIn, err := c.fetchHandshake(ctx)
		if err == nil {
			c.mu.Lock()
			c.handshake = token
			c.handshakeExpiry = c.now().Add(time.Duration(expiresIn) * time.Millisecond)
			c.mu.Unlock()
			return token, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * handshakeBackoff):
		}
	}
	return "", fmt.Errorf("handshake failed after %d attempts: %w", handshakeRetries, lastErr)
}

// fetchHandshake performs one GET /api/auth/handshake.
func (c *Client) fetchHandshake(ctx context.Context) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/handshake", nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("handshake returned status %d", resp.StatusCode)
	}

	var body models.HandshakeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, fmt.Errorf("decode handshake response: %w", err)
	}
	if !body.Success || body.Handshake == "" {
		return "", 0, errors.New("handshake response missing token")
	}
	return body.Handshake, body.ExpiresIn, nil
}

// Login obtains a handshake, submits credentials, and stores the session
// metadata. Auto-logout is scheduled shortly before the session expires.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	handshake, err := c.EnsureHandshake(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(models.LoginRequest{
		Username:  username,
		Password:  password,
		Handshake: handshake,
	})
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		return nil, fmt.Errorf("%w: status %d", ErrLoginFailed, resp.StatusCode)
	}

	// A handshake is single-use from the client's perspective; drop the
	// cache so the next login fetches a fresh one.
	c.mu.Lock()
	c.handshake = ""
	c.handshakeExpiry = time.Time{}

	now := c.now()
	session := &Session{
		Username:  username,
		Role:      "admin",
		Token:     body.Token,
		LoginTime: now,
		ExpiresAt: now.Add(time.Duration(body.ExpiresIn) * time.Millisecond),
	}
	c.session = session
	c.scheduleAutoLogoutLocked(time.Duration(body.ExpiresIn) * time.Millisecond)
	c.mu.Unlock()

	return session, nil
}

// scheduleAutoLogoutLocked arms the auto-logout timer. Caller holds c.mu.
func (c *Client) scheduleAutoLogoutLocked(expiresIn time.Duration) {
	if c.logoutTimer != nil {
		c.logoutTimer.Stop()
	}

	delay := expiresIn - logoutMargin
	if delay < 0 {
		delay = 0
	}
	c.logoutTimer = time.AfterFunc(delay, func() {
		c.clearSession()
		if c.onAutoLogout != nil {
			c.onAutoLogout()
		}
	})
}

// Session returns the current session metadata, or nil when logged out.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	copied := *c.session
	return &copied
}

// IsAuthenticated reports whether the session is live: first a local
// expiry check, then a server-side verification.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	c.mu.Lock()
	session := c.session
	if session == nil || c.now().After(session.ExpiresAt) {
		c.mu.Unlock()
		return false, nil
	}
	token := session.Token
	c.mu.Unlock()

	payload, err := json.Marshal(models.VerifyRequest{Token: token})
	if err != nil {
		return false, fmt.Errorf("encode verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/verify", bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.clearSession()
		return false, nil
	}

	var body models.VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode verify response: %w", err)
	}
	return body.Success, nil
}

// Logout tells the server to clear the session cookie (best effort) and
// drops all local session state.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err == nil {
		resp.Body.Close()
	}

	c.clearSession()
	return nil
}

// clearSession drops the session and stops the auto-logout timer.
func (c *Client) clearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	if c.logoutTimer != nil {
		c.logoutTimer.Stop()
		c.logoutTimer = nil
	}
}
