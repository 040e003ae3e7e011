// Package api wraps outbound HTTP to the storefront backend. Every
// response follows the envelope {code, message, data}; code 200 is
// success, anything else fails the call with message as the user-facing
// text.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"suju/storefront/internal/config"
	"suju/storefront/internal/credentials"
)

type envelope struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type Client struct {
	base  string
	http  *http.Client
	creds *credentials.Store
	log   zerolog.Logger

	// Invoked after a 401 has cleared the credentials. This is the
	// "redirect to login": a global side effect, so individual callers
	// never handle token expiry themselves.
	onSessionExpired func()
}

type Option func(*Client)

func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(cfg config.APIConfig, creds *credentials.Store, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		http:  &http.Client{Timeout: cfg.Timeout},
		creds: creds,
		log:   log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if token, ok := c.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return c.sessionExpired(method, path)
	case http.StatusForbidden:
		return &Error{Kind: KindForbidden, Code: resp.StatusCode, Message: envelopeMessage(resp.Body, "permission denied")}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &Error{Kind: KindTransport, cause: fmt.Errorf("decode response: %w", err)}
	}

	if env.Code != http.StatusOK {
		kind := KindRejected
		if len(env.Errors) > 0 {
			kind = KindValidation
		}
		return &Error{Kind: kind, Code: env.Code, Message: env.Message, Fields: env.Errors}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// sessionExpired clears the stored credentials and fires the hook,
// regardless of which component issued the call.
func (c *Client) sessionExpired(method, path string) error {
	if err := c.creds.Clear(); err != nil {
		c.log.Error().Err(err).Msg("clear credentials after 401 failed")
	}
	c.log.Warn().Str("method", method).Str("path", path).Msg("session expired, credentials cleared")

	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	return &Error{Kind: KindUnauthorized, Code: http.StatusUnauthorized, Message: "session expired, please log in again"}
}

// envelopeMessage pulls the message out of an error envelope without
// failing the caller when the body is not one.
func envelopeMessage(r io.Reader, fallback string) string {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil || env.Message == "" {
		return fallback
	}
	return env.Message
}
