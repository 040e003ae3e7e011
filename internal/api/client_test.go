package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suju/storefront/internal/api"
	"suju/storefront/internal/config"
	"suju/storefront/internal/credentials"
	"suju/storefront/internal/log"
	"suju/storefront/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...api.Option) (*api.Client, *credentials.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds, err := credentials.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { creds.Close() })

	cfg := config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second}
	return api.New(cfg, creds, log.NewWithOutput("test", io.Discard), opts...), creds
}

func TestGetDecodesEnvelopeData(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/me", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"code":200,"message":"success","data":{"id":7,"username":"sue"}}`)
	}))

	var user models.User
	require.NoError(t, client.Get(context.Background(), "/users/me", nil, &user))
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "sue", user.Username)
}

func TestBearerTokenAttached(t *testing.T) {
	var seen string
	client, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		io.WriteString(w, `{"code":200,"message":"success"}`)
	}))

	require.NoError(t, client.Get(context.Background(), "/ping", nil, nil))
	assert.Empty(t, seen, "no token stored, no header expected")

	require.NoError(t, creds.SetToken("tok-123"))
	require.NoError(t, client.Get(context.Background(), "/ping", nil, nil))
	assert.Equal(t, "Bearer tok-123", seen)
}

func TestUnauthorizedClearsCredentialsAndFiresHook(t *testing.T) {
	var hookFired bool
	client, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), api.WithSessionExpiredHook(func() { hookFired = true }))

	require.NoError(t, creds.SetToken("expired-token"))
	require.NoError(t, creds.SetStoredUser(models.User{ID: 1, Username: "sue"}))

	err := client.Get(context.Background(), "/orders", nil, nil)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.True(t, hookFired)

	_, ok := creds.Token()
	assert.False(t, ok, "token should be cleared after a 401")
	user, err := creds.StoredUser()
	require.NoError(t, err)
	assert.Nil(t, user, "cached user should be cleared after a 401")
}

func TestForbiddenKeepsCredentials(t *testing.T) {
	var hookFired bool
	client, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"code":403,"message":"admin access required"}`)
	}), api.WithSessionExpiredHook(func() { hookFired = true }))

	require.NoError(t, creds.SetToken("valid-token"))

	err := client.Put(context.Background(), "/admin/orders/1/ship", nil, nil)
	require.Error(t, err)
	assert.True(t, api.IsForbidden(err))
	assert.False(t, api.IsUnauthorized(err))
	assert.False(t, hookFired, "403 is not session expiry")
	assert.Equal(t, "admin access required", api.UserMessage(err))

	_, ok := creds.Token()
	assert.True(t, ok, "403 must not clear the session")
}

func TestEnvelopeRejection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":400,"message":"insufficient stock"}`)
	}))

	err := client.Post(context.Background(), "/cart", map[string]any{"product_id": 1, "quantity": 99}, nil)
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))
	assert.Equal(t, "insufficient stock", api.UserMessage(err))
}

func TestEnvelopeValidationCarriesFields(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":422,"message":"validation failed","errors":{"email":["a valid email is required"]}}`)
	}))

	err := client.Post(context.Background(), "/auth/register", map[string]any{}, nil)
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Fields, "email")
}

func TestTransportErrorUserMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// Cancelled context stands in for any network failure.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Get(ctx, "/products", nil, nil)
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))
	assert.Equal(t, "network error, please try again", api.UserMessage(err))
}
