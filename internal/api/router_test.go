// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/api"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/auth"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/observability"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

type testEnv struct {
	handler http.Handler
	metrics *observability.Metrics
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T, origins ...string) *testEnv {
	t.Helper()
	users := store.NewMemory[auth.User](auth.UniqueUserFields()...)
	hasher := auth.NewArgon2idHasher()
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		Issuer:   "authsvc-test",
		Audience: "marketplace",
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
	})
	require.NoError(t, err)

	authSvc, err := auth.NewAuthService(users, hasher, issuer)
	require.NoError(t, err)
	recovery, err := auth.NewRecoveryService(users, hasher, auth.ResponseNotifier{})
	require.NoError(t, err)

	env := &testEnv{
		metrics: observability.NewMetrics(observability.NewRegistry()),
		logs:    &bytes.Buffer{},
	}
	env.handler = api.NewRouter(api.RouterConfig{
		Auth:           authSvc,
		Recovery:       recovery,
		Metrics:        env.metrics,
		Logger:         slog.New(slog.NewJSONHandler(env.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		AllowedOrigins: origins,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header map[string]string) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var resp api.Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	}
	return rec, resp
}

func (e *testEnv) post(t *testing.T, path string, body any) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()
	return e.do(t, http.MethodPost, path, body, map[string]string{"Content-Type": "application/json"})
}

func TestRouter_Scenario(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.post(t, "/api/signup", map[string]string{"username": "alice", "password": "longenough1", "email": "a@x.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.MsgSignupOK, resp.Message)
	assert.Empty(t, resp.Token)

	rec, resp = env.post(t, "/api/signup", map[string]string{"username": "alice", "password": "other12345", "email": "b@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username or email already exists", resp.Message)

	rec, resp = env.post(t, "/api/login", map[string]string{"username": "alice", "password": "longenough1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.MsgLoginOK, resp.Message)
	require.NotEmpty(t, resp.Token)
	session := resp.Token

	rec, resp = env.do(t, http.MethodGet, "/api/profile", nil, map[string]string{"Authorization": "Bearer " + session})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome, alice! Your session is active.", resp.Message)

	rec, resp = env.post(t, "/api/login", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid username or password", resp.Message)

	rec, resp = env.post(t, "/api/forgot", map[string]string{"username": "alice", "email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	fields := strings.Fields(resp.Message)
	require.GreaterOrEqual(t, len(fields), 4)
	resetToken := fields[3]
	assert.Len(t, resetToken, 64)

	rec, resp = env.post(t, "/api/reset", map[string]string{"token": resetToken, "newPassword": "newpass123"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.MsgResetOK, resp.Message)

	rec, resp = env.post(t, "/api/reset", map[string]string{"token": resetToken, "newPassword": "another123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid or expired token", resp.Message)

	rec, _ = env.post(t, "/api/login", map[string]string{"username": "alice", "password": "longenough1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = env.post(t, "/api/login", map[string]string{"username": "alice", "password": "newpass123"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp.Token)

	assert.InDelta(t, 2, testutil.ToFloat64(env.metrics.OperationsTotal.WithLabelValues("login", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(env.metrics.OperationsTotal.WithLabelValues("login", "auth")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.OperationsTotal.WithLabelValues("signup", "conflict")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.HTTPRequestsTotal.WithLabelValues(api.RouteProfile, "200")), 0)
}

func TestRouter_ValidationFailures(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		path    string
		body    any
		message string
	}{
		{"short signup password", "/api/signup", map[string]string{"username": "bob", "password": "short"}, "password must be at least 8 characters"},
		{"missing username", "/api/signup", map[string]string{"password": "longenough1"}, "username is required"},
		{"short reset password", "/api/reset", map[string]string{"token": "whatever", "newPassword": "short"}, "password must be at least 8 characters"},
		{"unknown reset token", "/api/reset", map[string]string{"token": "nope", "newPassword": "longenough1"}, "invalid or expired token"},
		{"forgot for unknown user", "/api/forgot", map[string]string{"username": "ghost", "email": "g@x.com"}, "user not found"},
		{"login for unknown user", "/api/login", map[string]string{"username": "ghost", "password": "longenough1"}, "invalid username or password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.post(t, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRouter_InvalidPayload(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"", "{", "not json", `{"username":"a"} {"extra":1}`, `["array"]`} {
		for _, path := range []string{"/api/signup", "/api/login", "/api/forgot", "/api/reset"} {
			rec, resp := env.post(t, path, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %q", path, body)
			assert.Equal(t, api.MsgInvalidPayload, resp.Message)
		}
	}
	assert.InDelta(t, 5, testutil.ToFloat64(env.metrics.OperationsTotal.WithLabelValues("signup", "invalid_payload")), 0)
}

func TestRouter_Profile(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name          string
		authorization string
		message       string
	}{
		{"no header", "", "Unauthorized"},
		{"wrong scheme", "Basic YWxpY2U6cHc=", "Unauthorized"},
		{"empty bearer", "Bearer ", "Unauthorized"},
		{"garbage token", "Bearer not.a.jwt", "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.authorization != "" {
				header["Authorization"] = tt.authorization
			}
			rec, resp := env.do(t, http.MethodGet, "/api/profile", nil, header)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestRouter_MethodAndPath(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signup", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.HTTPRequestsTotal.WithLabelValues("unmatched", "404")), 0)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.do(t, http.MethodGet, "/api/profile", nil, nil)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRouter_CORS(t *testing.T) {
	env := newTestEnv(t, "https://app.example.com")

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, api.AllowedMethods, rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, api.AllowedHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("preflight from other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request from allowed origin", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodGet, "/api/profile", nil, map[string]string{"Origin": "https://app.example.com"})
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("no origins configured", func(t *testing.T) {
		closed := newTestEnv(t)
		rec, _ := closed.do(t, http.MethodGet, "/api/profile", nil, map[string]string{"Origin": "https://app.example.com"})
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

// failingAuth returns an internal error from every call.
type failingAuth struct{ err error }

func (f failingAuth) Signup(context.Context, string, string, string) error { return f.err }
func (f failingAuth) Login(context.Context, string, string) (string, error) {
	return "", f.err
}
func (f failingAuth) Profile(context.Context, string) (string, error) { return "", f.err }

func TestRouter_InternalErrorsAreLoggedNotExposed(t *testing.T) {
	var logs bytes.Buffer
	internal := oops.Code("AUTH_LOGIN_FAILED").
		With("operation", "get user by username").
		Wrap(errors.New("server selection timeout: mongo-0.internal:27017"))

	handler := api.NewRouter(api.RouterConfig{
		Auth:   failingAuth{err: internal},
		Logger: slog.New(slog.NewJSONHandler(&logs, nil)),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"alice","password":"longenough1"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "mongo-0")

	assert.Contains(t, logs.String(), `"level":"ERROR"`)
	assert.Contains(t, logs.String(), "login failed")
	assert.Contains(t, logs.String(), "AUTH_LOGIN_FAILED")
	assert.Contains(t, logs.String(), "mongo-0.internal")
	assert.NotContains(t, logs.String(), "longenough1")
}

func TestRouter_ExpiredSessionToken(t *testing.T) {
	now := time.Now()
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		Issuer:   "authsvc-test",
		Audience: "marketplace",
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		TTL:      time.Minute,
	}, auth.WithTokenClock(func() time.Time { return now.Add(-time.Hour) }))
	require.NoError(t, err)
	stale, err := issuer.Issue("alice")
	require.NoError(t, err)

	env := newTestEnv(t)
	rec, resp := env.do(t, http.MethodGet, "/api/profile", nil, map[string]string{"Authorization": "Bearer " + stale})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Invalid or expired token", resp.Message)
}
