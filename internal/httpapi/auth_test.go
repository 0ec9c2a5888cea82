package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llmhive/llmhive/internal/config"
)

func TestAuthMiddleware_PassesThroughWhenNoAPIKeyConfigured(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	srv := testServer(t, fakeHandler{})
	req := httptest.NewRequest(http.MethodGet, "/v1/status/diagnostics/config", nil)
	rec := httptest.NewRecorder()
	srv.NewRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_RejectsMissingKeyWhenConfigured(t *testing.T) {
	t.Setenv(config.SecretInboundAPIKey, "expected-key")
	config.Reset()
	t.Cleanup(config.Reset)

	srv := testServer(t, fakeHandler{})
	req := httptest.NewRequest(http.MethodGet, "/v1/status/diagnostics/config", nil)
	rec := httptest.NewRecorder()
	srv.NewRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_AcceptsMatchingKey(t *testing.T) {
	t.Setenv(config.SecretInboundAPIKey, "expected-key")
	config.Reset()
	t.Cleanup(config.Reset)

	srv := testServer(t, fakeHandler{})
	req := httptest.NewRequest(http.MethodGet, "/v1/status/diagnostics/config", nil)
	req.Header.Set(apiKeyHeader, "expected-key")
	rec := httptest.NewRecorder()
	srv.NewRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_RejectsWrongKey(t *testing.T) {
	t.Setenv(config.SecretInboundAPIKey, "expected-key")
	config.Reset()
	t.Cleanup(config.Reset)

	srv := testServer(t, fakeHandler{})
	req := httptest.NewRequest(http.MethodGet, "/v1/status/diagnostics/config", nil)
	req.Header.Set(apiKeyHeader, "wrong-key")
	rec := httptest.NewRecorder()
	srv.NewRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
