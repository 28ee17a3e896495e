package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpsRouter_Healthz(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		router := NewOpsRouter(HealthCheck{Name: "database", Check: func(context.Context) error { return nil }})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["database"])
	})

	t.Run("failing dependency", func(t *testing.T) {
		router := NewOpsRouter(
			HealthCheck{Name: "database", Check: func(context.Context) error { return nil }},
			HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
		)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "connection refused", body["redis"])
	})
}

func TestOpsRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	NewOpsRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
