// handler/health_handler_test.go
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	HealthCheck(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	expectedBody := `{"status":"API is healthy and running"}`
	assert.JSONEq(t, expectedBody, rr.Body.String())
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	t.Run("All dependencies up", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{"postgres": ok, "redis": ok})
		rr := httptest.NewRecorder()
		ErrorHandlingMiddleware(newTestResponder(t), h.Ready)(rr, httptest.NewRequest("GET", "/ready", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"postgres":"ok","redis":"ok"}`, rr.Body.String())
	})

	t.Run("Dependency down", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{"redis": down})
		rr := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/ready", nil)
		r.Header.Set("Accept", "application/json")
		ErrorHandlingMiddleware(newTestResponder(t), h.Ready)(rr, r)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, rr.Body.String(), "redis is unavailable")
	})
}
