package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pulsebridge-consult/internal/delivery/http/middleware"

	"github.com/stretchr/testify/assert"
)

func serveCORS(m *middleware.CORSMiddleware, method, origin string) (*httptest.ResponseRecorder, bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(method, "/api/v1/doctors", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	m.Handle(next).ServeHTTP(rec, req)
	return rec, reached
}

func TestCORSMiddleware(t *testing.T) {
	dapp := "https://app.pulsebridge.health"

	t.Run("configured origin is echoed", func(t *testing.T) {
		m := middleware.NewCORSMiddleware([]string{dapp + "/", "https://doctors.pulsebridge.health"})
		rec, reached := serveCORS(m, http.MethodGet, dapp)

		assert.True(t, reached)
		assert.Equal(t, dapp, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("unknown origin gets no grant", func(t *testing.T) {
		m := middleware.NewCORSMiddleware([]string{dapp})
		rec, reached := serveCORS(m, http.MethodGet, "https://evil.example")

		assert.True(t, reached)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard and empty config allow any origin", func(t *testing.T) {
		for _, origins := range [][]string{{"*"}, nil, {" "}} {
			rec, _ := serveCORS(middleware.NewCORSMiddleware(origins), http.MethodGet, dapp)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		m := middleware.NewCORSMiddleware([]string{dapp})
		rec, reached := serveCORS(m, http.MethodOptions, dapp)

		assert.False(t, reached)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	})
}
