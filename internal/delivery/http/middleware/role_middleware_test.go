package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pulsebridge-consult/internal/delivery/http/middleware"
	"pulsebridge-consult/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		roleID *int
		want   int
	}{
		{"doctor on console", ptr(entity.RoleIDDoctor), http.StatusOK},
		{"admin on console", ptr(entity.RoleIDAdmin), http.StatusOK},
		{"patient on console", ptr(entity.RoleIDPatient), http.StatusForbidden},
		{"no identity", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/console/sessions", nil)
			if tt.roleID != nil {
				req = req.WithContext(middleware.WithIdentity(req.Context(), uuid.New(), "0xabc", *tt.roleID))
			}
			rec := httptest.NewRecorder()
			middleware.RequireAdminOrDoctor(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func ptr(v int) *int { return &v }
