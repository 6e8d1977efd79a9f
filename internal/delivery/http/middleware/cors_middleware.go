package middleware

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
	corsMaxAge       = "600"
)

// CORSMiddleware allows the wallet dapp origins configured in
// CORS_ALLOWED_ORIGINS. A "*" entry allows every origin.
type CORSMiddleware struct {
	origins  []string
	allowAll bool
}

func NewCORSMiddleware(origins []string) *CORSMiddleware {
	m := &CORSMiddleware{}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o == "*" {
			m.allowAll = true
			continue
		}
		m.origins = append(m.origins, o)
	}
	if len(m.origins) == 0 {
		m.allowAll = true
	}
	return m
}

func (m *CORSMiddleware) allowOrigin(origin string) string {
	if m.allowAll {
		return "*"
	}
	if slices.Contains(m.origins, origin) {
		return origin
	}
	return ""
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h := w.Header()
		h.Add("Vary", "Origin")

		if allowed := m.allowOrigin(req.Header.Get("Origin")); allowed != "" {
			h.Set("Access-Control-Allow-Origin", allowed)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
		}

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, req)
	})
}
