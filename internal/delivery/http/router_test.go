package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	deliveryHttp "pulsebridge-consult/internal/delivery/http"
	"pulsebridge-consult/internal/delivery/http/middleware"
	"pulsebridge-consult/pkg/response"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_HealthCheck(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	info := deliveryHttp.ServiceInfo{Name: "pulsebridge-consult", Version: "1.4.0", Network: "sepolia"}

	router := deliveryHttp.NewRouter(log, deliveryHttp.Handlers{}, nil, middleware.NewCORSMiddleware(nil), info).Setup()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "pulsebridge-consult is up", body.Message)
	assert.Equal(t, map[string]any{"service": "pulsebridge-consult", "version": "1.4.0", "network": "sepolia"}, body.Data)
}
