package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/delivery/http/handler"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/mocks"
	"pulsebridge-consult/internal/service"
	"pulsebridge-consult/internal/usecase"
	"pulsebridge-consult/pkg/response"
	"pulsebridge-consult/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBookingRouter(orchestrator *mocks.MockSessionOrchestrator) *mux.Router {
	h := handler.NewBookingHandler(orchestrator, validator.NewValidator())
	r := mux.NewRouter()
	r.HandleFunc("/bookings", h.SelectSlot).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/proceed", h.Proceed).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{id}/confirm", h.ConfirmDetails).Methods(http.MethodPost)
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBookingHandler_SelectSlot(t *testing.T) {
	doctorID, slotID := uuid.New(), uuid.New()

	t.Run("created", func(t *testing.T) {
		orchestrator := new(mocks.MockSessionOrchestrator)
		orchestrator.On("SelectSlot", mock.Anything, &dto.SelectSlotRequest{DoctorID: doctorID, SlotID: slotID}).
			Return(&dto.BookingAttemptResponse{ID: uuid.New(), Stage: "confirm_details"}, nil)

		body := fmt.Sprintf(`{"doctor_id":%q,"slot_id":%q}`, doctorID, slotID)
		rec := httptest.NewRecorder()
		newBookingRouter(orchestrator).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, decodeResponse(t, rec).Success)
		orchestrator.AssertExpectations(t)
	})

	t.Run("missing slot fails validation", func(t *testing.T) {
		orchestrator := new(mocks.MockSessionOrchestrator)

		body := fmt.Sprintf(`{"doctor_id":%q}`, doctorID)
		rec := httptest.NewRecorder()
		newBookingRouter(orchestrator).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation failed", decodeResponse(t, rec).Message)
		orchestrator.AssertNotCalled(t, "SelectSlot", mock.Anything, mock.Anything)
	})

	t.Run("held slot conflicts", func(t *testing.T) {
		orchestrator := new(mocks.MockSessionOrchestrator)
		orchestrator.On("SelectSlot", mock.Anything, mock.Anything).Return(nil, usecase.ErrSlotUnavailable)

		body := fmt.Sprintf(`{"doctor_id":%q,"slot_id":%q}`, doctorID, slotID)
		rec := httptest.NewRecorder()
		newBookingRouter(orchestrator).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, usecase.ErrSlotUnavailable.Error(), decodeResponse(t, rec).Message)
	})
}

func TestBookingHandler_ProceedErrorMapping(t *testing.T) {
	attemptID := uuid.New()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"busy", service.ErrAttemptBusy, http.StatusConflict},
		{"expired", usecase.ErrAttemptExpired, http.StatusGone},
		{"not owned", usecase.ErrAttemptNotOwned, http.StatusForbidden},
		{"allowance short", service.ErrAllowanceInsufficient, http.StatusPaymentRequired},
		{"stale price", fmt.Errorf("%w: ETH", gateway.ErrPriceUnavailable), http.StatusServiceUnavailable},
		{"reverted", gateway.ErrTransactionFailed, http.StatusBadGateway},
		{"unexpected", fmt.Errorf("rpc: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orchestrator := new(mocks.MockSessionOrchestrator)
			orchestrator.On("Proceed", mock.Anything, attemptID, &dto.ProceedRequest{}).Return(nil, tt.err)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/bookings/"+attemptID.String()+"/proceed", nil)
			newBookingRouter(orchestrator).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, decodeResponse(t, rec).Success)
		})
	}
}

func TestBookingHandler_ProceedWithToken(t *testing.T) {
	attemptID := uuid.New()
	orchestrator := new(mocks.MockSessionOrchestrator)
	orchestrator.On("Proceed", mock.Anything, attemptID, &dto.ProceedRequest{SettlementToken: "PYUSD"}).
		Return(&dto.BookingAttemptResponse{ID: attemptID, Stage: "confirmed", SessionID: "12"}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings/"+attemptID.String()+"/proceed", strings.NewReader(`{"settlement_token":"PYUSD"}`))
	newBookingRouter(orchestrator).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeResponse(t, rec).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "confirmed", data["stage"])
	assert.Equal(t, "12", data["session_id"])
}

func TestBookingHandler_InvalidAttemptID(t *testing.T) {
	orchestrator := new(mocks.MockSessionOrchestrator)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings/not-a-uuid/confirm", strings.NewReader(`{"settlement_token":"ETH"}`))
	newBookingRouter(orchestrator).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	orchestrator.AssertNotCalled(t, "ConfirmDetails", mock.Anything, mock.Anything, mock.Anything)
}
