package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/service"
	"pulsebridge-consult/internal/usecase"
	"pulsebridge-consult/pkg/response"
	"pulsebridge-consult/pkg/validator"
)

// BookingHandler exposes the booking steps. Each step returns the attempt
// so clients can render the current stage and last error.
type BookingHandler struct {
	orchestrator usecase.SessionOrchestrator
	validator    *validator.CustomValidator
}

func NewBookingHandler(orchestrator usecase.SessionOrchestrator, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		orchestrator: orchestrator,
		validator:    validator,
	}
}

func (h *BookingHandler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	attempt, err := h.orchestrator.SelectSlot(r.Context(), &req)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Slot selected", attempt)
}

func (h *BookingHandler) ConfirmDetails(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := pathUUID(w, r, "id", "booking attempt ID")
	if !ok {
		return
	}

	var req dto.ConfirmDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	attempt, err := h.orchestrator.ConfirmDetails(r.Context(), attemptID, &req)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Fee quoted", attempt)
}

func (h *BookingHandler) ApproveToken(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := pathUUID(w, r, "id", "booking attempt ID")
	if !ok {
		return
	}

	attempt, err := h.orchestrator.ApproveToken(r.Context(), attemptID)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Token approved", attempt)
}

func (h *BookingHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := pathUUID(w, r, "id", "booking attempt ID")
	if !ok {
		return
	}

	attempt, err := h.orchestrator.CreateSession(r.Context(), attemptID)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Session confirmed", attempt)
}

// Proceed body is optional.
func (h *BookingHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := pathUUID(w, r, "id", "booking attempt ID")
	if !ok {
		return
	}

	var req dto.ProceedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	attempt, err := h.orchestrator.Proceed(r.Context(), attemptID, &req)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Booking advanced", attempt)
}

func (h *BookingHandler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	attemptID, ok := pathUUID(w, r, "id", "booking attempt ID")
	if !ok {
		return
	}

	attempt, err := h.orchestrator.GetAttempt(r.Context(), attemptID)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Booking attempt retrieved successfully", attempt)
}

func (h *BookingHandler) ListMyAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.orchestrator.ListMyAttempts(r.Context())
	if err != nil {
		writeBookingError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Booking attempts retrieved successfully", attempts)
}

func writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrNotAuthenticated):
		response.Unauthorized(w, "")
	case errors.Is(err, usecase.ErrAttemptNotFound),
		errors.Is(err, usecase.ErrSlotNotFound),
		errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrAttemptNotOwned):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrAttemptExpired):
		response.Gone(w, err.Error())
	case errors.Is(err, usecase.ErrSlotUnavailable),
		errors.Is(err, usecase.ErrStageMismatch),
		errors.Is(err, usecase.ErrQuoteLocked),
		errors.Is(err, service.ErrAttemptBusy):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrSlotInPast),
		errors.Is(err, usecase.ErrDoctorNotBookable),
		errors.Is(err, usecase.ErrUnsupportedToken),
		errors.Is(err, usecase.ErrSettlementTokenRequired):
		response.Unprocessable(w, err.Error())
	case errors.Is(err, service.ErrAllowanceInsufficient):
		response.Error(w, http.StatusPaymentRequired, err.Error(), nil)
	case errors.Is(err, gateway.ErrPriceUnavailable):
		response.Upstream(w, http.StatusServiceUnavailable, "Price feed unavailable, try again shortly")
	case errors.Is(err, gateway.ErrTransactionFailed):
		response.Upstream(w, http.StatusBadGateway, "Transaction reverted")
	case errors.Is(err, gateway.ErrNoSigner):
		response.Forbidden(w, "No signing key for your wallet")
	default:
		response.InternalServerError(w, "Failed to process booking")
	}
}
