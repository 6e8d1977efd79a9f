package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/usecase"
	"pulsebridge-consult/pkg/response"
	"pulsebridge-consult/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	validator           *validator.CustomValidator
	log                 *logrus.Logger
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, validator *validator.CustomValidator, log *logrus.Logger) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		validator:           validator,
		log:                 log,
	}
}

// SubmitPrescription takes the prescription file in the "prescription"
// multipart field and releases the session payment.
func (h *ConsultationHandler) SubmitPrescription(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}

	file, _, err := r.FormFile("prescription")
	if err != nil {
		response.Error(w, http.StatusBadRequest, usecase.ErrPrescriptionRequired.Error(), nil)
		return
	}
	defer file.Close()

	prescription, err := h.consultationUsecase.SubmitPrescription(r.Context(), sessionID, file)
	if err != nil {
		writeConsultationError(w, err, "Failed to submit prescription")
		return
	}

	response.Success(w, http.StatusOK, "Prescription submitted and payment released", prescription)
}

func (h *ConsultationHandler) RateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req dto.RateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	review, err := h.consultationUsecase.RateSession(r.Context(), sessionID, &req)
	if err != nil {
		writeConsultationError(w, err, "Failed to rate session")
		return
	}

	response.Success(w, http.StatusCreated, "Session rated", review)
}

func (h *ConsultationHandler) ListDoctorReviews(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor ID")
	if !ok {
		return
	}

	reviews, err := h.consultationUsecase.ListDoctorReviews(r.Context(), doctorID)
	if err != nil {
		writeConsultationError(w, err, "Failed to get reviews")
		return
	}

	response.Success(w, http.StatusOK, "Reviews retrieved successfully", reviews)
}

func (h *ConsultationHandler) ListMyPrescriptions(w http.ResponseWriter, r *http.Request) {
	prescriptions, err := h.consultationUsecase.ListMyPrescriptions(r.Context())
	if err != nil {
		writeConsultationError(w, err, "Failed to get prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", prescriptions)
}

// OpenPrescription streams the pinned document.
func (h *ConsultationHandler) OpenPrescription(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	document, err := h.consultationUsecase.OpenPrescription(r.Context(), sessionID)
	if err != nil {
		writeConsultationError(w, err, "Failed to open prescription")
		return
	}
	defer document.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="prescription-`+sessionID+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, document); err != nil {
		h.log.Warnf("Failed to stream prescription for session %s: %+v", sessionID, err)
	}
}

func writeConsultationError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrNotAuthenticated):
		response.Unauthorized(w, "")
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrDoctorNotFound),
		errors.Is(err, usecase.ErrPrescriptionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrNotSessionDoctor),
		errors.Is(err, usecase.ErrNotSessionPatient),
		errors.Is(err, usecase.ErrPrescriptionForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrSessionNotActive),
		errors.Is(err, usecase.ErrSessionNotCompleted),
		errors.Is(err, usecase.ErrDoctorNotOnChain),
		errors.Is(err, usecase.ErrPrescriptionRequired):
		response.Unprocessable(w, err.Error())
	case errors.Is(err, usecase.ErrAlreadyRated):
		response.Conflict(w, err.Error())
	case errors.Is(err, gateway.ErrTransactionFailed):
		response.Upstream(w, http.StatusBadGateway, "Transaction reverted")
	case errors.Is(err, gateway.ErrNoSigner):
		response.Forbidden(w, "No signing key for your wallet")
	default:
		response.InternalServerError(w, fallback)
	}
}
