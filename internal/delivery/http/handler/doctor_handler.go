package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/usecase"
	"pulsebridge-consult/pkg/response"
	"pulsebridge-consult/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorProfileUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorProfileUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

// RegisterDoctor accepts the profile as multipart fields plus the
// legal_documents file.
func (h *DoctorHandler) RegisterDoctor(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}

	fee, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("consultation_fee")))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation fee", nil)
		return
	}

	req := dto.RegisterDoctorRequest{
		Name:               r.FormValue("name"),
		Specialization:     r.FormValue("specialization"),
		ProfileDescription: r.FormValue("profile_description"),
		Email:              r.FormValue("email"),
		ConsultationFee:    fee,
		FeeCurrency:        r.FormValue("fee_currency"),
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	file, _, err := r.FormFile("legal_documents")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Legal documents are required", nil)
		return
	}
	defer file.Close()

	doctor, err := h.doctorUsecase.RegisterDoctor(r.Context(), &req, file)
	if err != nil {
		switch err {
		case usecase.ErrDoctorAlreadyRegistered:
			response.Conflict(w, err.Error())
		case usecase.ErrInvalidFee:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		case usecase.ErrNotAuthenticated:
			response.Unauthorized(w, "")
		default:
			response.InternalServerError(w, "Failed to register doctor")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Doctor registration submitted", doctor)
}

func (h *DoctorHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.doctorUsecase.GetMyProfile(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor profile not found")
		case usecase.ErrNotAuthenticated:
			response.Unauthorized(w, "")
		default:
			response.InternalServerError(w, "Failed to get profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", doctor)
}

func (h *DoctorHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDoctorSelfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.UpdateMyProfile(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor profile not found")
		case usecase.ErrInvalidFee:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to update profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", doctor)
}

func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor ID")
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		if err == usecase.ErrDoctorNotFound {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

// ListVerifiedDoctors supports ?specialization= and ?name= filters.
func (h *DoctorHandler) ListVerifiedDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doctors, err := h.doctorUsecase.ListVerifiedDoctors(r.Context(), q.Get("specialization"), q.Get("name"))
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) GetOnChainDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["onchainId"], 10, 32)
	if err != nil || id == 0 {
		response.Error(w, http.StatusBadRequest, "Invalid registry ID", nil)
		return
	}

	doctor, err := h.doctorUsecase.GetOnChainDoctor(r.Context(), uint32(id))
	if err != nil {
		if err == usecase.ErrOnChainNotFound {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalServerError(w, "Failed to read registry")
		return
	}

	response.Success(w, http.StatusOK, "Registry entry retrieved successfully", doctor)
}

func (h *DoctorHandler) ListPendingDoctors(w http.ResponseWriter, r *http.Request) {
	pending, err := h.doctorUsecase.ListPendingDoctors(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get pending doctors")
		return
	}

	response.Success(w, http.StatusOK, "Pending doctors retrieved successfully", pending)
}

func (h *DoctorHandler) LinkOnChain(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor ID")
	if !ok {
		return
	}

	var req dto.LinkOnChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.LinkOnChain(r.Context(), doctorID, &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound, usecase.ErrOnChainNotFound:
			response.NotFound(w, err.Error())
		case usecase.ErrOnChainWalletMismatch:
			response.Unprocessable(w, err.Error())
		case usecase.ErrAlreadyLinked, usecase.ErrOnChainIDTaken:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to link registry entry")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor linked to registry", doctor)
}

func (h *DoctorHandler) ApproveDoctor(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.doctorUsecase.ApproveDoctor, "Doctor approved")
}

func (h *DoctorHandler) DenyDoctor(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.doctorUsecase.DenyDoctor, "Doctor denied")
}

func (h *DoctorHandler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) (*dto.VerificationResponse, error), message string) {
	doctorID, ok := pathUUID(w, r, "id", "doctor ID")
	if !ok {
		return
	}

	result, err := fn(r.Context(), doctorID)
	if err != nil {
		switch {
		case err == usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case err == usecase.ErrDoctorAlreadyDecided:
			response.Conflict(w, err.Error())
		case errors.Is(err, gateway.ErrTransactionFailed):
			response.Upstream(w, http.StatusBadGateway, "Registry transaction reverted")
		case errors.Is(err, gateway.ErrNoSigner):
			response.Forbidden(w, "No signing key for the admin wallet")
		default:
			response.InternalServerError(w, "Failed to record decision")
		}
		return
	}

	response.Success(w, http.StatusOK, message, result)
}

func (h *DoctorHandler) ResetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor ID")
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.ResetDoctor(r.Context(), doctorID)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrResetNotAllowed:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to reset doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor reset to pending", doctor)
}
