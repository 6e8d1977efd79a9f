package handler

import (
	"encoding/json"
	"net/http"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/usecase"
	"pulsebridge-consult/pkg/response"
	"pulsebridge-consult/pkg/validator"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *AvailabilityHandler) SaveMyAvailability(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.availabilityUsecase.SaveMyAvailability(r.Context(), &req)
	if err != nil {
		writeAvailabilityError(w, err, "Failed to save availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability saved successfully", availability)
}

func (h *AvailabilityHandler) AddMySlots(w http.ResponseWriter, r *http.Request) {
	var req dto.AddSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.availabilityUsecase.AddMySlots(r.Context(), &req)
	if err != nil {
		writeAvailabilityError(w, err, "Failed to add slots")
		return
	}

	response.Success(w, http.StatusCreated, "Slots added successfully", availability)
}

func (h *AvailabilityHandler) RemoveMySlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := pathUUID(w, r, "slotId", "slot ID")
	if !ok {
		return
	}

	if err := h.availabilityUsecase.RemoveMySlot(r.Context(), slotID); err != nil {
		writeAvailabilityError(w, err, "Failed to remove slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot removed successfully", nil)
}

func (h *AvailabilityHandler) ClearMyAvailability(w http.ResponseWriter, r *http.Request) {
	if err := h.availabilityUsecase.ClearMyAvailability(r.Context()); err != nil {
		writeAvailabilityError(w, err, "Failed to clear availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability cleared successfully", nil)
}

func (h *AvailabilityHandler) GetMyAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := h.availabilityUsecase.GetMyAvailability(r.Context())
	if err != nil {
		writeAvailabilityError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}

func (h *AvailabilityHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor ID")
	if !ok {
		return
	}

	availability, err := h.availabilityUsecase.GetAvailableSlots(r.Context(), doctorID)
	if err != nil {
		writeAvailabilityError(w, err, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", availability)
}

func writeAvailabilityError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrDoctorNotFound:
		response.NotFound(w, "Doctor profile not found")
	case usecase.ErrAvailabilityNotFound:
		response.NotFound(w, err.Error())
	case usecase.ErrInvalidSlotRange, usecase.ErrSlotDateInPast:
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	case usecase.ErrDuplicateSlot, usecase.ErrSlotNotRemovable:
		response.Conflict(w, err.Error())
	case usecase.ErrNotAuthenticated:
		response.Unauthorized(w, "")
	default:
		response.InternalServerError(w, fallback)
	}
}
