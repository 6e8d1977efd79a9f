package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/usecase"
	"pulsebridge-consult/pkg/response"
	"pulsebridge-consult/pkg/validator"

	"github.com/google/uuid"
)

type ConsoleHandler struct {
	consoleUsecase usecase.ConsoleUsecase
	validator      *validator.CustomValidator
}

func NewConsoleHandler(consoleUsecase usecase.ConsoleUsecase, validator *validator.CustomValidator) *ConsoleHandler {
	return &ConsoleHandler{
		consoleUsecase: consoleUsecase,
		validator:      validator,
	}
}

// ListAppointments supports ?doctor_id=, ?date=YYYY-MM-DD and ?status=.
func (h *ConsoleHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := dto.AppointmentQuery{
		Date:   q.Get("date"),
		Status: q.Get("status"),
	}
	if raw := q.Get("doctor_id"); raw != "" {
		doctorID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
			return
		}
		query.DoctorID = &doctorID
	}

	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointments, err := h.consoleUsecase.ListAppointments(r.Context(), &query)
	if err != nil {
		writeConsoleError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *ConsoleHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(w, r, "id", "appointment ID")
	if !ok {
		return
	}

	appointment, err := h.consoleUsecase.GetAppointment(r.Context(), appointmentID)
	if err != nil {
		writeConsoleError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *ConsoleHandler) SetMeetingLink(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(w, r, "id", "appointment ID")
	if !ok {
		return
	}

	var req dto.SetMeetingLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.consoleUsecase.SetMeetingLink(r.Context(), appointmentID, &req)
	if err != nil {
		writeConsoleError(w, err, "Failed to set meeting link")
		return
	}

	response.Success(w, http.StatusOK, "Meeting link saved", appointment)
}

func (h *ConsoleHandler) MarkParticipantJoined(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(w, r, "id", "appointment ID")
	if !ok {
		return
	}

	var req dto.MarkJoinedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.consoleUsecase.MarkParticipantJoined(r.Context(), appointmentID, &req)
	if err != nil {
		writeConsoleError(w, err, "Failed to mark attendance")
		return
	}

	response.Success(w, http.StatusOK, "Attendance recorded", appointment)
}

func (h *ConsoleHandler) CompleteMeeting(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(w, r, "id", "appointment ID")
	if !ok {
		return
	}

	appointment, err := h.consoleUsecase.CompleteMeeting(r.Context(), appointmentID)
	if err != nil {
		writeConsoleError(w, err, "Failed to complete meeting")
		return
	}

	response.Success(w, http.StatusOK, "Meeting completed", appointment)
}

// ListMySessions reads the calling doctor's escrow sessions.
func (h *ConsoleHandler) ListMySessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.consoleUsecase.ListDoctorSessions(r.Context(), nil)
	if err != nil {
		writeConsoleError(w, err, "Failed to get sessions")
		return
	}

	response.Success(w, http.StatusOK, "Sessions retrieved successfully", sessions)
}

func (h *ConsoleHandler) ListDoctorSessions(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor ID")
	if !ok {
		return
	}

	sessions, err := h.consoleUsecase.ListDoctorSessions(r.Context(), &doctorID)
	if err != nil {
		writeConsoleError(w, err, "Failed to get sessions")
		return
	}

	response.Success(w, http.StatusOK, "Sessions retrieved successfully", sessions)
}

func (h *ConsoleHandler) ListOpenTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.consoleUsecase.ListOpenTasks(r.Context())
	if err != nil {
		writeConsoleError(w, err, "Failed to get tasks")
		return
	}

	response.Success(w, http.StatusOK, "Tasks retrieved successfully", tasks)
}

func writeConsoleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrNotAuthenticated):
		response.Unauthorized(w, "")
	case errors.Is(err, usecase.ErrAppointmentNotFound),
		errors.Is(err, usecase.ErrDoctorNotFound),
		errors.Is(err, usecase.ErrSessionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrNotParticipant):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrDoctorNotOnChain):
		response.Unprocessable(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
