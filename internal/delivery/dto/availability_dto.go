package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type TimeSlotRequest struct {
	Date      string `json:"date" validate:"required,slotdate"`       // Format: YYYY-MM-DD
	StartTime string `json:"start_time" validate:"required,slottime"` // Format: HH:MM
	EndTime   string `json:"end_time" validate:"required,slottime"`
}

type SaveAvailabilityRequest struct {
	TimeSlots []TimeSlotRequest `json:"time_slots" validate:"required,min=1,dive"`
}

type AddSlotsRequest struct {
	TimeSlots []TimeSlotRequest `json:"time_slots" validate:"required,min=1,dive"`
}

// Response DTOs

type TimeSlotResponse struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsBooked  bool      `json:"is_booked"`
	Held      bool      `json:"held,omitempty"`
}

type AvailabilityResponse struct {
	DoctorID      uuid.UUID          `json:"doctor_id"`
	WalletAddress string             `json:"wallet_address"`
	TimeSlots     []TimeSlotResponse `json:"time_slots"`
	UpdatedAt     *time.Time         `json:"updated_at,omitempty"`
}
