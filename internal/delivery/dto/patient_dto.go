package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type UpdatePatientProfileRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10,max=20"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,slotdate"` // Format: YYYY-MM-DD
	Gender      string `json:"gender" validate:"omitempty,oneof=M F"`
}

// Response DTOs

type PatientProfileResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
