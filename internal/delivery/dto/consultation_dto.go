package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RateSessionRequest struct {
	Rating  uint8  `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// Response DTOs

type PrescriptionResponse struct {
	SessionID     string     `json:"session_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	PatientWallet string     `json:"patient_wallet"`
	IPFSHash      string     `json:"ipfs_hash"`
	ReleaseTxHash string     `json:"release_tx_hash"`
	CreatedAt     time.Time  `json:"created_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}

type ReviewResponse struct {
	ID            uuid.UUID `json:"id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	SessionID     string    `json:"session_id"`
	PatientWallet string    `json:"patient_wallet"`
	Rating        uint8     `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	TxHash        string    `json:"tx_hash,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReviewListResponse struct {
	Reviews []ReviewResponse      `json:"reviews"`
	Summary RatingSummaryResponse `json:"summary"`
	Total   int                   `json:"total"`
}
