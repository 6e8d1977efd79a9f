package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type AppointmentQuery struct {
	DoctorID *uuid.UUID `validate:"omitempty"`
	Date     string     `validate:"omitempty,slotdate"`
	Status   string     `validate:"omitempty,oneof=scheduled completed"`
}

type SetMeetingLinkRequest struct {
	MeetingLink string `json:"meeting_link" validate:"required,url"`
}

type MarkJoinedRequest struct {
	Participant string `json:"participant" validate:"required,oneof=doctor patient"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                 uuid.UUID        `json:"id"`
	BookingAttemptID   uuid.UUID        `json:"booking_attempt_id"`
	SessionID          string           `json:"session_id,omitempty"`
	DoctorID           uuid.UUID        `json:"doctor_id"`
	DoctorWallet       string           `json:"doctor_wallet"`
	PatientWallet      string           `json:"patient_wallet"`
	Date               string           `json:"date"`
	StartTime          string           `json:"start_time"`
	EndTime            string           `json:"end_time"`
	Fee                decimal.Decimal  `json:"fee"`
	FeeCurrency        string           `json:"fee_currency"`
	SettlementToken    string           `json:"settlement_token"`
	AmountPaid         decimal.Decimal  `json:"amount_paid"`
	Status             string           `json:"status"`
	MeetingLink        string           `json:"meeting_link,omitempty"`
	DoctorJoined       bool             `json:"doctor_joined"`
	DoctorJoinedAt     *time.Time       `json:"doctor_joined_at,omitempty"`
	PatientJoined      bool             `json:"patient_joined"`
	PatientJoinedAt    *time.Time       `json:"patient_joined_at,omitempty"`
	BothPresent        bool             `json:"both_present"`
	MeetingStartTime   *time.Time       `json:"meeting_start_time,omitempty"`
	MeetingCompleted   bool             `json:"meeting_completed"`
	MeetingCompletedAt *time.Time       `json:"meeting_completed_at,omitempty"`
	OnChain            *SessionResponse `json:"on_chain,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type SessionResponse struct {
	ID                   string    `json:"id"`
	Patient              string    `json:"patient"`
	DoctorID             uint32    `json:"doctor_id"`
	Amount               string    `json:"amount"`
	Token                string    `json:"token"`
	StartTime            time.Time `json:"start_time"`
	Status               string    `json:"status"`
	PrescriptionIPFSHash string    `json:"prescription_ipfs_hash,omitempty"`
	Rating               uint8     `json:"rating,omitempty"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

type TaskResponse struct {
	ID            uuid.UUID  `json:"id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	DoneAt        *time.Time `json:"done_at,omitempty"`
}

type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}
