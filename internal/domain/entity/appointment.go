package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus is the off-chain lifecycle of a confirmed booking.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// Participant identifies who joined a meeting.
type Participant string

const (
	ParticipantDoctor  Participant = "doctor"
	ParticipantPatient Participant = "patient"
)

// Appointment is the off-chain convenience record written after a session is
// confirmed. The escrow contract stays authoritative for payment state.
type Appointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BookingAttemptID   uuid.UUID         `gorm:"type:uuid;uniqueIndex;not null" json:"booking_attempt_id"`
	SessionID          string            `gorm:"type:varchar(80);index" json:"session_id,omitempty"`
	DoctorID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	DoctorWallet       string            `gorm:"type:varchar(42);not null" json:"doctor_wallet"`
	PatientID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	PatientWallet      string            `gorm:"type:varchar(42);not null" json:"patient_wallet"`
	SlotID             uuid.UUID         `gorm:"type:uuid;not null" json:"slot_id"`
	Date               string            `gorm:"type:varchar(10);not null;index" json:"date"`
	StartTime          string            `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime            string            `gorm:"type:varchar(5);not null" json:"end_time"`
	Fee                decimal.Decimal   `gorm:"type:numeric(20,6);not null" json:"fee"`
	FeeCurrency        string            `gorm:"type:varchar(10);not null" json:"fee_currency"`
	SettlementToken    string            `gorm:"type:varchar(10);not null" json:"settlement_token"`
	AmountPaid         decimal.Decimal   `gorm:"type:numeric(38,18);not null" json:"amount_paid"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	MeetingLink        string            `gorm:"type:text" json:"meeting_link,omitempty"`
	DoctorJoined       bool              `gorm:"not null;default:false" json:"doctor_joined"`
	DoctorJoinedAt     *time.Time        `json:"doctor_joined_at,omitempty"`
	PatientJoined      bool              `gorm:"not null;default:false" json:"patient_joined"`
	PatientJoinedAt    *time.Time        `json:"patient_joined_at,omitempty"`
	BothPresent        bool              `gorm:"not null;default:false" json:"both_present"`
	MeetingStartTime   *time.Time        `json:"meeting_start_time,omitempty"`
	MeetingCompleted   bool              `gorm:"not null;default:false" json:"meeting_completed"`
	MeetingCompletedAt *time.Time        `json:"meeting_completed_at,omitempty"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// MarkJoined sets the participant's joined flag once. When both participants
// are present for the first time BothPresent is set and MeetingStartTime is
// stamped. It reports whether anything changed.
func (a *Appointment) MarkJoined(p Participant, now time.Time) bool {
	changed := false
	switch p {
	case ParticipantDoctor:
		if !a.DoctorJoined {
			a.DoctorJoined = true
			a.DoctorJoinedAt = &now
			changed = true
		}
	case ParticipantPatient:
		if !a.PatientJoined {
			a.PatientJoined = true
			a.PatientJoinedAt = &now
			changed = true
		}
	}

	if a.DoctorJoined && a.PatientJoined && !a.BothPresent {
		a.BothPresent = true
		if a.MeetingStartTime == nil {
			a.MeetingStartTime = &now
		}
		changed = true
	}
	return changed
}

// Complete marks the meeting finished. It reports false if it already was.
func (a *Appointment) Complete(now time.Time) bool {
	if a.MeetingCompleted {
		return false
	}
	a.MeetingCompleted = true
	a.MeetingCompletedAt = &now
	return true
}

// ParticipantFor resolves which side of the appointment wallet belongs to.
func (a *Appointment) ParticipantFor(wallet string) (Participant, bool) {
	switch {
	case equalFoldAddr(wallet, a.DoctorWallet):
		return ParticipantDoctor, true
	case equalFoldAddr(wallet, a.PatientWallet):
		return ParticipantPatient, true
	}
	return "", false
}

// AppointmentFilter narrows console listings.
type AppointmentFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Date      string
	Status    AppointmentStatus
}
