package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus mirrors the escrow contract's funds state.
type PaymentStatus string

const (
	PaymentHeld             PaymentStatus = "held"
	PaymentReleasedToDoctor PaymentStatus = "released_to_doctor"
)

// Payment is the reporting copy of an escrowed consultation fee.
type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID   *uuid.UUID      `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	SessionID       string          `gorm:"type:varchar(80);uniqueIndex;not null" json:"session_id"`
	DoctorID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientWallet   string          `gorm:"type:varchar(42);not null" json:"patient_wallet"`
	Token           string          `gorm:"type:varchar(10);not null" json:"token"`
	Amount          decimal.Decimal `gorm:"type:numeric(38,18);not null" json:"amount"`
	AmountBaseUnits string          `gorm:"type:varchar(80);not null" json:"amount_base_units"`
	Status          PaymentStatus   `gorm:"type:varchar(30);not null;default:'held';index" json:"status"`
	FundTxHash      string          `gorm:"type:varchar(66)" json:"fund_tx_hash,omitempty"`
	ReleaseTxHash   string          `gorm:"type:varchar(66)" json:"release_tx_hash,omitempty"`
	ReleasedAt      *time.Time      `json:"released_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
