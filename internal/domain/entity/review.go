package entity

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID      uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	SessionID     string    `gorm:"type:varchar(80);uniqueIndex;not null" json:"session_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null" json:"patient_id"`
	PatientWallet string    `gorm:"type:varchar(42);not null" json:"patient_wallet"`
	Rating        uint8     `gorm:"not null" json:"rating"`
	Comment       string    `gorm:"type:text" json:"comment,omitempty"`
	TxHash        string    `gorm:"type:varchar(66)" json:"tx_hash,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// RatingSummary is the aggregate shown on a doctor's page.
type RatingSummary struct {
	DoctorID uuid.UUID
	Average  float64
	Count    int64
}
