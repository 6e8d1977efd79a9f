package entity

import (
	"time"

	"github.com/google/uuid"
)

// Prescription records the document a doctor pinned when completing a session.
type Prescription struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID     string     `gorm:"type:varchar(80);uniqueIndex;not null" json:"session_id"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	DoctorID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientWallet string     `gorm:"type:varchar(42);not null;index" json:"patient_wallet"`
	IPFSHash      string     `gorm:"column:ipfs_hash;type:varchar(128);not null" json:"ipfs_hash"`
	ReleaseTxHash string     `gorm:"type:varchar(66);not null" json:"release_tx_hash"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}
