package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile holds the contact details a patient shares with doctors.
type PatientProfile struct {
	UserID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName    string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Email       string     `gorm:"type:varchar(255);index" json:"email,omitempty"`
	PhoneNumber string     `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender      string     `gorm:"type:char(1)" json:"gender,omitempty"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// Gender constants
const (
	GenderMale   = "M"
	GenderFemale = "F"
)
