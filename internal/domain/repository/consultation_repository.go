package repository

import (
	"pulsebridge-consult/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *entity.Review) error
	FindBySessionID(db *gorm.DB, sessionID string) (*entity.Review, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Review, error)
	SummaryByDoctor(db *gorm.DB, doctorID uuid.UUID) (*entity.RatingSummary, error)
}

type PrescriptionRepository interface {
	Create(db *gorm.DB, prescription *entity.Prescription) error
	FindBySessionID(db *gorm.DB, sessionID string) (*entity.Prescription, error)
	FindByPatientWallet(db *gorm.DB, wallet string) ([]entity.Prescription, error)
}
