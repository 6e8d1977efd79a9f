package repository

import (
	"time"

	"pulsebridge-consult/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(db *gorm.DB, profile *entity.DoctorProfile) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error)
	FindByWallet(db *gorm.DB, wallet string) (*entity.DoctorProfile, error)
	FindByOnChainID(db *gorm.DB, onChainID uint32) (*entity.DoctorProfile, error)
	FindAll(db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error)
	Update(db *gorm.DB, profile *entity.DoctorProfile) error
	// UpdateStatus moves a profile to status only if it is currently in
	// one of from. It returns the number of rows changed.
	UpdateStatus(db *gorm.DB, id uuid.UUID, from []entity.VerificationStatus, to entity.VerificationStatus, at *time.Time) (int64, error)
}
