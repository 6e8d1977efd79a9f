package repository

import (
	"time"

	"pulsebridge-consult/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingAttemptRepository interface {
	Create(db *gorm.DB, attempt *entity.BookingAttempt) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.BookingAttempt, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.BookingAttempt, error)
	Update(db *gorm.DB, attempt *entity.BookingAttempt) error
	// FindAbandoned returns unconfirmed attempts without a submitted session
	// transaction that were last touched before cutoff.
	FindAbandoned(db *gorm.DB, cutoff time.Time, limit int) ([]entity.BookingAttempt, error)
	MarkExpired(db *gorm.DB, id uuid.UUID) (int64, error)
}
