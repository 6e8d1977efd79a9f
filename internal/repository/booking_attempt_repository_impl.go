package repository

import (
	"errors"
	"time"

	"pulsebridge-consult/internal/domain/entity"
	domainRepo "pulsebridge-consult/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookingAttemptRepository struct{}

func NewBookingAttemptRepository() domainRepo.BookingAttemptRepository {
	return &bookingAttemptRepository{}
}

func (r *bookingAttemptRepository) Create(db *gorm.DB, attempt *entity.BookingAttempt) error {
	return db.Create(attempt).Error
}

func (r *bookingAttemptRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.BookingAttempt, error) {
	var attempt entity.BookingAttempt
	err := db.Where("id = ?", id).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *bookingAttemptRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.BookingAttempt, error) {
	var attempts []entity.BookingAttempt
	err := db.Where("patient_id = ?", patientID).Order("created_at DESC").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *bookingAttemptRepository) Update(db *gorm.DB, attempt *entity.BookingAttempt) error {
	return db.Save(attempt).Error
}

func (r *bookingAttemptRepository) FindAbandoned(db *gorm.DB, cutoff time.Time, limit int) ([]entity.BookingAttempt, error) {
	var attempts []entity.BookingAttempt
	err := db.Where("stage NOT IN ? AND session_tx_hash = ? AND updated_at < ?",
		[]entity.BookingStage{entity.StageConfirmed, entity.StageExpired}, "", cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// MarkExpired only touches attempts that never submitted a session
// transaction, so an in-flight payment is never orphaned.
func (r *bookingAttemptRepository) MarkExpired(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.BookingAttempt{}).
		Where("id = ? AND stage NOT IN ? AND session_tx_hash = ?",
			id, []entity.BookingStage{entity.StageConfirmed, entity.StageExpired}, "").
		Update("stage", entity.StageExpired)
	return result.RowsAffected, result.Error
}
