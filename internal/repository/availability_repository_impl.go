package repository

import (
	"errors"
	"time"

	"pulsebridge-consult/internal/domain/entity"
	domainRepo "pulsebridge-consult/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type availabilityRepository struct{}

func NewAvailabilityRepository() domainRepo.AvailabilityRepository {
	return &availabilityRepository{}
}

func (r *availabilityRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorAvailability, error) {
	var availability entity.DoctorAvailability
	err := db.Preload("TimeSlots", func(db *gorm.DB) *gorm.DB {
		return db.Order("date ASC, start_time ASC")
	}).Where("doctor_id = ?", doctorID).First(&availability).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &availability, nil
}

func (r *availabilityRepository) Upsert(db *gorm.DB, availability *entity.DoctorAvailability) error {
	return db.Omit("TimeSlots").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"wallet_address", "updated_at"}),
	}).Create(availability).Error
}

func (r *availabilityRepository) ReplaceOpenSlots(db *gorm.DB, doctorID uuid.UUID, slots []entity.TimeSlot, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("doctor_id = ? AND is_booked = ? AND "+unheld, doctorID, false, now).
			Delete(&entity.TimeSlot{}).Error
		if err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		// Slots colliding with a kept booked or held slot are skipped.
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&slots).Error
	})
}

func (r *availabilityRepository) AddSlots(db *gorm.DB, slots []entity.TimeSlot) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&slots)
	return result.RowsAffected, result.Error
}

func (r *availabilityRepository) DeleteOpenSlot(db *gorm.DB, doctorID, slotID uuid.UUID, now time.Time) (int64, error) {
	result := db.Where("id = ? AND doctor_id = ? AND is_booked = ? AND "+unheld, slotID, doctorID, false, now).
		Delete(&entity.TimeSlot{})
	return result.RowsAffected, result.Error
}

// Clear removes the availability document and its open slots. Booked slots
// stay behind because appointments reference them.
func (r *availabilityRepository) Clear(db *gorm.DB, doctorID uuid.UUID, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("doctor_id = ? AND is_booked = ? AND "+unheld, doctorID, false, now).
			Delete(&entity.TimeSlot{}).Error
		if err != nil {
			return err
		}
		return tx.Where("doctor_id = ?", doctorID).Delete(&entity.DoctorAvailability{}).Error
	})
}

func (r *availabilityRepository) FindSlot(db *gorm.DB, slotID uuid.UUID) (*entity.TimeSlot, error) {
	var slot entity.TimeSlot
	err := db.Where("id = ?", slotID).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

// inFlightHolder matches slots whose holder already submitted a session
// transaction. Such holds never lapse.
const inFlightHolder = "EXISTS (SELECT 1 FROM booking_attempts ba WHERE ba.id = time_slots.held_by AND ba.session_tx_hash <> '')"

// unheld matches slots without a live hold. A hold with a NULL held_until
// is pinned.
const unheld = "(held_by IS NULL OR (held_until < ? AND NOT " + inFlightHolder + "))"

// holdable matches an unbooked slot that is free, held by the given attempt,
// or whose hold lapsed without a submitted session transaction.
const holdable = "id = ? AND is_booked = ? AND (held_by IS NULL OR held_by = ? OR (held_until < ? AND NOT " + inFlightHolder + "))"

// HoldSlot returns 1 when the hold was taken or extended, 0 when the slot is
// booked or held by another attempt.
func (r *availabilityRepository) HoldSlot(db *gorm.DB, slotID, attemptID uuid.UUID, until, now time.Time) (int64, error) {
	result := db.Model(&entity.TimeSlot{}).
		Where(holdable, slotID, false, attemptID, now).
		Updates(map[string]interface{}{
			"held_by":    attemptID,
			"held_until": until,
		})
	return result.RowsAffected, result.Error
}

// PinHold takes the slot for attemptID like HoldSlot but clears held_until,
// so the hold survives until the slot is booked or the hold released.
func (r *availabilityRepository) PinHold(db *gorm.DB, slotID, attemptID uuid.UUID, now time.Time) (int64, error) {
	result := db.Model(&entity.TimeSlot{}).
		Where(holdable, slotID, false, attemptID, now).
		Updates(map[string]interface{}{
			"held_by":    attemptID,
			"held_until": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *availabilityRepository) BookSlot(db *gorm.DB, slotID, attemptID uuid.UUID) (int64, error) {
	result := db.Model(&entity.TimeSlot{}).
		Where("id = ? AND is_booked = ? AND held_by = ?", slotID, false, attemptID).
		Updates(map[string]interface{}{
			"is_booked":  true,
			"held_until": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *availabilityRepository) ReleaseHold(db *gorm.DB, slotID, attemptID uuid.UUID) (int64, error) {
	result := db.Model(&entity.TimeSlot{}).
		Where("id = ? AND held_by = ? AND is_booked = ?", slotID, attemptID, false).
		Updates(map[string]interface{}{
			"held_by":    nil,
			"held_until": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *availabilityRepository) ReleaseExpiredHolds(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&entity.TimeSlot{}).
		Where("is_booked = ? AND held_until < ? AND NOT "+inFlightHolder, false, now).
		Updates(map[string]interface{}{
			"held_by":    nil,
			"held_until": nil,
		})
	return result.RowsAffected, result.Error
}
