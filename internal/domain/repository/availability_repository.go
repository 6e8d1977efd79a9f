package repository

import (
	"time"

	"pulsebridge-consult/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorAvailability, error)
	Upsert(db *gorm.DB, availability *entity.DoctorAvailability) error
	// ReplaceOpenSlots swaps every unbooked, unheld slot for slots. Booked
	// and actively held slots are kept.
	ReplaceOpenSlots(db *gorm.DB, doctorID uuid.UUID, slots []entity.TimeSlot, now time.Time) error
	AddSlots(db *gorm.DB, slots []entity.TimeSlot) (int64, error)
	DeleteOpenSlot(db *gorm.DB, doctorID, slotID uuid.UUID, now time.Time) (int64, error)
	Clear(db *gorm.DB, doctorID uuid.UUID, now time.Time) error

	FindSlot(db *gorm.DB, slotID uuid.UUID) (*entity.TimeSlot, error)
	// HoldSlot reserves an unbooked slot for attemptID when it is free, its
	// hold expired, or attemptID already holds it.
	HoldSlot(db *gorm.DB, slotID, attemptID uuid.UUID, until, now time.Time) (int64, error)
	// PinHold takes the slot for attemptID without an expiry. Used while a
	// session transaction is in flight.
	PinHold(db *gorm.DB, slotID, attemptID uuid.UUID, now time.Time) (int64, error)
	// BookSlot flips is_booked for the slot held by attemptID.
	BookSlot(db *gorm.DB, slotID, attemptID uuid.UUID) (int64, error)
	ReleaseHold(db *gorm.DB, slotID, attemptID uuid.UUID) (int64, error)
	// ReleaseExpiredHolds clears lapsed holds, skipping holders with a
	// submitted session transaction.
	ReleaseExpiredHolds(db *gorm.DB, now time.Time) (int64, error)
}
