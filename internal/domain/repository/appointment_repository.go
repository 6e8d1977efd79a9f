package repository

import (
	"time"

	"pulsebridge-consult/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByAttemptID(db *gorm.DB, attemptID uuid.UUID) (*entity.Appointment, error)
	FindBySessionID(db *gorm.DB, sessionID string) (*entity.Appointment, error)
	FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	UpdateMeetingLink(db *gorm.DB, id uuid.UUID, link string) (int64, error)
	MarkCompletedBySession(db *gorm.DB, sessionID string) (int64, error)
	// Mutate loads the appointment under a row lock, applies fn and saves
	// the result when fn reports a change.
	Mutate(db *gorm.DB, id uuid.UUID, fn func(*entity.Appointment) (bool, error)) (*entity.Appointment, error)
}

type PaymentRepository interface {
	Create(db *gorm.DB, payment *entity.Payment) error
	FindBySessionID(db *gorm.DB, sessionID string) (*entity.Payment, error)
	MarkReleased(db *gorm.DB, sessionID, txHash string, at time.Time) (int64, error)
}

type TaskRepository interface {
	Create(db *gorm.DB, task *entity.Task) error
	FindOpen(db *gorm.DB, kind entity.TaskKind) ([]entity.Task, error)
	CompleteForAppointment(db *gorm.DB, appointmentID uuid.UUID, kind entity.TaskKind, at time.Time) (int64, error)
}
