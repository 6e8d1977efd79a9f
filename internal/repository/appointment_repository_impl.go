package repository

import (
	"errors"

	"pulsebridge-consult/internal/domain/entity"
	domainRepo "pulsebridge-consult/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return r.first(db.Where("id = ?", id))
}

func (r *appointmentRepository) FindByAttemptID(db *gorm.DB, attemptID uuid.UUID) (*entity.Appointment, error) {
	return r.first(db.Where("booking_attempt_id = ?", attemptID))
}

func (r *appointmentRepository) FindBySessionID(db *gorm.DB, sessionID string) (*entity.Appointment, error) {
	return r.first(db.Where("session_id = ?", sessionID))
}

func (r *appointmentRepository) first(query *gorm.DB) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := query.First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Model(&entity.Appointment{})

	if filter != nil {
		if filter.DoctorID != nil {
			query = query.Where("doctor_id = ?", *filter.DoctorID)
		}
		if filter.PatientID != nil {
			query = query.Where("patient_id = ?", *filter.PatientID)
		}
		if filter.Date != "" {
			query = query.Where("date = ?", filter.Date)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	if err := query.Order("date DESC, start_time DESC").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateMeetingLink(db *gorm.DB, id uuid.UUID, link string) (int64, error) {
	result := db.Model(&entity.Appointment{}).Where("id = ?", id).Update("meeting_link", link)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) MarkCompletedBySession(db *gorm.DB, sessionID string) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("session_id = ? AND status != ?", sessionID, entity.AppointmentCompleted).
		Update("status", entity.AppointmentCompleted)
	return result.RowsAffected, result.Error
}

// Mutate serializes concurrent attendance updates with SELECT ... FOR UPDATE.
func (r *appointmentRepository) Mutate(db *gorm.DB, id uuid.UUID, fn func(*entity.Appointment) (bool, error)) (*entity.Appointment, error) {
	var out *entity.Appointment
	err := db.Transaction(func(tx *gorm.DB) error {
		var appointment entity.Appointment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&appointment).Error
		if err != nil {
			return err
		}

		changed, err := fn(&appointment)
		if err != nil {
			return err
		}
		if changed {
			if err := tx.Save(&appointment).Error; err != nil {
				return err
			}
		}
		out = &appointment
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}
