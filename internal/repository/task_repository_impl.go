package repository

import (
	"time"

	"pulsebridge-consult/internal/domain/entity"
	domainRepo "pulsebridge-consult/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type taskRepository struct{}

func NewTaskRepository() domainRepo.TaskRepository {
	return &taskRepository{}
}

func (r *taskRepository) Create(db *gorm.DB, task *entity.Task) error {
	return db.Create(task).Error
}

func (r *taskRepository) FindOpen(db *gorm.DB, kind entity.TaskKind) ([]entity.Task, error) {
	var tasks []entity.Task
	query := db.Where("status = ?", entity.TaskOpen)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CompleteForAppointment(db *gorm.DB, appointmentID uuid.UUID, kind entity.TaskKind, at time.Time) (int64, error) {
	result := db.Model(&entity.Task{}).
		Where("appointment_id = ? AND kind = ? AND status = ?", appointmentID, kind, entity.TaskOpen).
		Updates(map[string]interface{}{
			"status":  entity.TaskDone,
			"done_at": at,
		})
	return result.RowsAffected, result.Error
}
