package entity

import (
	"time"

	"github.com/google/uuid"
)

type TaskKind string

const (
	TaskMeetingLink TaskKind = "meeting_link"
)

type TaskStatus string

const (
	TaskOpen TaskStatus = "open"
	TaskDone TaskStatus = "done"
)

// Task is an admin work item, such as providing the meeting link for a
// newly confirmed appointment.
type Task struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"appointment_id"`
	Kind          TaskKind   `gorm:"type:varchar(30);not null" json:"kind"`
	Status        TaskStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	DoneAt        *time.Time `json:"done_at,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}
