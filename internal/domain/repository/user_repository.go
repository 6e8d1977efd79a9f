package repository

import (
	"time"

	"pulsebridge-consult/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindByWallet(db *gorm.DB, wallet string) (*entity.User, error)
	UpdateRole(db *gorm.DB, id uuid.UUID, roleID int) error
	TouchLogin(db *gorm.DB, id uuid.UUID, at time.Time) error
}
