package repository

import (
	"pulsebridge-consult/internal/domain/entity"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByName(db *gorm.DB, name string) (*entity.Role, error)
	FindAll(db *gorm.DB) ([]entity.Role, error)
}
