package repository

import (
	"errors"
	"time"

	"pulsebridge-consult/internal/domain/entity"
	domainRepo "pulsebridge-consult/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *entity.User) error {
	return db.Create(user).Error
}

func (r *userRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := db.Preload("Role").Preload("PatientProfile").Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByWallet matches the address case-insensitively.
func (r *userRepository) FindByWallet(db *gorm.DB, wallet string) (*entity.User, error) {
	var user entity.User
	err := db.Where("LOWER(wallet_address) = LOWER(?)", wallet).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateRole(db *gorm.DB, id uuid.UUID, roleID int) error {
	return db.Model(&entity.User{}).Where("id = ?", id).Update("role_id", roleID).Error
}

func (r *userRepository) TouchLogin(db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.Model(&entity.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}
