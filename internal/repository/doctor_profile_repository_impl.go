package repository

import (
	"errors"
	"time"

	"pulsebridge-consult/internal/domain/entity"
	domainRepo "pulsebridge-consult/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Create(profile).Error
}

func (r *doctorProfileRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error) {
	return r.first(db.Where("id = ?", id))
}

func (r *doctorProfileRepository) FindByWallet(db *gorm.DB, wallet string) (*entity.DoctorProfile, error) {
	return r.first(db.Where("LOWER(wallet_address) = LOWER(?)", wallet))
}

func (r *doctorProfileRepository) FindByOnChainID(db *gorm.DB, onChainID uint32) (*entity.DoctorProfile, error) {
	return r.first(db.Where("onchain_id = ?", onChainID))
}

func (r *doctorProfileRepository) first(query *gorm.DB) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := query.First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindAll supports optional filters: name, specialization (ILIKE) and status.
func (r *doctorProfileRepository) FindAll(db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	query := db.Model(&entity.DoctorProfile{})

	if filter != nil {
		if filter.Name != "" {
			query = query.Where("name ILIKE ?", "%"+filter.Name+"%")
		}
		if filter.Specialization != "" {
			query = query.Where("specialization ILIKE ?", "%"+filter.Specialization+"%")
		}
		if filter.Status != "" {
			query = query.Where("verification_status = ?", filter.Status)
		}
	}

	if err := query.Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Save(profile).Error
}

// UpdateStatus is a conditional transition. Zero rows affected means the
// profile was not in any of the from states.
func (r *doctorProfileRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from []entity.VerificationStatus, to entity.VerificationStatus, at *time.Time) (int64, error) {
	result := db.Model(&entity.DoctorProfile{}).
		Where("id = ? AND verification_status IN ?", id, from).
		Updates(map[string]interface{}{
			"verification_status": to,
			"verified_at":         at,
		})
	return result.RowsAffected, result.Error
}
