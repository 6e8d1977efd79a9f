package repository

import (
	"errors"

	"pulsebridge-consult/internal/domain/entity"
	domainRepo "pulsebridge-consult/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reviewRepository struct{}

func NewReviewRepository() domainRepo.ReviewRepository {
	return &reviewRepository{}
}

func (r *reviewRepository) Create(db *gorm.DB, review *entity.Review) error {
	return db.Create(review).Error
}

func (r *reviewRepository) FindBySessionID(db *gorm.DB, sessionID string) (*entity.Review, error) {
	var review entity.Review
	err := db.Where("session_id = ?", sessionID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Review, error) {
	var reviews []entity.Review
	err := db.Where("doctor_id = ?", doctorID).Order("created_at DESC").Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) SummaryByDoctor(db *gorm.DB, doctorID uuid.UUID) (*entity.RatingSummary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := db.Model(&entity.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("doctor_id = ?", doctorID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &entity.RatingSummary{DoctorID: doctorID, Average: row.Average, Count: row.Count}, nil
}
