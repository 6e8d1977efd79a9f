package repository

import (
	"errors"

	"pulsebridge-consult/internal/domain/entity"
	domainRepo "pulsebridge-consult/internal/domain/repository"

	"gorm.io/gorm"
)

type prescriptionRepository struct{}

func NewPrescriptionRepository() domainRepo.PrescriptionRepository {
	return &prescriptionRepository{}
}

func (r *prescriptionRepository) Create(db *gorm.DB, prescription *entity.Prescription) error {
	return db.Create(prescription).Error
}

func (r *prescriptionRepository) FindBySessionID(db *gorm.DB, sessionID string) (*entity.Prescription, error) {
	var prescription entity.Prescription
	err := db.Where("session_id = ?", sessionID).First(&prescription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prescription, nil
}

func (r *prescriptionRepository) FindByPatientWallet(db *gorm.DB, wallet string) ([]entity.Prescription, error) {
	var prescriptions []entity.Prescription
	err := db.Where("LOWER(patient_wallet) = LOWER(?)", wallet).Order("created_at DESC").Find(&prescriptions).Error
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}
