package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"pulsebridge-consult/internal/converter"
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/repository"
	"pulsebridge-consult/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound    = errors.New("patient profile not found")
	ErrInvalidDateOfBirth = errors.New("date of birth must be in the past")
)

type PatientProfileUsecase interface {
	GetSelfProfile(ctx context.Context) (*dto.PatientProfileResponse, error)
	UpdateSelfProfile(ctx context.Context, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error)
}

type patientProfileUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewPatientProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:                 db,
		log:                log,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

func (u *patientProfileUsecase) GetSelfProfile(ctx context.Context) (*dto.PatientProfileResponse, error) {
	userID, ok := GetUserID(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	profile, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}
	return converter.PatientProfileToResponse(profile), nil
}

// UpdateSelfProfile creates or replaces the caller's contact details.
func (u *patientProfileUsecase) UpdateSelfProfile(ctx context.Context, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error) {
	userID, ok := GetUserID(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.patientProfileRepo.FindByUserID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}

	profile := &entity.PatientProfile{
		UserID:      userID,
		FullName:    strings.TrimSpace(req.FullName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(entity.SlotDateLayout, req.DateOfBirth)
		if err != nil || !dob.Before(time.Now()) {
			return nil, ErrInvalidDateOfBirth
		}
		profile.DateOfBirth = &dob
	}

	if err := u.patientProfileRepo.Upsert(tx, profile); err != nil {
		u.log.Warnf("Failed to upsert patient profile: %+v", err)
		return nil, err
	}

	var before interface{}
	if existing != nil {
		before = converter.PatientProfileToResponse(existing)
	}
	if err := u.auditService.RecordChange(ctx, tx, &userID, entity.AuditActionProfileUpdate, "patient_profile", userID.String(),
		before, converter.PatientProfileToResponse(profile)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PatientProfileToResponse(profile), nil
}
