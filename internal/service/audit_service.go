package service

import (
	"context"

	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	// Record writes an audit entry for action on subject. details is stored
	// as-is under "details".
	Record(ctx context.Context, tx *gorm.DB, actor *uuid.UUID, action string, subject string, subjectID string, details interface{}) error
	// RecordChange writes an audit entry carrying the before and after state.
	RecordChange(ctx context.Context, tx *gorm.DB, actor *uuid.UUID, action string, subject string, subjectID string, before, after interface{}) error
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Record(ctx context.Context, tx *gorm.DB, actor *uuid.UUID, action string, subject string, subjectID string, details interface{}) error {
	return s.write(ctx, tx, actor, action, entity.JSON{
		"subject":    subject,
		"subject_id": subjectID,
		"details":    details,
	})
}

func (s *auditService) RecordChange(ctx context.Context, tx *gorm.DB, actor *uuid.UUID, action string, subject string, subjectID string, before, after interface{}) error {
	return s.write(ctx, tx, actor, action, entity.JSON{
		"subject":    subject,
		"subject_id": subjectID,
		"before":     before,
		"after":      after,
	})
}

func (s *auditService) write(ctx context.Context, tx *gorm.DB, actor *uuid.UUID, action string, metadata entity.JSON) error {
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}

	auditLog := &entity.AuditLog{
		UserID:   actor,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log %s: %+v", action, err)
		return err
	}

	return nil
}
