package usecase

import (
	"context"
	"time"

	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/repository"
	"pulsebridge-consult/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const expiryBatchSize = 200

// ExpiryResult summarises one expiry run.
type ExpiryResult struct {
	AttemptsExpired int
	HoldsReleased   int64
}

// HoldExpiryUsecase retires booking attempts that stopped before a session
// transaction was submitted and frees their slots. Holds are already
// ignored once held_until passes, so this is housekeeping.
type HoldExpiryUsecase interface {
	ExpireAbandoned(ctx context.Context) (*ExpiryResult, error)
}

type holdExpiryUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	attemptRepo      repository.BookingAttemptRepository
	availabilityRepo repository.AvailabilityRepository
	cache            service.EntityCache
	auditService     service.AuditService
	holdTTL          time.Duration
	now              func() time.Time
}

func NewHoldExpiryUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	attemptRepo repository.BookingAttemptRepository,
	availabilityRepo repository.AvailabilityRepository,
	cache service.EntityCache,
	auditService service.AuditService,
	holdTTL time.Duration,
) HoldExpiryUsecase {
	return &holdExpiryUsecase{
		db:               db,
		log:              log,
		attemptRepo:      attemptRepo,
		availabilityRepo: availabilityRepo,
		cache:            cache,
		auditService:     auditService,
		holdTTL:          holdTTL,
		now:              time.Now,
	}
}

func (u *holdExpiryUsecase) ExpireAbandoned(ctx context.Context) (*ExpiryResult, error) {
	now := u.now()
	db := u.db.WithContext(ctx)
	result := &ExpiryResult{}

	attempts, err := u.attemptRepo.FindAbandoned(db, now.Add(-u.holdTTL), expiryBatchSize)
	if err != nil {
		u.log.Warnf("Failed to find abandoned attempts: %+v", err)
		return nil, err
	}

	doctors := make(map[uuid.UUID]struct{})
	for i := range attempts {
		a := &attempts[i]
		expired, err := u.expire(ctx, a)
		if err != nil {
			u.log.Warnf("Failed to expire attempt %s: %+v", a.ID, err)
			continue
		}
		if expired {
			result.AttemptsExpired++
			doctors[a.DoctorID] = struct{}{}
		}
	}

	released, err := u.availabilityRepo.ReleaseExpiredHolds(db, now)
	if err != nil {
		u.log.Warnf("Failed to release expired holds: %+v", err)
		return result, err
	}
	result.HoldsReleased = released

	for doctorID := range doctors {
		u.cache.Invalidate(ctx, service.CacheKindAvailability, doctorID.String())
	}

	if result.AttemptsExpired > 0 || released > 0 {
		u.log.Infof("Expired %d booking attempts, released %d holds", result.AttemptsExpired, released)
	}
	return result, nil
}

func (u *holdExpiryUsecase) expire(ctx context.Context, a *entity.BookingAttempt) (bool, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	rows, err := u.attemptRepo.MarkExpired(tx, a.ID)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		// Progressed since it was listed
		return false, nil
	}

	if _, err := u.availabilityRepo.ReleaseHold(tx, a.SlotID, a.ID); err != nil {
		return false, err
	}

	if err := u.auditService.Record(ctx, tx, nil, entity.AuditActionBookingExpire, "booking_attempt", a.ID.String(),
		map[string]interface{}{"stage": a.Stage, "slot_id": a.SlotID}); err != nil {
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}
