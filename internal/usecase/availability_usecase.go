package usecase

import (
	"context"
	"errors"
	"time"

	"pulsebridge-consult/internal/converter"
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/repository"
	"pulsebridge-consult/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAvailabilityNotFound = errors.New("availability not found")
	ErrInvalidSlotRange     = errors.New("slot end time must be after start time")
	ErrDuplicateSlot        = errors.New("duplicate slot for the same date and start time")
	ErrSlotDateInPast       = errors.New("cannot publish a slot dated before today")
	ErrSlotNotRemovable     = errors.New("slot not found, booked or currently held")
)

type AvailabilityUsecase interface {
	// Doctor
	SaveMyAvailability(ctx context.Context, req *dto.SaveAvailabilityRequest) (*dto.AvailabilityResponse, error)
	AddMySlots(ctx context.Context, req *dto.AddSlotsRequest) (*dto.AvailabilityResponse, error)
	RemoveMySlot(ctx context.Context, slotID uuid.UUID) error
	ClearMyAvailability(ctx context.Context) error
	GetMyAvailability(ctx context.Context) (*dto.AvailabilityResponse, error)

	// Public
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID) (*dto.AvailabilityResponse, error)
}

type availabilityUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	loc               *time.Location
	availabilityRepo  repository.AvailabilityRepository
	doctorProfileRepo repository.DoctorProfileRepository
	cache             service.EntityCache
	auditService      service.AuditService
	now               func() time.Time
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	loc *time.Location,
	availabilityRepo repository.AvailabilityRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	cache service.EntityCache,
	auditService service.AuditService,
) AvailabilityUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &availabilityUsecase{
		db:                db,
		log:               log,
		loc:               loc,
		availabilityRepo:  availabilityRepo,
		doctorProfileRepo: doctorProfileRepo,
		cache:             cache,
		auditService:      auditService,
		now:               time.Now,
	}
}

func (u *availabilityUsecase) currentDoctor(ctx context.Context) (*caller, *entity.DoctorProfile, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	profile, err := u.doctorProfileRepo.FindByWallet(u.db.WithContext(ctx), who.Wallet.Hex())
	if err != nil {
		u.log.Warnf("Failed to find doctor by wallet: %+v", err)
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, ErrDoctorNotFound
	}
	return who, profile, nil
}

// toSlots validates requested slots in the clinic time zone.
func (u *availabilityUsecase) toSlots(doctorID uuid.UUID, requested []dto.TimeSlotRequest) ([]entity.TimeSlot, error) {
	today := u.now().In(u.loc).Format(entity.SlotDateLayout)
	seen := make(map[string]struct{}, len(requested))
	slots := make([]entity.TimeSlot, 0, len(requested))

	for _, r := range requested {
		// Layouts are fixed width, so string order is time order
		if r.EndTime <= r.StartTime {
			return nil, ErrInvalidSlotRange
		}
		if r.Date < today {
			return nil, ErrSlotDateInPast
		}
		key := r.Date + " " + r.StartTime
		if _, dup := seen[key]; dup {
			return nil, ErrDuplicateSlot
		}
		seen[key] = struct{}{}

		slots = append(slots, entity.TimeSlot{
			DoctorID:  doctorID,
			Date:      r.Date,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		})
	}
	return slots, nil
}

// SaveMyAvailability creates the availability on first save, otherwise
// replaces every open slot. Booked and held slots survive.
func (u *availabilityUsecase) SaveMyAvailability(ctx context.Context, req *dto.SaveAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	who, profile, err := u.currentDoctor(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := u.toSlots(profile.ID, req.TimeSlots)
	if err != nil {
		return nil, err
	}

	now := u.now()
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	availability := &entity.DoctorAvailability{
		DoctorID:      profile.ID,
		WalletAddress: profile.WalletAddress,
	}
	if err := u.availabilityRepo.Upsert(tx, availability); err != nil {
		u.log.Warnf("Failed to upsert availability for doctor %s: %+v", profile.ID, err)
		return nil, err
	}
	if err := u.availabilityRepo.ReplaceOpenSlots(tx, profile.ID, slots, now); err != nil {
		u.log.Warnf("Failed to replace slots for doctor %s: %+v", profile.ID, err)
		return nil, err
	}
	if err := u.auditService.Record(ctx, tx, &who.UserID, entity.AuditActionAvailabilitySave, "availability", profile.ID.String(),
		map[string]interface{}{"slots": len(slots)}); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.cache.Invalidate(ctx, service.CacheKindAvailability, profile.ID.String())
	return u.load(ctx, profile.ID, now)
}

func (u *availabilityUsecase) AddMySlots(ctx context.Context, req *dto.AddSlotsRequest) (*dto.AvailabilityResponse, error) {
	who, profile, err := u.currentDoctor(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := u.toSlots(profile.ID, req.TimeSlots)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.availabilityRepo.Upsert(tx, &entity.DoctorAvailability{DoctorID: profile.ID, WalletAddress: profile.WalletAddress}); err != nil {
		u.log.Warnf("Failed to upsert availability for doctor %s: %+v", profile.ID, err)
		return nil, err
	}
	added, err := u.availabilityRepo.AddSlots(tx, slots)
	if err != nil {
		u.log.Warnf("Failed to add slots for doctor %s: %+v", profile.ID, err)
		return nil, err
	}
	if added == 0 {
		return nil, ErrDuplicateSlot
	}
	if err := u.auditService.Record(ctx, tx, &who.UserID, entity.AuditActionAvailabilitySave, "availability", profile.ID.String(),
		map[string]interface{}{"added": added}); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.cache.Invalidate(ctx, service.CacheKindAvailability, profile.ID.String())
	return u.load(ctx, profile.ID, u.now())
}

func (u *availabilityUsecase) RemoveMySlot(ctx context.Context, slotID uuid.UUID) error {
	who, profile, err := u.currentDoctor(ctx)
	if err != nil {
		return err
	}

	rows, err := u.availabilityRepo.DeleteOpenSlot(u.db.WithContext(ctx), profile.ID, slotID, u.now())
	if err != nil {
		u.log.Warnf("Failed to delete slot %s: %+v", slotID, err)
		return err
	}
	if rows == 0 {
		return ErrSlotNotRemovable
	}

	u.cache.Invalidate(ctx, service.CacheKindAvailability, profile.ID.String())
	_ = u.auditService.Record(ctx, nil, &who.UserID, entity.AuditActionAvailabilitySave, "time_slot", slotID.String(),
		map[string]interface{}{"removed": true})
	return nil
}

func (u *availabilityUsecase) ClearMyAvailability(ctx context.Context) error {
	who, profile, err := u.currentDoctor(ctx)
	if err != nil {
		return err
	}

	if err := u.availabilityRepo.Clear(u.db.WithContext(ctx), profile.ID, u.now()); err != nil {
		u.log.Warnf("Failed to clear availability for doctor %s: %+v", profile.ID, err)
		return err
	}

	u.cache.Invalidate(ctx, service.CacheKindAvailability, profile.ID.String())
	_ = u.auditService.Record(ctx, nil, &who.UserID, entity.AuditActionAvailabilityClear, "availability", profile.ID.String(), nil)
	return nil
}

// GetMyAvailability returns every slot, booked ones included.
func (u *availabilityUsecase) GetMyAvailability(ctx context.Context) (*dto.AvailabilityResponse, error) {
	_, profile, err := u.currentDoctor(ctx)
	if err != nil {
		return nil, err
	}
	return u.load(ctx, profile.ID, u.now())
}

func (u *availabilityUsecase) load(ctx context.Context, doctorID uuid.UUID, now time.Time) (*dto.AvailabilityResponse, error) {
	availability, err := u.availabilityRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if availability == nil {
		return nil, ErrAvailabilityNotFound
	}
	return converter.AvailabilityToResponse(availability, availability.TimeSlots, now), nil
}

// GetAvailableSlots returns the slots a patient may book: unbooked, dated
// today or later in the clinic time zone, and not held by a live attempt.
func (u *availabilityUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID) (*dto.AvailabilityResponse, error) {
	availability, err := service.CachedFetch(ctx, u.cache, service.CacheKindAvailability, doctorID.String(), func(ctx context.Context) (*entity.DoctorAvailability, error) {
		return u.availabilityRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	})
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if availability == nil {
		return nil, ErrAvailabilityNotFound
	}

	now := u.now().In(u.loc)
	open := entity.FilterAvailableSlots(availability.TimeSlots, now)
	slots := open[:0]
	for _, slot := range open {
		if slot.IsHeld(now) {
			continue
		}
		slots = append(slots, slot)
	}

	return converter.AvailabilityToResponse(availability, slots, now), nil
}
