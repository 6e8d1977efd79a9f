package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"pulsebridge-consult/internal/converter"
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/domain/repository"
	"pulsebridge-consult/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound          = errors.New("doctor not found")
	ErrDoctorAlreadyRegistered = errors.New("wallet already has a doctor registration")
	ErrInvalidFee              = errors.New("consultation fee must be greater than zero")
	ErrDoctorAlreadyDecided    = errors.New("doctor registration has already been decided on-chain")
	ErrResetNotAllowed         = errors.New("only decided off-chain registrations can be reset")
	ErrOnChainNotFound         = errors.New("registration not found in the doctor registry")
	ErrOnChainWalletMismatch   = errors.New("registry entry belongs to a different wallet")
	ErrOnChainIDTaken          = errors.New("registry id is already linked to another profile")
	ErrAlreadyLinked           = errors.New("profile is already linked to the registry")
)

const (
	defaultFeeCurrency = "USD"
	verifiedListKey    = "all"
	pendingScanLimit   = 8
)

type DoctorProfileUsecase interface {
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest, legalDocuments io.Reader) (*dto.DoctorResponse, error)
	GetMyProfile(ctx context.Context) (*dto.DoctorResponse, error)
	UpdateMyProfile(ctx context.Context, req *dto.UpdateDoctorSelfRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	ListVerifiedDoctors(ctx context.Context, specialization, name string) (*dto.DoctorListResponse, error)
	GetOnChainDoctor(ctx context.Context, onChainID uint32) (*dto.OnChainDoctorResponse, error)

	// Admin
	ListPendingDoctors(ctx context.Context) (*dto.PendingDoctorsResponse, error)
	LinkOnChain(ctx context.Context, doctorID uuid.UUID, req *dto.LinkOnChainRequest) (*dto.DoctorResponse, error)
	ApproveDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.VerificationResponse, error)
	DenyDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.VerificationResponse, error)
	ResetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	reviewRepo        repository.ReviewRepository
	registry          gateway.RegistryGateway
	waiter            gateway.TxWaiter
	documents         gateway.DocumentStore
	cache             service.EntityCache
	auditService      service.AuditService
	now               func() time.Time
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	reviewRepo repository.ReviewRepository,
	registry gateway.RegistryGateway,
	waiter gateway.TxWaiter,
	documents gateway.DocumentStore,
	cache service.EntityCache,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		reviewRepo:        reviewRepo,
		registry:          registry,
		waiter:            waiter,
		documents:         documents,
		cache:             cache,
		auditService:      auditService,
		now:               time.Now,
	}
}

// RegisterDoctor creates a pending registration for the caller's wallet.
// legalDocuments, when present, is pinned to IPFS first.
func (u *doctorProfileUsecase) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest, legalDocuments io.Reader) (*dto.DoctorResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !req.ConsultationFee.IsPositive() {
		return nil, ErrInvalidFee
	}

	db := u.db.WithContext(ctx)

	existing, err := u.doctorProfileRepo.FindByWallet(db, who.Wallet.Hex())
	if err != nil {
		u.log.Warnf("Failed to find doctor by wallet: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrDoctorAlreadyRegistered
	}

	var docHash string
	if legalDocuments != nil {
		docHash, err = u.documents.Pin(ctx, legalDocuments)
		if err != nil {
			u.log.Warnf("Failed to pin legal documents: %+v", err)
			return nil, fmt.Errorf("pin legal documents: %w", err)
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(req.FeeCurrency))
	if currency == "" {
		currency = defaultFeeCurrency
	}

	userID := who.UserID
	profile := &entity.DoctorProfile{
		UserID:                 &userID,
		WalletAddress:          who.Wallet.Hex(),
		Name:                   req.Name,
		Specialization:         req.Specialization,
		ProfileDescription:     req.ProfileDescription,
		Email:                  req.Email,
		ConsultationFee:        req.ConsultationFee,
		FeeCurrency:            currency,
		LegalDocumentsIPFSHash: docHash,
		VerificationStatus:     entity.VerificationPending,
	}

	tx := db.Begin()
	defer tx.Rollback()

	if err := u.doctorProfileRepo.Create(tx, profile); err != nil {
		if isDuplicateKeyError(err, "wallet") || isDuplicateKeyError(err, "user_id") {
			return nil, ErrDoctorAlreadyRegistered
		}
		u.log.Warnf("Failed to create doctor profile: %+v", err)
		return nil, err
	}

	// New role applies from the next token refresh
	if who.RoleID != entity.RoleIDAdmin {
		if err := u.userRepo.UpdateRole(tx, who.UserID, entity.RoleIDDoctor); err != nil {
			u.log.Warnf("Failed to update user role: %+v", err)
			return nil, err
		}
	}

	if err := u.auditService.Record(ctx, tx, &who.UserID, entity.AuditActionDoctorRegister, "doctor", profile.ID.String(), profile); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetMyProfile(ctx context.Context) (*dto.DoctorResponse, error) {
	profile, err := u.myProfile(ctx)
	if err != nil {
		return nil, err
	}
	return u.withRating(ctx, profile)
}

func (u *doctorProfileUsecase) myProfile(ctx context.Context) (*entity.DoctorProfile, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := u.doctorProfileRepo.FindByWallet(u.db.WithContext(ctx), who.Wallet.Hex())
	if err != nil {
		u.log.Warnf("Failed to find doctor by wallet: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return profile, nil
}

func (u *doctorProfileUsecase) UpdateMyProfile(ctx context.Context, req *dto.UpdateDoctorSelfRequest) (*dto.DoctorResponse, error) {
	profile, err := u.myProfile(ctx)
	if err != nil {
		return nil, err
	}
	before := *profile

	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.Specialization != "" {
		profile.Specialization = req.Specialization
	}
	if req.ProfileDescription != nil {
		profile.ProfileDescription = *req.ProfileDescription
	}
	if req.Email != "" {
		profile.Email = req.Email
	}
	if req.ConsultationFee != nil {
		if !req.ConsultationFee.IsPositive() {
			return nil, ErrInvalidFee
		}
		profile.ConsultationFee = *req.ConsultationFee
	}
	if req.FeeCurrency != "" {
		profile.FeeCurrency = strings.ToUpper(req.FeeCurrency)
	}

	if err := u.doctorProfileRepo.Update(u.db.WithContext(ctx), profile); err != nil {
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}
	u.invalidate(ctx, profile.ID)

	_ = u.auditService.RecordChange(ctx, nil, profile.UserID, entity.AuditActionDoctorUpdate, "doctor", profile.ID.String(), before, profile)

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := service.CachedFetch(ctx, u.cache, service.CacheKindDoctor, doctorID.String(), func(ctx context.Context) (*entity.DoctorProfile, error) {
		return u.doctorProfileRepo.FindByID(u.db.WithContext(ctx), doctorID)
	})
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return u.withRating(ctx, profile)
}

func (u *doctorProfileUsecase) withRating(ctx context.Context, profile *entity.DoctorProfile) (*dto.DoctorResponse, error) {
	response := converter.DoctorProfileToResponse(profile)

	summary, err := service.CachedFetch(ctx, u.cache, service.CacheKindRatingSummary, profile.ID.String(), func(ctx context.Context) (*entity.RatingSummary, error) {
		return u.reviewRepo.SummaryByDoctor(u.db.WithContext(ctx), profile.ID)
	})
	if err != nil {
		u.log.Warnf("Failed to load rating for doctor %s: %+v", profile.ID, err)
		return response, nil
	}
	response.Rating = converter.RatingSummaryToResponse(summary)
	return response, nil
}

// ListVerifiedDoctors returns approved doctors. The approved set is cached;
// specialization is matched fuzzily and name by substring.
func (u *doctorProfileUsecase) ListVerifiedDoctors(ctx context.Context, specialization, name string) (*dto.DoctorListResponse, error) {
	doctors, err := service.CachedFetch(ctx, u.cache, service.CacheKindVerifiedDoctors, verifiedListKey, func(ctx context.Context) ([]entity.DoctorProfile, error) {
		return u.doctorProfileRepo.FindAll(u.db.WithContext(ctx), &entity.DoctorFilter{Status: entity.VerificationApproved})
	})
	if err != nil {
		u.log.Warnf("Failed to list verified doctors: %+v", err)
		return nil, err
	}

	doctors = service.FilterBySpecialty(doctors, specialization)
	if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
		filtered := doctors[:0:0]
		for _, d := range doctors {
			if strings.Contains(strings.ToLower(d.Name), name) {
				filtered = append(filtered, d)
			}
		}
		doctors = filtered
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorProfilesToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *doctorProfileUsecase) GetOnChainDoctor(ctx context.Context, onChainID uint32) (*dto.OnChainDoctorResponse, error) {
	doctor, err := u.registry.GetDoctor(ctx, onChainID)
	if err != nil {
		u.log.Warnf("Failed to read registry doctor %d: %+v", onChainID, err)
		return nil, ErrOnChainNotFound
	}

	response := converter.RegisteredDoctorToResponse(doctor)
	if profile, err := u.doctorProfileRepo.FindByOnChainID(u.db.WithContext(ctx), onChainID); err == nil && profile != nil {
		response.ProfileID = &profile.ID
	}
	return response, nil
}

// ListPendingDoctors combines off-chain pending profiles with registry
// entries still awaiting a decision.
func (u *doctorProfileUsecase) ListPendingDoctors(ctx context.Context) (*dto.PendingDoctorsResponse, error) {
	db := u.db.WithContext(ctx)

	offChain, err := u.doctorProfileRepo.FindAll(db, &entity.DoctorFilter{Status: entity.VerificationPending})
	if err != nil {
		u.log.Warnf("Failed to list pending doctors: %+v", err)
		return nil, err
	}

	onChain, err := u.pendingOnChain(ctx)
	if err != nil {
		// Registry outage should not hide the off-chain queue
		u.log.Warnf("Failed to scan registry for pending doctors: %+v", err)
		onChain = nil
	}

	for i := range onChain {
		if profile, err := u.doctorProfileRepo.FindByOnChainID(db, onChain[i].ID); err == nil && profile != nil {
			onChain[i].ProfileID = &profile.ID
		}
	}

	return &dto.PendingDoctorsResponse{
		OffChain: converter.DoctorProfilesToResponses(offChain),
		OnChain:  onChain,
		Total:    len(offChain) + len(onChain),
	}, nil
}

func (u *doctorProfileUsecase) pendingOnChain(ctx context.Context) ([]dto.OnChainDoctorResponse, error) {
	total, err := u.registry.NumTotalRegistrations(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		pending = make(map[uint32]dto.OnChainDoctorResponse)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pendingScanLimit)
	for id := uint32(1); id <= total; id++ {
		id := id
		g.Go(func() error {
			doctor, err := u.registry.GetPendingDoctor(gctx, id)
			if err != nil {
				// Decided registrations revert on the pending getter
				u.log.Debugf("Registry id %d not pending: %v", id, err)
				return nil
			}
			if doctor == nil || doctor.WalletAddress == (common.Address{}) {
				return nil
			}
			mu.Lock()
			pending[id] = *converter.RegisteredDoctorToResponse(doctor)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]dto.OnChainDoctorResponse, 0, len(pending))
	for id := uint32(1); id <= total; id++ {
		if d, ok := pending[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// LinkOnChain attaches a registry id to a profile after checking the
// registry entry belongs to the same wallet.
func (u *doctorProfileUsecase) LinkOnChain(ctx context.Context, doctorID uuid.UUID, req *dto.LinkOnChainRequest) (*dto.DoctorResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	profile, err := u.findProfile(db, doctorID)
	if err != nil {
		return nil, err
	}
	if profile.LinkedOnChain() {
		return nil, ErrAlreadyLinked
	}

	registered, err := u.registry.GetPendingDoctor(ctx, req.OnChainID)
	if err != nil || registered == nil {
		registered, err = u.registry.GetDoctor(ctx, req.OnChainID)
	}
	if err != nil || registered == nil {
		return nil, ErrOnChainNotFound
	}
	if !strings.EqualFold(registered.WalletAddress.Hex(), profile.WalletAddress) {
		return nil, ErrOnChainWalletMismatch
	}

	before := *profile
	onChainID := req.OnChainID
	profile.OnChainID = &onChainID
	if err := u.doctorProfileRepo.Update(db, profile); err != nil {
		if isDuplicateKeyError(err, "onchain") {
			return nil, ErrOnChainIDTaken
		}
		u.log.Warnf("Failed to link doctor %s to registry id %d: %+v", doctorID, onChainID, err)
		return nil, err
	}
	u.invalidate(ctx, profile.ID)

	_ = u.auditService.RecordChange(ctx, nil, &who.UserID, entity.AuditActionDoctorUpdate, "doctor", profile.ID.String(), before, profile)

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) ApproveDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.VerificationResponse, error) {
	return u.decide(ctx, doctorID, entity.VerificationApproved)
}

func (u *doctorProfileUsecase) DenyDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.VerificationResponse, error) {
	return u.decide(ctx, doctorID, entity.VerificationDenied)
}

// decide applies an admin verdict. Linked profiles are decided on-chain
// first and the off-chain status follows the mined transaction.
func (u *doctorProfileUsecase) decide(ctx context.Context, doctorID uuid.UUID, to entity.VerificationStatus) (*dto.VerificationResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	profile, err := u.findProfile(db, doctorID)
	if err != nil {
		return nil, err
	}
	if !profile.CanDecide() {
		return nil, ErrDoctorAlreadyDecided
	}

	from := []entity.VerificationStatus{entity.VerificationPending}
	if !profile.LinkedOnChain() {
		from = append(from, opposite(to))
	}

	var txHash string
	if profile.LinkedOnChain() {
		if to == entity.VerificationApproved {
			txHash, err = u.registry.ApproveDoctor(ctx, who.Wallet, *profile.OnChainID)
		} else {
			txHash, err = u.registry.DenyDoctor(ctx, who.Wallet, *profile.OnChainID)
		}
		if err != nil {
			u.log.Warnf("Failed to submit registry decision for doctor %s: %+v", doctorID, err)
			return nil, err
		}
		if _, err := u.waiter.WaitMined(ctx, txHash); err != nil {
			u.log.Warnf("Registry decision %s for doctor %s failed: %+v", txHash, doctorID, err)
			return nil, err
		}
	}

	at := u.now()
	rows, err := u.doctorProfileRepo.UpdateStatus(db, profile.ID, from, to, &at)
	if err != nil {
		u.log.Warnf("Failed to update doctor %s status: %+v", doctorID, err)
		return nil, err
	}
	if rows == 0 && profile.VerificationStatus != to {
		return nil, ErrDoctorAlreadyDecided
	}

	before := profile.VerificationStatus
	profile.VerificationStatus = to
	profile.VerifiedAt = &at
	u.invalidate(ctx, profile.ID)

	action := entity.AuditActionDoctorApprove
	if to == entity.VerificationDenied {
		action = entity.AuditActionDoctorDeny
	}
	_ = u.auditService.RecordChange(ctx, nil, &who.UserID, action, "doctor", profile.ID.String(),
		map[string]interface{}{"verification_status": before},
		map[string]interface{}{"verification_status": to, "tx_hash": txHash},
	)

	return &dto.VerificationResponse{
		Doctor: *converter.DoctorProfileToResponse(profile),
		TxHash: txHash,
	}, nil
}

func (u *doctorProfileUsecase) ResetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	profile, err := u.findProfile(db, doctorID)
	if err != nil {
		return nil, err
	}
	if !profile.CanReset() {
		return nil, ErrResetNotAllowed
	}

	rows, err := u.doctorProfileRepo.UpdateStatus(db, profile.ID,
		[]entity.VerificationStatus{entity.VerificationApproved, entity.VerificationDenied},
		entity.VerificationPending, nil)
	if err != nil {
		u.log.Warnf("Failed to reset doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrResetNotAllowed
	}

	before := profile.VerificationStatus
	profile.VerificationStatus = entity.VerificationPending
	profile.VerifiedAt = nil
	u.invalidate(ctx, profile.ID)

	_ = u.auditService.RecordChange(ctx, nil, &who.UserID, entity.AuditActionDoctorReset, "doctor", profile.ID.String(),
		map[string]interface{}{"verification_status": before},
		map[string]interface{}{"verification_status": entity.VerificationPending},
	)

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) findProfile(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error) {
	profile, err := u.doctorProfileRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return profile, nil
}

func (u *doctorProfileUsecase) invalidate(ctx context.Context, doctorID uuid.UUID) {
	u.cache.Invalidate(ctx, service.CacheKindDoctor, doctorID.String())
	u.cache.Invalidate(ctx, service.CacheKindVerifiedDoctors, verifiedListKey)
}

func opposite(status entity.VerificationStatus) entity.VerificationStatus {
	if status == entity.VerificationApproved {
		return entity.VerificationDenied
	}
	return entity.VerificationApproved
}
