package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"pulsebridge-consult/internal/converter"
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/domain/repository"
	"pulsebridge-consult/internal/infrastructure/telemetry"
	"pulsebridge-consult/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

var (
	ErrSessionNotActive      = errors.New("session is not active")
	ErrSessionNotCompleted   = errors.New("only completed sessions can be rated")
	ErrNotSessionDoctor      = errors.New("session belongs to another doctor")
	ErrNotSessionPatient     = errors.New("session belongs to another patient")
	ErrAlreadyRated          = errors.New("session has already been rated")
	ErrPrescriptionRequired  = errors.New("prescription document is required")
	ErrPrescriptionNotFound  = errors.New("prescription not found")
	ErrPrescriptionForbidden = errors.New("you cannot access this prescription")
)

type ConsultationUsecase interface {
	// SubmitPrescription pins the prescription and releases the escrowed fee
	// to the doctor.
	SubmitPrescription(ctx context.Context, sessionID string, document io.Reader) (*dto.PrescriptionResponse, error)
	RateSession(ctx context.Context, sessionID string, req *dto.RateSessionRequest) (*dto.ReviewResponse, error)
	ListDoctorReviews(ctx context.Context, doctorID uuid.UUID) (*dto.ReviewListResponse, error)
	ListMyPrescriptions(ctx context.Context) (*dto.PrescriptionListResponse, error)
	OpenPrescription(ctx context.Context, sessionID string) (io.ReadCloser, error)
}

type consultationUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	appointmentRepo   repository.AppointmentRepository
	paymentRepo       repository.PaymentRepository
	prescriptionRepo  repository.PrescriptionRepository
	reviewRepo        repository.ReviewRepository
	escrow            gateway.EscrowGateway
	waiter            gateway.TxWaiter
	documents         gateway.DocumentStore
	hashCache         service.PrescriptionHashCache
	cache             service.EntityCache
	auditService      service.AuditService
	now               func() time.Time
}

func NewConsultationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	paymentRepo repository.PaymentRepository,
	prescriptionRepo repository.PrescriptionRepository,
	reviewRepo repository.ReviewRepository,
	escrow gateway.EscrowGateway,
	waiter gateway.TxWaiter,
	documents gateway.DocumentStore,
	hashCache service.PrescriptionHashCache,
	cache service.EntityCache,
	auditService service.AuditService,
) ConsultationUsecase {
	return &consultationUsecase{
		db:                db,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		appointmentRepo:   appointmentRepo,
		paymentRepo:       paymentRepo,
		prescriptionRepo:  prescriptionRepo,
		reviewRepo:        reviewRepo,
		escrow:            escrow,
		waiter:            waiter,
		documents:         documents,
		hashCache:         hashCache,
		cache:             cache,
		auditService:      auditService,
		now:               time.Now,
	}
}

func (u *consultationUsecase) SubmitPrescription(ctx context.Context, sessionID string, document io.Reader) (resp *dto.PrescriptionResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "consultation.submit_prescription", attribute.String("session_id", sessionID))
	defer func() { telemetry.EndSpan(span, err) }()

	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := parseSessionID(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	db := u.db.WithContext(ctx)
	doctor, err := u.doctorProfileRepo.FindByWallet(db, who.Wallet.Hex())
	if err != nil {
		u.log.Warnf("Failed to find doctor by wallet: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.LinkedOnChain() {
		return nil, ErrDoctorNotOnChain
	}

	session, err := u.escrow.GetSession(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to read session %s: %+v", sessionID, err)
		return nil, ErrSessionNotFound
	}
	if session.DoctorID != *doctor.OnChainID {
		return nil, ErrNotSessionDoctor
	}
	if session.Status != gateway.SessionActive {
		return nil, ErrSessionNotActive
	}

	// A hash pinned by an earlier failed attempt is reused
	hash, cached, err := u.hashCache.Get(ctx, sessionID)
	if err != nil {
		u.log.Warnf("Failed to read cached prescription hash for session %s: %+v", sessionID, err)
	}
	if !cached {
		if document == nil {
			return nil, ErrPrescriptionRequired
		}
		hash, err = u.documents.Pin(ctx, document)
		if err != nil {
			u.log.Warnf("Failed to pin prescription for session %s: %+v", sessionID, err)
			return nil, err
		}
		if err := u.hashCache.Set(ctx, sessionID, hash); err != nil {
			u.log.Warnf("Failed to cache prescription hash for session %s: %+v", sessionID, err)
		}
	}

	txHash, err := u.escrow.ReleasePayment(ctx, who.Wallet, id, hash)
	if err != nil {
		u.log.Warnf("Failed to submit releasePayment for session %s: %+v", sessionID, err)
		return nil, err
	}
	if _, err := u.waiter.WaitMined(ctx, txHash); err != nil {
		u.log.Warnf("releasePayment %s for session %s failed: %+v", txHash, sessionID, err)
		return nil, err
	}

	prescription := &entity.Prescription{
		SessionID:     sessionID,
		DoctorID:      doctor.ID,
		PatientWallet: session.Patient.Hex(),
		IPFSHash:      hash,
		ReleaseTxHash: txHash,
	}
	if appointment, err := u.appointmentRepo.FindBySessionID(db, sessionID); err == nil && appointment != nil {
		prescription.AppointmentID = &appointment.ID
	}

	// Funds are released on-chain; local records follow best-effort
	if err := u.recordRelease(ctx, who, prescription); err != nil {
		u.log.Errorf("Payment released for session %s but local records failed: %+v", sessionID, err)
	}

	if err := u.hashCache.Clear(ctx, sessionID); err != nil {
		u.log.Warnf("Failed to clear cached prescription hash for session %s: %+v", sessionID, err)
	}

	u.log.Infof("Payment released: session=%s, tx=%s, ipfs=%s", sessionID, txHash, hash)
	return converter.PrescriptionToResponse(prescription), nil
}

func (u *consultationUsecase) recordRelease(ctx context.Context, who *caller, prescription *entity.Prescription) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.prescriptionRepo.Create(tx, prescription); err != nil {
		return err
	}
	if _, err := u.paymentRepo.MarkReleased(tx, prescription.SessionID, prescription.ReleaseTxHash, u.now()); err != nil {
		return err
	}
	if _, err := u.appointmentRepo.MarkCompletedBySession(tx, prescription.SessionID); err != nil {
		return err
	}
	if err := u.auditService.Record(ctx, tx, &who.UserID, entity.AuditActionPaymentRelease, "session", prescription.SessionID,
		map[string]interface{}{"tx_hash": prescription.ReleaseTxHash, "ipfs_hash": prescription.IPFSHash}); err != nil {
		return err
	}
	return tx.Commit().Error
}

func (u *consultationUsecase) RateSession(ctx context.Context, sessionID string, req *dto.RateSessionRequest) (*dto.ReviewResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := parseSessionID(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session, err := u.escrow.GetSession(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to read session %s: %+v", sessionID, err)
		return nil, ErrSessionNotFound
	}
	if session.Patient != who.Wallet {
		return nil, ErrNotSessionPatient
	}
	if session.Status != gateway.SessionCompleted {
		return nil, ErrSessionNotCompleted
	}
	if session.Rating > 0 {
		return nil, ErrAlreadyRated
	}

	db := u.db.WithContext(ctx)
	doctor, err := u.doctorProfileRepo.FindByOnChainID(db, session.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor for registry id %d: %+v", session.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	txHash, err := u.escrow.RateSession(ctx, who.Wallet, id, req.Rating)
	if err != nil {
		u.log.Warnf("Failed to submit rateSession for session %s: %+v", sessionID, err)
		return nil, err
	}
	if _, err := u.waiter.WaitMined(ctx, txHash); err != nil {
		u.log.Warnf("rateSession %s for session %s failed: %+v", txHash, sessionID, err)
		return nil, err
	}

	review := &entity.Review{
		DoctorID:      doctor.ID,
		SessionID:     sessionID,
		PatientID:     who.UserID,
		PatientWallet: who.Wallet.Hex(),
		Rating:        req.Rating,
		Comment:       strings.TrimSpace(req.Comment),
		TxHash:        txHash,
	}
	if err := u.reviewRepo.Create(db, review); err != nil {
		if isDuplicateKeyError(err, "session") {
			return nil, ErrAlreadyRated
		}
		u.log.Warnf("Failed to store review for session %s: %+v", sessionID, err)
		return nil, err
	}

	u.cache.Invalidate(ctx, service.CacheKindRatingSummary, doctor.ID.String())
	_ = u.auditService.Record(ctx, nil, &who.UserID, entity.AuditActionSessionRate, "session", sessionID,
		map[string]interface{}{"rating": req.Rating, "tx_hash": txHash})

	return converter.ReviewToResponse(review), nil
}

func (u *consultationUsecase) ListDoctorReviews(ctx context.Context, doctorID uuid.UUID) (*dto.ReviewListResponse, error) {
	db := u.db.WithContext(ctx)

	reviews, err := u.reviewRepo.FindByDoctorID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to list reviews for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	summary, err := service.CachedFetch(ctx, u.cache, service.CacheKindRatingSummary, doctorID.String(), func(ctx context.Context) (*entity.RatingSummary, error) {
		return u.reviewRepo.SummaryByDoctor(u.db.WithContext(ctx), doctorID)
	})
	if err != nil {
		u.log.Warnf("Failed to summarise reviews for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	response := &dto.ReviewListResponse{
		Reviews: converter.ReviewsToResponses(reviews),
		Total:   len(reviews),
	}
	if s := converter.RatingSummaryToResponse(summary); s != nil {
		response.Summary = *s
	}
	return response, nil
}

func (u *consultationUsecase) ListMyPrescriptions(ctx context.Context) (*dto.PrescriptionListResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	prescriptions, err := u.prescriptionRepo.FindByPatientWallet(u.db.WithContext(ctx), who.Wallet.Hex())
	if err != nil {
		u.log.Warnf("Failed to list prescriptions: %+v", err)
		return nil, err
	}

	return &dto.PrescriptionListResponse{
		Prescriptions: converter.PrescriptionsToResponses(prescriptions),
		Total:         len(prescriptions),
	}, nil
}

// OpenPrescription streams the pinned document to the patient, the issuing
// doctor or an admin.
func (u *consultationUsecase) OpenPrescription(ctx context.Context, sessionID string) (io.ReadCloser, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	prescription, err := u.prescriptionRepo.FindBySessionID(db, sessionID)
	if err != nil {
		u.log.Warnf("Failed to find prescription for session %s: %+v", sessionID, err)
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}

	allowed := who.RoleID == entity.RoleIDAdmin || strings.EqualFold(prescription.PatientWallet, who.Wallet.Hex())
	if !allowed {
		doctor, err := u.doctorProfileRepo.FindByID(db, prescription.DoctorID)
		allowed = err == nil && doctor != nil && strings.EqualFold(doctor.WalletAddress, who.Wallet.Hex())
	}
	if !allowed {
		return nil, ErrPrescriptionForbidden
	}

	return u.documents.Fetch(ctx, prescription.IPFSHash)
}
