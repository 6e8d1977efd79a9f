package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/converter"
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/domain/repository"
	"pulsebridge-consult/internal/infrastructure/telemetry"
	"pulsebridge-consult/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

var (
	ErrAttemptNotFound         = errors.New("booking attempt not found")
	ErrAttemptNotOwned         = errors.New("booking attempt does not belong to you")
	ErrAttemptExpired          = errors.New("booking attempt has expired")
	ErrSlotNotFound            = errors.New("time slot not found")
	ErrSlotUnavailable         = errors.New("time slot is booked or held by another patient")
	ErrSlotInPast              = errors.New("cannot book a past time slot")
	ErrDoctorNotBookable       = errors.New("doctor is not verified for on-chain bookings")
	ErrUnsupportedToken        = errors.New("settlement token is not supported on this network")
	ErrStageMismatch           = errors.New("booking attempt is not at this step")
	ErrQuoteLocked             = errors.New("quote is fixed once the session transaction was submitted")
	ErrSettlementTokenRequired = errors.New("choose a settlement token first")
)

// SessionOrchestrator drives a booking attempt through
// SELECT_SLOT, CONFIRM_DETAILS, APPROVE_TOKEN, CREATE_SESSION and CONFIRMED.
// Every step persists its result; a failed step keeps the stage and records
// the error so the patient retries from there.
type SessionOrchestrator interface {
	SelectSlot(ctx context.Context, req *dto.SelectSlotRequest) (*dto.BookingAttemptResponse, error)
	ConfirmDetails(ctx context.Context, attemptID uuid.UUID, req *dto.ConfirmDetailsRequest) (*dto.BookingAttemptResponse, error)
	ApproveToken(ctx context.Context, attemptID uuid.UUID) (*dto.BookingAttemptResponse, error)
	CreateSession(ctx context.Context, attemptID uuid.UUID) (*dto.BookingAttemptResponse, error)
	// Proceed runs every remaining step and stops at the first failure.
	Proceed(ctx context.Context, attemptID uuid.UUID, req *dto.ProceedRequest) (*dto.BookingAttemptResponse, error)
	GetAttempt(ctx context.Context, attemptID uuid.UUID) (*dto.BookingAttemptResponse, error)
	ListMyAttempts(ctx context.Context) (*dto.BookingAttemptListResponse, error)
}

// SessionOrchestratorDeps groups the collaborators of the orchestrator.
type SessionOrchestratorDeps struct {
	DB       *gorm.DB
	Log      *logrus.Logger
	Location *time.Location
	Booking  config.BookingConfig
	Network  config.NetworkConfig

	DoctorProfileRepo repository.DoctorProfileRepository
	AvailabilityRepo  repository.AvailabilityRepository
	AttemptRepo       repository.BookingAttemptRepository
	AppointmentRepo   repository.AppointmentRepository
	PaymentRepo       repository.PaymentRepository
	TaskRepo          repository.TaskRepository

	FeeConverter service.FeeConverter
	Allowance    service.AllowanceManager
	Locker       service.AttemptLocker
	Audit        service.AuditService
	Cache        service.EntityCache

	Escrow    gateway.EscrowGateway
	Waiter    gateway.TxWaiter
	PriceFeed gateway.PriceFeed

	Now func() time.Time
}

type sessionOrchestrator struct {
	SessionOrchestratorDeps
}

func NewSessionOrchestrator(deps SessionOrchestratorDeps) SessionOrchestrator {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Booking.HoldTTL <= 0 {
		deps.Booking.HoldTTL = 15 * time.Minute
	}
	return &sessionOrchestrator{SessionOrchestratorDeps: deps}
}

// SelectSlot holds the slot for a new attempt. The hold is a conditional
// update, so two patients racing for one slot cannot both get it.
func (o *sessionOrchestrator) SelectSlot(ctx context.Context, req *dto.SelectSlotRequest) (*dto.BookingAttemptResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := o.DB.WithContext(ctx)

	doctor, err := o.DoctorProfileRepo.FindByID(db, req.DoctorID)
	if err != nil {
		o.Log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsApproved() || !doctor.LinkedOnChain() {
		return nil, ErrDoctorNotBookable
	}

	slot, err := o.AvailabilityRepo.FindSlot(db, req.SlotID)
	if err != nil {
		o.Log.Warnf("Failed to find slot %s: %+v", req.SlotID, err)
		return nil, err
	}
	if slot == nil || slot.DoctorID != doctor.ID {
		return nil, ErrSlotNotFound
	}
	if slot.IsBooked {
		return nil, ErrSlotUnavailable
	}

	now := o.Now()
	if slot.Date < now.In(o.Location).Format(entity.SlotDateLayout) {
		return nil, ErrSlotInPast
	}

	attempt := &entity.BookingAttempt{
		ID:            uuid.New(),
		PatientID:     who.UserID,
		PatientWallet: who.Wallet.Hex(),
		DoctorID:      doctor.ID,
		SlotID:        slot.ID,
		Stage:         entity.StageConfirmDetails,
		FeeAmount:     doctor.ConsultationFee,
		FeeCurrency:   strings.ToUpper(doctor.FeeCurrency),
	}

	tx := db.Begin()
	defer tx.Rollback()

	rows, err := o.AvailabilityRepo.HoldSlot(tx, slot.ID, attempt.ID, now.Add(o.Booking.HoldTTL), now)
	if err != nil {
		o.Log.Warnf("Failed to hold slot %s: %+v", slot.ID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrSlotUnavailable
	}

	if err := o.AttemptRepo.Create(tx, attempt); err != nil {
		o.Log.Warnf("Failed to create booking attempt: %+v", err)
		return nil, err
	}

	if err := o.Audit.Record(ctx, tx, &who.UserID, entity.AuditActionBookingHold, "booking_attempt", attempt.ID.String(),
		map[string]interface{}{"slot_id": slot.ID, "doctor_id": doctor.ID}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		o.Log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	o.Cache.Invalidate(ctx, service.CacheKindAvailability, doctor.ID.String())

	o.Log.Infof("Slot held: attempt=%s, slot=%s, doctor=%s", attempt.ID, slot.ID, doctor.ID)
	return o.response(attempt, slot), nil
}

func (o *sessionOrchestrator) ConfirmDetails(ctx context.Context, attemptID uuid.UUID, req *dto.ConfirmDetailsRequest) (*dto.BookingAttemptResponse, error) {
	return o.step(ctx, attemptID, func(ctx context.Context, a *entity.BookingAttempt) error {
		return o.confirmDetails(ctx, a, req.SettlementToken)
	})
}

func (o *sessionOrchestrator) ApproveToken(ctx context.Context, attemptID uuid.UUID) (*dto.BookingAttemptResponse, error) {
	return o.step(ctx, attemptID, o.approve)
}

func (o *sessionOrchestrator) CreateSession(ctx context.Context, attemptID uuid.UUID) (*dto.BookingAttemptResponse, error) {
	return o.step(ctx, attemptID, o.createSession)
}

func (o *sessionOrchestrator) Proceed(ctx context.Context, attemptID uuid.UUID, req *dto.ProceedRequest) (*dto.BookingAttemptResponse, error) {
	return o.step(ctx, attemptID, func(ctx context.Context, a *entity.BookingAttempt) error {
		if req != nil && req.SettlementToken != "" && a.CanRequote() &&
			(!a.IsQuoted() || !strings.EqualFold(a.SettlementToken, req.SettlementToken)) {
			if err := o.confirmDetails(ctx, a, req.SettlementToken); err != nil {
				return err
			}
		}

		for !a.IsConfirmed() {
			var err error
			switch a.Stage {
			case entity.StageConfirmDetails:
				if !a.IsQuoted() {
					return ErrSettlementTokenRequired
				}
				err = o.confirmDetails(ctx, a, a.SettlementToken)
			case entity.StageApproveToken:
				err = o.approve(ctx, a)
			case entity.StageCreateSession:
				err = o.createSession(ctx, a)
			default:
				return ErrStageMismatch
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// step loads the caller's attempt under its lock and runs fn.
func (o *sessionOrchestrator) step(ctx context.Context, attemptID uuid.UUID, fn func(context.Context, *entity.BookingAttempt) error) (*dto.BookingAttemptResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var attempt *entity.BookingAttempt
	err = o.Locker.WithAttemptLock(ctx, attemptID, func(ctx context.Context) error {
		a, err := o.loadOwned(ctx, who, attemptID)
		if err != nil {
			return err
		}
		attempt = a
		if a.IsExpired() {
			return ErrAttemptExpired
		}
		return fn(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return o.response(attempt, nil), nil
}

func (o *sessionOrchestrator) loadOwned(ctx context.Context, who *caller, attemptID uuid.UUID) (*entity.BookingAttempt, error) {
	attempt, err := o.AttemptRepo.FindByID(o.DB.WithContext(ctx), attemptID)
	if err != nil {
		o.Log.Warnf("Failed to find booking attempt %s: %+v", attemptID, err)
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}
	if attempt.PatientID != who.UserID {
		return nil, ErrAttemptNotOwned
	}
	return attempt, nil
}

// confirmDetails quotes the fee in the chosen token. It extends the slot
// hold and may be repeated until the session transaction is submitted.
func (o *sessionOrchestrator) confirmDetails(ctx context.Context, a *entity.BookingAttempt, symbol string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "booking.confirm_details",
		attribute.String("attempt_id", a.ID.String()),
		attribute.String("token", symbol),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if a.IsConfirmed() {
		return ErrStageMismatch
	}
	if !a.CanRequote() {
		return ErrQuoteLocked
	}

	token, ok := o.Network.Token(symbol)
	if !ok {
		return ErrUnsupportedToken
	}

	if err := o.holdSlot(ctx, a); err != nil {
		return o.fail(ctx, a, err)
	}

	quote, err := o.FeeConverter.Quote(ctx, a.FeeAmount, a.FeeCurrency, token)
	if err != nil {
		o.Log.Warnf("Failed to quote attempt %s in %s: %+v", a.ID, token.Symbol, err)
		return o.fail(ctx, a, err)
	}

	if a.SettlementToken != token.Symbol {
		a.ApprovalAmount = ""
		a.ApproveTxHash = ""
	}

	quotedAt := quote.QuotedAt
	a.SettlementToken = token.Symbol
	a.TokenAddress = token.Address
	a.TokenDecimals = token.Decimals
	a.ConvertedAmount = quote.Amount
	a.AmountBaseUnits = quote.BaseUnits.String()
	a.PriceSource = quote.PriceSource
	a.PriceTarget = quote.PriceTarget
	a.QuotedAt = &quotedAt
	a.Stage = a.StageAfterQuote()
	a.Fail(nil)

	return o.save(ctx, a)
}

// approve brings the ERC-20 allowance up to the quoted amount. Native
// settlement has nothing to approve.
func (o *sessionOrchestrator) approve(ctx context.Context, a *entity.BookingAttempt) (err error) {
	if a.IsNative() {
		if a.Stage == entity.StageApproveToken {
			a.Stage = entity.StageCreateSession
			return o.save(ctx, a)
		}
		return nil
	}
	if a.Stage != entity.StageApproveToken {
		return ErrStageMismatch
	}

	ctx, span := telemetry.StartSpan(ctx, "booking.approve_token",
		attribute.String("attempt_id", a.ID.String()),
		attribute.String("token", a.SettlementToken),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	amount, ok := a.Amount()
	if !ok {
		return ErrSettlementTokenRequired
	}

	result, err := o.Allowance.EnsureAllowance(ctx,
		common.HexToAddress(a.TokenAddress),
		common.HexToAddress(a.PatientWallet),
		o.Escrow.Address(),
		amount,
	)
	if result != nil {
		if result.Approved != nil {
			a.ApprovalAmount = result.Approved.String()
		}
		if result.TxHash != "" {
			a.ApproveTxHash = result.TxHash
		}
	}
	if err != nil {
		o.Log.Warnf("Failed to approve %s for attempt %s: %+v", a.SettlementToken, a.ID, err)
		return o.fail(ctx, a, err)
	}

	a.Stage = entity.StageCreateSession
	a.Fail(nil)
	if err := o.save(ctx, a); err != nil {
		return err
	}

	_ = o.Audit.Record(ctx, nil, &a.PatientID, entity.AuditActionBookingApprove, "booking_attempt", a.ID.String(),
		map[string]interface{}{"approved": a.ApprovalAmount, "tx_hash": a.ApproveTxHash})
	return nil
}

// createSession submits createSession and waits for it. A stored session
// transaction is waited on again rather than resubmitted.
func (o *sessionOrchestrator) createSession(ctx context.Context, a *entity.BookingAttempt) (err error) {
	if a.Stage != entity.StageCreateSession {
		return ErrStageMismatch
	}

	ctx, span := telemetry.StartSpan(ctx, "booking.create_session",
		attribute.String("attempt_id", a.ID.String()),
		attribute.String("token", a.SettlementToken),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if a.SessionTxHash == "" {
		if err := o.submitSession(ctx, a); err != nil {
			return err
		}
	} else if err := o.pinHold(ctx, a); err != nil {
		// Funds are in flight; keep waiting so the booking can still confirm
		o.Log.Errorf("Failed to re-assert hold on slot %s for in-flight attempt %s: %+v", a.SlotID, a.ID, err)
	}

	receipt, err := o.Waiter.WaitMined(ctx, a.SessionTxHash)
	if err != nil {
		o.Log.Warnf("Session transaction %s for attempt %s failed: %+v", a.SessionTxHash, a.ID, err)
		if errors.Is(err, gateway.ErrTransactionFailed) {
			// Reverted, nothing was paid
			a.SessionTxHash = ""
			o.unpinHold(ctx, a)
		}
		return o.fail(ctx, a, err)
	}

	sessionID, err := o.Escrow.SessionIDFromReceipt(receipt)
	if err != nil {
		o.Log.Errorf("Failed to read session id from %s for attempt %s: %+v", receipt.TxHash, a.ID, err)
		return o.fail(ctx, a, err)
	}

	return o.confirm(ctx, a, sessionID)
}

func (o *sessionOrchestrator) submitSession(ctx context.Context, a *entity.BookingAttempt) error {
	amount, ok := a.Amount()
	if !ok {
		return ErrSettlementTokenRequired
	}
	patient := common.HexToAddress(a.PatientWallet)

	var token common.Address
	if !a.IsNative() {
		token = common.HexToAddress(a.TokenAddress)
		_, shortfall, err := o.Allowance.Check(ctx, token, patient, o.Escrow.Address(), amount)
		if err != nil {
			o.Log.Warnf("Failed to check allowance for attempt %s: %+v", a.ID, err)
			return o.fail(ctx, a, err)
		}
		if shortfall.Sign() > 0 {
			a.Stage = entity.StageApproveToken
			return o.fail(ctx, a, service.ErrAllowanceInsufficient)
		}
	}

	// The hold must not lapse while the transaction is pending
	if err := o.pinHold(ctx, a); err != nil {
		return o.fail(ctx, a, err)
	}

	txHash, err := o.sendSession(ctx, a, patient, token, amount)
	if err != nil {
		o.unpinHold(ctx, a)
		return o.fail(ctx, a, err)
	}

	a.SessionTxHash = txHash
	a.Fail(nil)
	if err := o.save(ctx, a); err != nil {
		// Funds are in flight; keep waiting so the booking can still confirm
		o.Log.Errorf("CRITICAL: Failed to persist session tx %s for attempt %s: %+v", txHash, a.ID, err)
	}
	return nil
}

func (o *sessionOrchestrator) sendSession(ctx context.Context, a *entity.BookingAttempt, patient, token common.Address, amount *big.Int) (string, error) {
	db := o.DB.WithContext(ctx)
	slot, err := o.AvailabilityRepo.FindSlot(db, a.SlotID)
	if err != nil {
		o.Log.Warnf("Failed to find slot %s: %+v", a.SlotID, err)
		return "", err
	}
	if slot == nil {
		return "", ErrSlotNotFound
	}
	startTime, err := slot.StartsAt(o.Location)
	if err != nil {
		return "", fmt.Errorf("parse slot start: %w", err)
	}

	doctor, err := o.DoctorProfileRepo.FindByID(db, a.DoctorID)
	if err != nil {
		o.Log.Warnf("Failed to find doctor %s: %+v", a.DoctorID, err)
		return "", err
	}
	if doctor == nil || !doctor.LinkedOnChain() {
		return "", ErrDoctorNotBookable
	}

	// Fresh update data; the amount stays as quoted
	snapshot, err := o.PriceFeed.LatestPrices(ctx, priceSymbols(a.FeeCurrency, a.SettlementToken))
	if err != nil {
		o.Log.Warnf("Failed to fetch price update for attempt %s: %+v", a.ID, err)
		return "", err
	}

	txHash, err := o.Escrow.CreateSession(ctx, patient, gateway.CreateSessionRequest{
		DoctorID:   *doctor.OnChainID,
		Amount:     amount,
		UpdateData: snapshot.UpdateData,
		Token:      token,
		StartTime:  startTime,
	})
	if err != nil {
		o.Log.Warnf("Failed to submit createSession for attempt %s: %+v", a.ID, err)
		return "", err
	}
	return txHash, nil
}

// confirm books the slot and finalises the attempt. Records written after
// the commit are best-effort.
func (o *sessionOrchestrator) confirm(ctx context.Context, a *entity.BookingAttempt, sessionID *big.Int) error {
	tx := o.DB.WithContext(ctx).Begin()
	defer tx.Rollback()

	rows, err := o.AvailabilityRepo.BookSlot(tx, a.SlotID, a.ID)
	if err != nil {
		o.Log.Warnf("Failed to book slot %s: %+v", a.SlotID, err)
		return o.fail(ctx, a, err)
	}
	if rows == 0 {
		// Paid on-chain; the booking must still go through
		o.Log.Errorf("Slot %s was not held by attempt %s at confirmation", a.SlotID, a.ID)
	}

	a.SessionID = sessionID.String()
	a.Stage = entity.StageConfirmed
	a.Fail(nil)
	if err := o.AttemptRepo.Update(tx, a); err != nil {
		o.Log.Warnf("Failed to confirm attempt %s: %+v", a.ID, err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		o.Log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	o.Cache.Invalidate(ctx, service.CacheKindAvailability, a.DoctorID.String())
	o.recordConfirmed(ctx, a)

	o.Log.Infof("Booking confirmed: attempt=%s, session=%s, token=%s, amount=%s", a.ID, a.SessionID, a.SettlementToken, a.AmountBaseUnits)
	return nil
}

func (o *sessionOrchestrator) recordConfirmed(ctx context.Context, a *entity.BookingAttempt) {
	db := o.DB.WithContext(ctx)

	var doctorWallet string
	if doctor, err := o.DoctorProfileRepo.FindByID(db, a.DoctorID); err == nil && doctor != nil {
		doctorWallet = doctor.WalletAddress
	}

	slot, err := o.AvailabilityRepo.FindSlot(db, a.SlotID)
	if err != nil || slot == nil {
		o.Log.Warnf("Failed to load slot %s for appointment record: %+v", a.SlotID, err)
		slot = &entity.TimeSlot{ID: a.SlotID}
	}

	appointment := &entity.Appointment{
		BookingAttemptID: a.ID,
		SessionID:        a.SessionID,
		DoctorID:         a.DoctorID,
		DoctorWallet:     doctorWallet,
		PatientID:        a.PatientID,
		PatientWallet:    a.PatientWallet,
		SlotID:           slot.ID,
		Date:             slot.Date,
		StartTime:        slot.StartTime,
		EndTime:          slot.EndTime,
		Fee:              a.FeeAmount,
		FeeCurrency:      a.FeeCurrency,
		SettlementToken:  a.SettlementToken,
		AmountPaid:       a.ConvertedAmount,
		Status:           entity.AppointmentScheduled,
	}
	var appointmentID *uuid.UUID
	if err := o.AppointmentRepo.Create(db, appointment); err != nil {
		o.Log.Warnf("Failed to create appointment for session %s: %+v", a.SessionID, err)
	} else {
		appointmentID = &appointment.ID

		task := &entity.Task{AppointmentID: appointment.ID, Kind: entity.TaskMeetingLink, Status: entity.TaskOpen}
		if err := o.TaskRepo.Create(db, task); err != nil {
			o.Log.Warnf("Failed to open meeting link task for appointment %s: %+v", appointment.ID, err)
		}
	}

	payment := &entity.Payment{
		AppointmentID:   appointmentID,
		SessionID:       a.SessionID,
		DoctorID:        a.DoctorID,
		PatientWallet:   a.PatientWallet,
		Token:           a.SettlementToken,
		Amount:          a.ConvertedAmount,
		AmountBaseUnits: a.AmountBaseUnits,
		Status:          entity.PaymentHeld,
		FundTxHash:      a.SessionTxHash,
	}
	if err := o.PaymentRepo.Create(db, payment); err != nil {
		o.Log.Warnf("Failed to record payment for session %s: %+v", a.SessionID, err)
	}

	if err := o.Audit.Record(ctx, nil, &a.PatientID, entity.AuditActionBookingConfirm, "booking_attempt", a.ID.String(),
		map[string]interface{}{"session_id": a.SessionID, "tx_hash": a.SessionTxHash, "token": a.SettlementToken}); err != nil {
		o.Log.Warnf("Failed to audit booking %s: %+v", a.ID, err)
	}
}

// holdSlot re-takes or extends the attempt's hold.
func (o *sessionOrchestrator) holdSlot(ctx context.Context, a *entity.BookingAttempt) error {
	now := o.Now()
	rows, err := o.AvailabilityRepo.HoldSlot(o.DB.WithContext(ctx), a.SlotID, a.ID, now.Add(o.Booking.HoldTTL), now)
	if err != nil {
		o.Log.Warnf("Failed to hold slot %s: %+v", a.SlotID, err)
		return err
	}
	if rows == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// pinHold holds the slot without an expiry for the attempt's session
// transaction.
func (o *sessionOrchestrator) pinHold(ctx context.Context, a *entity.BookingAttempt) error {
	rows, err := o.AvailabilityRepo.PinHold(o.DB.WithContext(ctx), a.SlotID, a.ID, o.Now())
	if err != nil {
		o.Log.Warnf("Failed to pin hold on slot %s: %+v", a.SlotID, err)
		return err
	}
	if rows == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// unpinHold puts the usual expiry back once no transaction is pending.
func (o *sessionOrchestrator) unpinHold(ctx context.Context, a *entity.BookingAttempt) {
	if err := o.holdSlot(ctx, a); err != nil {
		o.Log.Warnf("Failed to restore hold expiry on slot %s for attempt %s: %+v", a.SlotID, a.ID, err)
	}
}

// fail records err on the attempt and returns it.
func (o *sessionOrchestrator) fail(ctx context.Context, a *entity.BookingAttempt, err error) error {
	a.Fail(err)
	if saveErr := o.save(ctx, a); saveErr != nil {
		o.Log.Warnf("Failed to record error on attempt %s: %+v", a.ID, saveErr)
	}
	return err
}

func (o *sessionOrchestrator) save(ctx context.Context, a *entity.BookingAttempt) error {
	if err := o.AttemptRepo.Update(o.DB.WithContext(ctx), a); err != nil {
		o.Log.Warnf("Failed to update booking attempt %s: %+v", a.ID, err)
		return err
	}
	return nil
}

func (o *sessionOrchestrator) GetAttempt(ctx context.Context, attemptID uuid.UUID) (*dto.BookingAttemptResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	attempt, err := o.loadOwned(ctx, who, attemptID)
	if err != nil {
		return nil, err
	}

	slot, err := o.AvailabilityRepo.FindSlot(o.DB.WithContext(ctx), attempt.SlotID)
	if err != nil {
		o.Log.Warnf("Failed to find slot %s: %+v", attempt.SlotID, err)
	}
	return o.response(attempt, slot), nil
}

func (o *sessionOrchestrator) ListMyAttempts(ctx context.Context) (*dto.BookingAttemptListResponse, error) {
	who, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	attempts, err := o.AttemptRepo.FindByPatientID(o.DB.WithContext(ctx), who.UserID)
	if err != nil {
		o.Log.Warnf("Failed to find booking attempts for patient %s: %+v", who.UserID, err)
		return nil, err
	}

	return &dto.BookingAttemptListResponse{
		Attempts: converter.BookingAttemptsToResponses(attempts),
		Total:    len(attempts),
	}, nil
}

func (o *sessionOrchestrator) response(a *entity.BookingAttempt, slot *entity.TimeSlot) *dto.BookingAttemptResponse {
	response := converter.BookingAttemptToResponse(a)
	if slot != nil {
		response.Slot = converter.TimeSlotToResponse(slot, o.Now())
	}
	return response
}

func priceSymbols(feeCurrency, token string) []string {
	source, target := strings.ToUpper(feeCurrency), strings.ToUpper(token)
	if source == target {
		return []string{source}
	}
	return []string{source, target}
}
