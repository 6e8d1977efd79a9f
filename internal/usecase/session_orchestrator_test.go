package usecase_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/mocks"
	"pulsebridge-consult/internal/service"
	"pulsebridge-consult/internal/usecase"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	patientWallet = "0x1111111111111111111111111111111111111111"
	doctorWallet  = "0x2222222222222222222222222222222222222222"
)

var escrowAddress = common.HexToAddress("0x3333333333333333333333333333333333333333")

type orchestratorFixture struct {
	deps      usecase.SessionOrchestratorDeps
	sql       sqlmock.Sqlmock
	doctors   *mocks.MockDoctorProfileRepository
	slots     *mocks.MockAvailabilityRepository
	attempts  *mocks.MockBookingAttemptRepository
	appts     *mocks.MockAppointmentRepository
	payments  *mocks.MockPaymentRepository
	tasks     *mocks.MockTaskRepository
	allowance *mocks.MockAllowanceManager
	audit     *mocks.MockAuditService
	escrow    *mocks.MockEscrowGateway
	waiter    *mocks.MockTxWaiter
	feed      *mocks.MockPriceFeed

	patientID uuid.UUID
	doctor    *entity.DoctorProfile
	slot      *entity.TimeSlot
	now       time.Time
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	db, sqlMock := newMockDB(t)
	network, ok := config.Network(11155111)
	require.True(t, ok)

	onChainID := uint32(7)
	f := &orchestratorFixture{
		sql:       sqlMock,
		doctors:   new(mocks.MockDoctorProfileRepository),
		slots:     new(mocks.MockAvailabilityRepository),
		attempts:  new(mocks.MockBookingAttemptRepository),
		appts:     new(mocks.MockAppointmentRepository),
		payments:  new(mocks.MockPaymentRepository),
		tasks:     new(mocks.MockTaskRepository),
		allowance: new(mocks.MockAllowanceManager),
		audit:     new(mocks.MockAuditService),
		escrow:    new(mocks.MockEscrowGateway),
		waiter:    new(mocks.MockTxWaiter),
		feed:      new(mocks.MockPriceFeed),
		patientID: uuid.New(),
		now:       time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
	}
	f.doctor = &entity.DoctorProfile{
		ID:                 uuid.New(),
		WalletAddress:      doctorWallet,
		OnChainID:          &onChainID,
		Name:               "Dr. Rivera",
		Specialization:     "Cardiology",
		ConsultationFee:    decimal.NewFromInt(50),
		FeeCurrency:        "USD",
		VerificationStatus: entity.VerificationApproved,
	}
	f.slot = &entity.TimeSlot{
		ID:        uuid.New(),
		DoctorID:  f.doctor.ID,
		Date:      "2026-10-20",
		StartTime: "09:00",
		EndTime:   "09:30",
	}

	f.deps = usecase.SessionOrchestratorDeps{
		DB:                db,
		Log:               quietLogger(),
		Location:          time.UTC,
		Booking:           config.BookingConfig{ReferenceCurrency: "USD", HoldTTL: 15 * time.Minute},
		Network:           network,
		DoctorProfileRepo: f.doctors,
		AvailabilityRepo:  f.slots,
		AttemptRepo:       f.attempts,
		AppointmentRepo:   f.appts,
		PaymentRepo:       f.payments,
		TaskRepo:          f.tasks,
		FeeConverter:      service.NewFeeConverter(f.feed),
		Allowance:         f.allowance,
		Locker:            mocks.InlineLocker{},
		Audit:             f.audit,
		Cache:             &mocks.PassThroughCache{},
		Escrow:            f.escrow,
		Waiter:            f.waiter,
		PriceFeed:         f.feed,
		Now:               func() time.Time { return f.now },
	}

	f.doctors.On("FindByID", mock.Anything, f.doctor.ID).Return(f.doctor, nil)
	f.slots.On("FindSlot", mock.Anything, f.slot.ID).Return(f.slot, nil)
	f.slots.On("HoldSlot", mock.Anything, f.slot.ID, mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	f.slots.On("PinHold", mock.Anything, f.slot.ID, mock.Anything, mock.Anything).Return(int64(1), nil)
	f.attempts.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.escrow.On("Address").Return(escrowAddress)
	f.feed.On("LatestPrices", mock.Anything, mock.Anything).Return(&gateway.PriceSnapshot{
		Prices: map[string]gateway.PriceQuote{
			"USD":   {Symbol: "USD", Price: decimal.NewFromInt(1)},
			"ETH":   {Symbol: "ETH", Price: decimal.NewFromInt(2000)},
			"PYUSD": {Symbol: "PYUSD", Price: decimal.NewFromInt(1)},
		},
		UpdateData: [][]byte{{0x01, 0x02}},
	}, nil)

	return f
}

// expectConfirmation wires the CONFIRMED step for session id 42.
func (f *orchestratorFixture) expectConfirmation(txHash string) {
	receipt := &gateway.TxReceipt{TxHash: txHash, Success: true}
	f.waiter.On("WaitMined", mock.Anything, txHash).Return(receipt, nil)
	f.escrow.On("SessionIDFromReceipt", receipt).Return(big.NewInt(42), nil)

	f.sql.ExpectBegin()
	f.slots.On("BookSlot", mock.Anything, f.slot.ID, mock.Anything).Return(int64(1), nil)
	f.sql.ExpectCommit()

	f.appts.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.tasks.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(nil)
}

func (f *orchestratorFixture) quotedAttempt(token config.TokenInfo, stage entity.BookingStage, baseUnits string) *entity.BookingAttempt {
	quotedAt := f.now
	return &entity.BookingAttempt{
		ID:              uuid.New(),
		PatientID:       f.patientID,
		PatientWallet:   common.HexToAddress(patientWallet).Hex(),
		DoctorID:        f.doctor.ID,
		SlotID:          f.slot.ID,
		Stage:           stage,
		FeeAmount:       decimal.NewFromInt(50),
		FeeCurrency:     "USD",
		SettlementToken: token.Symbol,
		TokenAddress:    token.Address,
		TokenDecimals:   token.Decimals,
		AmountBaseUnits: baseUnits,
		QuotedAt:        &quotedAt,
	}
}

func withoutMethod(calls []*mock.Call, method string) []*mock.Call {
	kept := calls[:0]
	for _, c := range calls {
		if c.Method != method {
			kept = append(kept, c)
		}
	}
	return kept
}

func sameAmount(want *big.Int) interface{} {
	return mock.MatchedBy(func(got *big.Int) bool { return got != nil && got.Cmp(want) == 0 })
}

func TestSessionOrchestrator_EthBookingEndToEnd(t *testing.T) {
	f := newOrchestratorFixture(t)
	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	ctx := asUser(f.patientID, patientWallet, entity.RoleIDPatient)

	var created *entity.BookingAttempt
	f.sql.ExpectBegin()
	f.attempts.On("Create", mock.Anything, mock.AnythingOfType("*entity.BookingAttempt")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*entity.BookingAttempt) }).
		Return(nil)
	f.sql.ExpectCommit()

	held, err := orchestrator.SelectSlot(ctx, &dto.SelectSlotRequest{DoctorID: f.doctor.ID, SlotID: f.slot.ID})
	require.NoError(t, err)
	assert.Equal(t, string(entity.StageConfirmDetails), held.Stage)
	require.NotNil(t, created)

	f.attempts.On("FindByID", mock.Anything, created.ID).Return(created, nil)
	f.escrow.On("CreateSession", mock.Anything, common.HexToAddress(patientWallet), mock.MatchedBy(func(req gateway.CreateSessionRequest) bool {
		return req.DoctorID == 7 &&
			req.Amount.String() == "25250000000000000" &&
			req.Token == (common.Address{}) &&
			req.StartTime.Equal(time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC))
	})).Return("0xsession", nil)
	f.expectConfirmation("0xsession")

	confirmed, err := orchestrator.Proceed(ctx, created.ID, &dto.ProceedRequest{SettlementToken: "eth"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.StageConfirmed), confirmed.Stage)
	assert.Equal(t, "42", confirmed.SessionID)
	assert.Equal(t, "25250000000000000", confirmed.AmountBaseUnits)
	require.NotNil(t, confirmed.ConvertedAmount)
	assert.True(t, decimal.RequireFromString("0.02525").Equal(*confirmed.ConvertedAmount))

	f.allowance.AssertNotCalled(t, "EnsureAllowance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.allowance.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.escrow.AssertNumberOfCalls(t, "CreateSession", 1)
	f.appts.AssertNumberOfCalls(t, "Create", 1)
	f.payments.AssertNumberOfCalls(t, "Create", 1)
	assert.NoError(t, f.sql.ExpectationsWereMet())
}

func TestSessionOrchestrator_TokenBookingApprovesBeforeSession(t *testing.T) {
	f := newOrchestratorFixture(t)
	pyusd, _ := f.deps.Network.Token("PYUSD")
	attempt := f.quotedAttempt(pyusd, entity.StageApproveToken, "50500000")
	amount := big.NewInt(50500000)

	var order []string
	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)
	f.allowance.On("EnsureAllowance", mock.Anything, common.HexToAddress(pyusd.Address), common.HexToAddress(patientWallet), escrowAddress, sameAmount(amount)).
		Run(func(mock.Arguments) { order = append(order, "approve") }).
		Return(&service.AllowanceResult{Required: amount, Before: big.NewInt(0), Approved: amount, After: amount, TxHash: "0xapprove"}, nil)
	f.allowance.On("Check", mock.Anything, common.HexToAddress(pyusd.Address), common.HexToAddress(patientWallet), escrowAddress, sameAmount(amount)).
		Return(amount, big.NewInt(0), nil)
	f.escrow.On("CreateSession", mock.Anything, common.HexToAddress(patientWallet), mock.MatchedBy(func(req gateway.CreateSessionRequest) bool {
		return req.Token == common.HexToAddress(pyusd.Address) && req.Amount.Cmp(amount) == 0
	})).Run(func(mock.Arguments) { order = append(order, "create") }).Return("0xsession", nil)
	f.expectConfirmation("0xsession")

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	resp, err := orchestrator.Proceed(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"approve", "create"}, order)
	assert.Equal(t, string(entity.StageConfirmed), resp.Stage)
	assert.Equal(t, "0xapprove", resp.ApproveTxHash)
	assert.Equal(t, "50500000", resp.ApprovalAmount)
	require.NotNil(t, resp.ApprovalTokens)
	assert.True(t, decimal.RequireFromString("50.5").Equal(*resp.ApprovalTokens))
	assert.NoError(t, f.sql.ExpectationsWereMet())
}

func TestSessionOrchestrator_ApprovalFailureKeepsStage(t *testing.T) {
	f := newOrchestratorFixture(t)
	pyusd, _ := f.deps.Network.Token("PYUSD")
	attempt := f.quotedAttempt(pyusd, entity.StageApproveToken, "50500000")

	rejected := errors.New("user rejected transaction")
	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)
	f.allowance.On("EnsureAllowance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, rejected)

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	_, err := orchestrator.Proceed(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID, nil)

	require.ErrorIs(t, err, rejected)
	assert.Equal(t, entity.StageApproveToken, attempt.Stage)
	assert.Equal(t, rejected.Error(), attempt.LastError)
	f.escrow.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionOrchestrator_InsufficientAllowanceBlocksSession(t *testing.T) {
	f := newOrchestratorFixture(t)
	pyusd, _ := f.deps.Network.Token("PYUSD")
	attempt := f.quotedAttempt(pyusd, entity.StageCreateSession, "50500000")

	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)
	f.allowance.On("Check", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(big.NewInt(500000), big.NewInt(50000000), nil)

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	_, err := orchestrator.CreateSession(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID)

	require.ErrorIs(t, err, service.ErrAllowanceInsufficient)
	assert.Equal(t, entity.StageApproveToken, attempt.Stage)
	assert.Empty(t, attempt.SessionTxHash)
	f.escrow.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionOrchestrator_ResumesSubmittedSession(t *testing.T) {
	f := newOrchestratorFixture(t)
	eth, _ := f.deps.Network.Token("ETH")
	attempt := f.quotedAttempt(eth, entity.StageCreateSession, "25250000000000000")
	attempt.SessionTxHash = "0xpending"

	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)
	f.expectConfirmation("0xpending")

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	resp, err := orchestrator.CreateSession(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID)
	require.NoError(t, err)

	assert.Equal(t, string(entity.StageConfirmed), resp.Stage)
	assert.Equal(t, "0xpending", resp.SessionTxHash)
	f.escrow.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
	f.slots.AssertCalled(t, "PinHold", mock.Anything, f.slot.ID, attempt.ID, mock.Anything)
}

func TestSessionOrchestrator_ResumeKeepsWaitingWhenHoldLost(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.slots.ExpectedCalls = withoutMethod(f.slots.ExpectedCalls, "PinHold")
	f.slots.On("PinHold", mock.Anything, f.slot.ID, mock.Anything, mock.Anything).Return(int64(0), nil)
	eth, _ := f.deps.Network.Token("ETH")
	attempt := f.quotedAttempt(eth, entity.StageCreateSession, "25250000000000000")
	attempt.SessionTxHash = "0xpending"

	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)
	f.expectConfirmation("0xpending")

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	resp, err := orchestrator.CreateSession(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StageConfirmed), resp.Stage)
}

func TestSessionOrchestrator_PinsHoldBeforeSubmitting(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.slots.ExpectedCalls = withoutMethod(f.slots.ExpectedCalls, "PinHold")
	eth, _ := f.deps.Network.Token("ETH")
	attempt := f.quotedAttempt(eth, entity.StageCreateSession, "25250000000000000")

	var order []string
	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)
	f.slots.On("PinHold", mock.Anything, f.slot.ID, attempt.ID, f.now).
		Run(func(mock.Arguments) { order = append(order, "pin") }).
		Return(int64(1), nil)
	f.escrow.On("CreateSession", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { order = append(order, "create") }).
		Return("0xsession", nil)
	f.expectConfirmation("0xsession")

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	_, err := orchestrator.CreateSession(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"pin", "create"}, order)
	f.slots.AssertNotCalled(t, "HoldSlot", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionOrchestrator_LostSlotBlocksSubmission(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.slots.ExpectedCalls = withoutMethod(f.slots.ExpectedCalls, "PinHold")
	f.slots.On("PinHold", mock.Anything, f.slot.ID, mock.Anything, mock.Anything).Return(int64(0), nil)
	eth, _ := f.deps.Network.Token("ETH")
	attempt := f.quotedAttempt(eth, entity.StageCreateSession, "25250000000000000")

	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	_, err := orchestrator.CreateSession(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID)

	require.ErrorIs(t, err, usecase.ErrSlotUnavailable)
	f.escrow.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionOrchestrator_FailedSubmissionRestoresHoldExpiry(t *testing.T) {
	f := newOrchestratorFixture(t)
	eth, _ := f.deps.Network.Token("ETH")
	attempt := f.quotedAttempt(eth, entity.StageCreateSession, "25250000000000000")

	rejected := errors.New("user rejected transaction")
	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)
	f.escrow.On("CreateSession", mock.Anything, mock.Anything, mock.Anything).Return("", rejected)

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	_, err := orchestrator.CreateSession(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID)

	require.ErrorIs(t, err, rejected)
	assert.Empty(t, attempt.SessionTxHash)
	f.slots.AssertCalled(t, "PinHold", mock.Anything, f.slot.ID, attempt.ID, mock.Anything)
	f.slots.AssertCalled(t, "HoldSlot", mock.Anything, f.slot.ID, attempt.ID, f.now.Add(15*time.Minute), f.now)
}

func TestSessionOrchestrator_RevertedSessionCanBeResubmitted(t *testing.T) {
	f := newOrchestratorFixture(t)
	eth, _ := f.deps.Network.Token("ETH")
	attempt := f.quotedAttempt(eth, entity.StageCreateSession, "25250000000000000")
	attempt.SessionTxHash = "0xreverted"

	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)
	f.waiter.On("WaitMined", mock.Anything, "0xreverted").
		Return(&gateway.TxReceipt{TxHash: "0xreverted"}, gateway.ErrTransactionFailed)

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	_, err := orchestrator.CreateSession(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID)

	require.ErrorIs(t, err, gateway.ErrTransactionFailed)
	assert.Equal(t, entity.StageCreateSession, attempt.Stage)
	assert.Empty(t, attempt.SessionTxHash)
	assert.NotEmpty(t, attempt.LastError)
	f.slots.AssertCalled(t, "HoldSlot", mock.Anything, f.slot.ID, attempt.ID, f.now.Add(15*time.Minute), f.now)
}

func TestSessionOrchestrator_SelectSlotRejectsHeldSlot(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.slots.ExpectedCalls = nil
	f.slots.On("FindSlot", mock.Anything, f.slot.ID).Return(f.slot, nil)
	f.slots.On("HoldSlot", mock.Anything, f.slot.ID, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	f.sql.ExpectBegin()
	f.sql.ExpectRollback()

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	_, err := orchestrator.SelectSlot(asUser(f.patientID, patientWallet, entity.RoleIDPatient),
		&dto.SelectSlotRequest{DoctorID: f.doctor.ID, SlotID: f.slot.ID})

	require.ErrorIs(t, err, usecase.ErrSlotUnavailable)
	f.attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.NoError(t, f.sql.ExpectationsWereMet())
}

func TestSessionOrchestrator_SelectSlotRejectsUnverifiedDoctor(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.doctor.VerificationStatus = entity.VerificationPending

	orchestrator := usecase.NewSessionOrchestrator(f.deps)
	_, err := orchestrator.SelectSlot(asUser(f.patientID, patientWallet, entity.RoleIDPatient),
		&dto.SelectSlotRequest{DoctorID: f.doctor.ID, SlotID: f.slot.ID})

	require.ErrorIs(t, err, usecase.ErrDoctorNotBookable)
}

func TestSessionOrchestrator_StepGuards(t *testing.T) {
	f := newOrchestratorFixture(t)
	eth, _ := f.deps.Network.Token("ETH")
	attempt := f.quotedAttempt(eth, entity.StageCreateSession, "25250000000000000")
	f.attempts.On("FindByID", mock.Anything, attempt.ID).Return(attempt, nil)

	t.Run("busy attempt", func(t *testing.T) {
		deps := f.deps
		deps.Locker = mocks.InlineLocker{Err: service.ErrAttemptBusy}
		_, err := usecase.NewSessionOrchestrator(deps).CreateSession(asUser(f.patientID, patientWallet, entity.RoleIDPatient), attempt.ID)
		require.ErrorIs(t, err, service.ErrAttemptBusy)
	})

	t.Run("someone else's attempt", func(t *testing.T) {
		_, err := usecase.NewSessionOrchestrator(f.deps).CreateSession(asUser(uuid.New(), patientWallet, entity.RoleIDPatient), attempt.ID)
		require.ErrorIs(t, err, usecase.ErrAttemptNotOwned)
	})

	t.Run("quote is locked after submission", func(t *testing.T) {
		locked := f.quotedAttempt(eth, entity.StageCreateSession, "25250000000000000")
		locked.SessionTxHash = "0xinflight"
		f.attempts.On("FindByID", mock.Anything, locked.ID).Return(locked, nil)

		_, err := usecase.NewSessionOrchestrator(f.deps).ConfirmDetails(asUser(f.patientID, patientWallet, entity.RoleIDPatient),
			locked.ID, &dto.ConfirmDetailsRequest{SettlementToken: "PYUSD"})
		require.ErrorIs(t, err, usecase.ErrQuoteLocked)
	})

	t.Run("unsupported token", func(t *testing.T) {
		fresh := f.quotedAttempt(eth, entity.StageConfirmDetails, "")
		f.attempts.On("FindByID", mock.Anything, fresh.ID).Return(fresh, nil)

		_, err := usecase.NewSessionOrchestrator(f.deps).ConfirmDetails(asUser(f.patientID, patientWallet, entity.RoleIDPatient),
			fresh.ID, &dto.ConfirmDetailsRequest{SettlementToken: "DOGE"})
		require.ErrorIs(t, err, usecase.ErrUnsupportedToken)
	})
}
