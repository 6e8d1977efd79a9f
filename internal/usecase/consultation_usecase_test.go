package usecase_test

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"pulsebridge-consult/internal/delivery/dto"
	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/mocks"
	"pulsebridge-consult/internal/usecase"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type consultationFixture struct {
	sql           sqlmock.Sqlmock
	doctors       *mocks.MockDoctorProfileRepository
	appts         *mocks.MockAppointmentRepository
	payments      *mocks.MockPaymentRepository
	prescriptions *mocks.MockPrescriptionRepository
	reviews       *mocks.MockReviewRepository
	escrow        *mocks.MockEscrowGateway
	waiter        *mocks.MockTxWaiter
	documents     *mocks.MockDocumentStore
	hashes        *mocks.MockPrescriptionHashCache
	cache         *mocks.PassThroughCache
	audit         *mocks.MockAuditService

	doctor    *entity.DoctorProfile
	patientID uuid.UUID
	uc        usecase.ConsultationUsecase
}

func newConsultationFixture(t *testing.T) *consultationFixture {
	t.Helper()
	db, sqlMock := newMockDB(t)
	onChainID := uint32(7)

	f := &consultationFixture{
		sql:           sqlMock,
		doctors:       new(mocks.MockDoctorProfileRepository),
		appts:         new(mocks.MockAppointmentRepository),
		payments:      new(mocks.MockPaymentRepository),
		prescriptions: new(mocks.MockPrescriptionRepository),
		reviews:       new(mocks.MockReviewRepository),
		escrow:        new(mocks.MockEscrowGateway),
		waiter:        new(mocks.MockTxWaiter),
		documents:     new(mocks.MockDocumentStore),
		hashes:        new(mocks.MockPrescriptionHashCache),
		cache:         &mocks.PassThroughCache{},
		audit:         new(mocks.MockAuditService),
		doctor: &entity.DoctorProfile{
			ID:                 uuid.New(),
			WalletAddress:      doctorWallet,
			OnChainID:          &onChainID,
			VerificationStatus: entity.VerificationApproved,
		},
		patientID: uuid.New(),
	}

	f.doctors.On("FindByWallet", mock.Anything, mock.Anything).Return(f.doctor, nil)
	f.doctors.On("FindByOnChainID", mock.Anything, onChainID).Return(f.doctor, nil)
	f.audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	f.uc = usecase.NewConsultationUsecase(db, quietLogger(), f.doctors, f.appts, f.payments, f.prescriptions, f.reviews,
		f.escrow, f.waiter, f.documents, f.hashes, f.cache, f.audit)
	return f
}

func (f *consultationFixture) session(status gateway.SessionStatus, rating uint8) *gateway.Session {
	return &gateway.Session{
		ID:       big.NewInt(42),
		Patient:  common.HexToAddress(patientWallet),
		DoctorID: *f.doctor.OnChainID,
		Amount:   big.NewInt(25250000000000000),
		Status:   status,
		Rating:   rating,
	}
}

// expectRecords wires the local writes that follow a successful release.
func (f *consultationFixture) expectRecords() {
	f.sql.ExpectBegin()
	f.prescriptions.On("Create", mock.Anything, mock.AnythingOfType("*entity.Prescription")).Return(nil)
	f.payments.On("MarkReleased", mock.Anything, "42", mock.Anything, mock.Anything).Return(int64(1), nil)
	f.appts.On("MarkCompletedBySession", mock.Anything, "42").Return(int64(1), nil)
	f.sql.ExpectCommit()
	f.appts.On("FindBySessionID", mock.Anything, "42").Return(nil, nil)
}

func TestConsultation_SubmitPrescriptionPinsAndReleases(t *testing.T) {
	f := newConsultationFixture(t)
	ctx := asUser(uuid.New(), doctorWallet, entity.RoleIDDoctor)

	f.escrow.On("GetSession", mock.Anything, big.NewInt(42)).Return(f.session(gateway.SessionActive, 0), nil)
	f.hashes.On("Get", mock.Anything, "42").Return("", false, nil)
	f.documents.On("Pin", mock.Anything, mock.Anything).Return("QmPrescription", nil)
	f.hashes.On("Set", mock.Anything, "42", "QmPrescription").Return(nil)
	f.escrow.On("ReleasePayment", mock.Anything, common.HexToAddress(doctorWallet), big.NewInt(42), "QmPrescription").Return("0xrelease", nil)
	f.waiter.On("WaitMined", mock.Anything, "0xrelease").Return(&gateway.TxReceipt{TxHash: "0xrelease", Success: true}, nil)
	f.hashes.On("Clear", mock.Anything, "42").Return(nil)
	f.expectRecords()

	resp, err := f.uc.SubmitPrescription(ctx, "42", strings.NewReader("rx"))
	require.NoError(t, err)

	assert.Equal(t, "QmPrescription", resp.IPFSHash)
	assert.Equal(t, "0xrelease", resp.ReleaseTxHash)
	f.hashes.AssertCalled(t, "Clear", mock.Anything, "42")
	f.payments.AssertCalled(t, "MarkReleased", mock.Anything, "42", "0xrelease", mock.Anything)
	assert.NoError(t, f.sql.ExpectationsWereMet())
}

func TestConsultation_FailedReleaseKeepsPinnedHash(t *testing.T) {
	f := newConsultationFixture(t)
	ctx := asUser(uuid.New(), doctorWallet, entity.RoleIDDoctor)

	reverted := errors.New("execution reverted")
	f.escrow.On("GetSession", mock.Anything, big.NewInt(42)).Return(f.session(gateway.SessionActive, 0), nil)
	f.hashes.On("Get", mock.Anything, "42").Return("", false, nil).Once()
	f.documents.On("Pin", mock.Anything, mock.Anything).Return("QmPrescription", nil).Once()
	f.hashes.On("Set", mock.Anything, "42", "QmPrescription").Return(nil)
	f.escrow.On("ReleasePayment", mock.Anything, mock.Anything, big.NewInt(42), "QmPrescription").Return("", reverted).Once()

	_, err := f.uc.SubmitPrescription(ctx, "42", strings.NewReader("rx"))
	require.ErrorIs(t, err, reverted)
	f.hashes.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)

	t.Run("retry reuses the cached hash", func(t *testing.T) {
		f.hashes.On("Get", mock.Anything, "42").Return("QmPrescription", true, nil)
		f.escrow.On("ReleasePayment", mock.Anything, mock.Anything, big.NewInt(42), "QmPrescription").Return("0xrelease", nil)
		f.waiter.On("WaitMined", mock.Anything, "0xrelease").Return(&gateway.TxReceipt{TxHash: "0xrelease", Success: true}, nil)
		f.hashes.On("Clear", mock.Anything, "42").Return(nil)
		f.expectRecords()

		resp, err := f.uc.SubmitPrescription(ctx, "42", nil)
		require.NoError(t, err)

		assert.Equal(t, "QmPrescription", resp.IPFSHash)
		f.documents.AssertNumberOfCalls(t, "Pin", 1)
		f.hashes.AssertCalled(t, "Clear", mock.Anything, "42")
	})
}

func TestConsultation_SubmitPrescriptionGuards(t *testing.T) {
	ctx := asUser(uuid.New(), doctorWallet, entity.RoleIDDoctor)

	t.Run("completed session", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.escrow.On("GetSession", mock.Anything, big.NewInt(42)).Return(f.session(gateway.SessionCompleted, 0), nil)

		_, err := f.uc.SubmitPrescription(ctx, "42", strings.NewReader("rx"))
		require.ErrorIs(t, err, usecase.ErrSessionNotActive)
		f.documents.AssertNotCalled(t, "Pin", mock.Anything, mock.Anything)
		f.escrow.AssertNotCalled(t, "ReleasePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("another doctor's session", func(t *testing.T) {
		f := newConsultationFixture(t)
		session := f.session(gateway.SessionActive, 0)
		session.DoctorID = 99
		f.escrow.On("GetSession", mock.Anything, big.NewInt(42)).Return(session, nil)

		_, err := f.uc.SubmitPrescription(ctx, "42", strings.NewReader("rx"))
		require.ErrorIs(t, err, usecase.ErrNotSessionDoctor)
	})

	t.Run("malformed session id", func(t *testing.T) {
		f := newConsultationFixture(t)

		_, err := f.uc.SubmitPrescription(ctx, "abc", strings.NewReader("rx"))
		require.ErrorIs(t, err, usecase.ErrSessionNotFound)
	})

	t.Run("missing document", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.escrow.On("GetSession", mock.Anything, big.NewInt(42)).Return(f.session(gateway.SessionActive, 0), nil)
		f.hashes.On("Get", mock.Anything, "42").Return("", false, nil)

		_, err := f.uc.SubmitPrescription(ctx, "42", nil)
		require.ErrorIs(t, err, usecase.ErrPrescriptionRequired)
	})
}

func TestConsultation_RateSession(t *testing.T) {
	t.Run("completed session", func(t *testing.T) {
		f := newConsultationFixture(t)
		ctx := asUser(f.patientID, patientWallet, entity.RoleIDPatient)
		f.escrow.On("GetSession", mock.Anything, big.NewInt(42)).Return(f.session(gateway.SessionCompleted, 0), nil)
		f.escrow.On("RateSession", mock.Anything, common.HexToAddress(patientWallet), big.NewInt(42), uint8(5)).Return("0xrate", nil)
		f.waiter.On("WaitMined", mock.Anything, "0xrate").Return(&gateway.TxReceipt{TxHash: "0xrate", Success: true}, nil)
		f.reviews.On("Create", mock.Anything, mock.AnythingOfType("*entity.Review")).Return(nil)

		resp, err := f.uc.RateSession(ctx, "42", &dto.RateSessionRequest{Rating: 5, Comment: "  thorough  "})
		require.NoError(t, err)

		assert.Equal(t, uint8(5), resp.Rating)
		assert.Equal(t, "thorough", resp.Comment)
		assert.Contains(t, f.cache.Invalidated, "rating_summary:"+f.doctor.ID.String())
	})

	t.Run("active session", func(t *testing.T) {
		f := newConsultationFixture(t)
		ctx := asUser(f.patientID, patientWallet, entity.RoleIDPatient)
		f.escrow.On("GetSession", mock.Anything, big.NewInt(42)).Return(f.session(gateway.SessionActive, 0), nil)

		_, err := f.uc.RateSession(ctx, "42", &dto.RateSessionRequest{Rating: 4})
		require.ErrorIs(t, err, usecase.ErrSessionNotCompleted)
		f.escrow.AssertNotCalled(t, "RateSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already rated", func(t *testing.T) {
		f := newConsultationFixture(t)
		ctx := asUser(f.patientID, patientWallet, entity.RoleIDPatient)
		f.escrow.On("GetSession", mock.Anything, big.NewInt(42)).Return(f.session(gateway.SessionCompleted, 3), nil)

		_, err := f.uc.RateSession(ctx, "42", &dto.RateSessionRequest{Rating: 4})
		require.ErrorIs(t, err, usecase.ErrAlreadyRated)
		f.escrow.AssertNotCalled(t, "RateSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("another patient's session", func(t *testing.T) {
		f := newConsultationFixture(t)
		ctx := asUser(f.patientID, "0x4444444444444444444444444444444444444444", entity.RoleIDPatient)
		f.escrow.On("GetSession", mock.Anything, big.NewInt(42)).Return(f.session(gateway.SessionCompleted, 0), nil)

		_, err := f.uc.RateSession(ctx, "42", &dto.RateSessionRequest{Rating: 4})
		require.ErrorIs(t, err, usecase.ErrNotSessionPatient)
	})
}
