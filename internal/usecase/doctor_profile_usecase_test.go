package usecase_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/mocks"
	"pulsebridge-consult/internal/usecase"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryDoctorRepository keeps profiles in memory so listings reflect
// status changes.
type memoryDoctorRepository struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*entity.DoctorProfile
}

func newMemoryDoctorRepository(profiles ...*entity.DoctorProfile) *memoryDoctorRepository {
	r := &memoryDoctorRepository{profiles: make(map[uuid.UUID]*entity.DoctorProfile)}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *memoryDoctorRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.ID = uuid.New()
	r.profiles[profile.ID] = profile
	return nil
}

func (r *memoryDoctorRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memoryDoctorRepository) FindByWallet(db *gorm.DB, wallet string) (*entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if common.HexToAddress(p.WalletAddress) == common.HexToAddress(wallet) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryDoctorRepository) FindByOnChainID(db *gorm.DB, onChainID uint32) (*entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.OnChainID != nil && *p.OnChainID == onChainID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryDoctorRepository) FindAll(db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DoctorProfile
	for _, p := range r.profiles {
		if filter != nil && filter.Status != "" && p.VerificationStatus != filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryDoctorRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.profiles[profile.ID] = &cp
	return nil
}

func (r *memoryDoctorRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from []entity.VerificationStatus, to entity.VerificationStatus, at *time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return 0, nil
	}
	for _, s := range from {
		if p.VerificationStatus == s {
			p.VerificationStatus = to
			p.VerifiedAt = at
			return 1, nil
		}
	}
	return 0, nil
}

type verificationFixture struct {
	doctors  *memoryDoctorRepository
	registry *mocks.MockRegistryGateway
	waiter   *mocks.MockTxWaiter
	usecase  usecase.DoctorProfileUsecase
}

func newVerificationFixture(t *testing.T, profiles ...*entity.DoctorProfile) *verificationFixture {
	t.Helper()
	db, _ := newMockDB(t)

	audit := new(mocks.MockAuditService)
	audit.On("RecordChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	reviews := new(mocks.MockReviewRepository)
	reviews.On("SummaryByDoctor", mock.Anything, mock.Anything).Return(&entity.RatingSummary{}, nil)

	f := &verificationFixture{
		doctors:  newMemoryDoctorRepository(profiles...),
		registry: new(mocks.MockRegistryGateway),
		waiter:   new(mocks.MockTxWaiter),
	}
	f.usecase = usecase.NewDoctorProfileUsecase(db, quietLogger(), new(mocks.MockUserRepository), f.doctors, reviews,
		f.registry, f.waiter, new(mocks.MockDocumentStore), &mocks.PassThroughCache{}, audit)
	return f
}

func pendingDoctor(specialization string) *entity.DoctorProfile {
	return &entity.DoctorProfile{
		ID:                 uuid.New(),
		WalletAddress:      doctorWallet,
		Name:               "Dr. Okafor",
		Specialization:     specialization,
		ConsultationFee:    decimal.NewFromInt(40),
		FeeCurrency:        "USD",
		VerificationStatus: entity.VerificationPending,
	}
}

func TestDoctorVerification_ApproveListsAndDenyRemoves(t *testing.T) {
	profile := pendingDoctor("Cardiology")
	f := newVerificationFixture(t, profile)
	adminCtx := asUser(uuid.New(), "0x4444444444444444444444444444444444444444", entity.RoleIDAdmin)

	listed, err := f.usecase.ListVerifiedDoctors(adminCtx, "", "")
	require.NoError(t, err)
	assert.Zero(t, listed.Total)

	approved, err := f.usecase.ApproveDoctor(adminCtx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.VerificationApproved), approved.Doctor.VerificationStatus)
	assert.Empty(t, approved.TxHash)

	listed, err = f.usecase.ListVerifiedDoctors(adminCtx, "cardio", "")
	require.NoError(t, err)
	require.Equal(t, 1, listed.Total)
	assert.Equal(t, profile.ID, listed.Doctors[0].ID)

	_, err = f.usecase.DenyDoctor(adminCtx, profile.ID)
	require.NoError(t, err)

	listed, err = f.usecase.ListVerifiedDoctors(adminCtx, "", "")
	require.NoError(t, err)
	assert.Zero(t, listed.Total)

	f.registry.AssertNotCalled(t, "ApproveDoctor", mock.Anything, mock.Anything, mock.Anything)
}

func TestDoctorVerification_LinkedProfilesDecideOnChain(t *testing.T) {
	onChainID := uint32(3)
	profile := pendingDoctor("Neurology")
	profile.OnChainID = &onChainID
	f := newVerificationFixture(t, profile)
	adminWallet := "0x4444444444444444444444444444444444444444"
	adminCtx := asUser(uuid.New(), adminWallet, entity.RoleIDAdmin)

	f.registry.On("ApproveDoctor", mock.Anything, common.HexToAddress(adminWallet), onChainID).Return("0xapprove", nil)
	f.waiter.On("WaitMined", mock.Anything, "0xapprove").Return(&gateway.TxReceipt{TxHash: "0xapprove", Success: true}, nil)

	resp, err := f.usecase.ApproveDoctor(adminCtx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xapprove", resp.TxHash)
	assert.Equal(t, string(entity.VerificationApproved), resp.Doctor.VerificationStatus)

	t.Run("decision is final", func(t *testing.T) {
		_, err := f.usecase.DenyDoctor(adminCtx, profile.ID)
		require.ErrorIs(t, err, usecase.ErrDoctorAlreadyDecided)
		f.registry.AssertNotCalled(t, "DenyDoctor", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reset is refused", func(t *testing.T) {
		_, err := f.usecase.ResetDoctor(adminCtx, profile.ID)
		require.ErrorIs(t, err, usecase.ErrResetNotAllowed)
	})
}

func TestDoctorVerification_RevertedDecisionLeavesProfilePending(t *testing.T) {
	onChainID := uint32(5)
	profile := pendingDoctor("Dermatology")
	profile.OnChainID = &onChainID
	f := newVerificationFixture(t, profile)
	adminWallet := "0x4444444444444444444444444444444444444444"
	adminCtx := asUser(uuid.New(), adminWallet, entity.RoleIDAdmin)

	f.registry.On("DenyDoctor", mock.Anything, common.HexToAddress(adminWallet), onChainID).Return("0xdeny", nil)
	f.waiter.On("WaitMined", mock.Anything, "0xdeny").Return(&gateway.TxReceipt{TxHash: "0xdeny"}, gateway.ErrTransactionFailed)

	_, err := f.usecase.DenyDoctor(adminCtx, profile.ID)
	require.True(t, errors.Is(err, gateway.ErrTransactionFailed))

	stored, _ := f.doctors.FindByID(nil, profile.ID)
	assert.Equal(t, entity.VerificationPending, stored.VerificationStatus)
}

func TestDoctorVerification_ResetOffChainDecision(t *testing.T) {
	profile := pendingDoctor("Pediatrics")
	profile.VerificationStatus = entity.VerificationDenied
	f := newVerificationFixture(t, profile)
	adminCtx := asUser(uuid.New(), "0x4444444444444444444444444444444444444444", entity.RoleIDAdmin)

	resp, err := f.usecase.ResetDoctor(adminCtx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.VerificationPending), resp.VerificationStatus)
}

func TestDoctorVerification_PendingListingMergesRegistry(t *testing.T) {
	profile := pendingDoctor("Cardiology")
	f := newVerificationFixture(t, profile)
	adminCtx := asUser(uuid.New(), "0x4444444444444444444444444444444444444444", entity.RoleIDAdmin)

	f.registry.On("NumTotalRegistrations", mock.Anything).Return(uint32(3), nil)
	f.registry.On("GetPendingDoctor", mock.Anything, uint32(1)).Return(nil, errors.New("execution reverted"))
	f.registry.On("GetPendingDoctor", mock.Anything, uint32(2)).Return(&gateway.RegisteredDoctor{
		ID: 2, Name: "Dr. Lindqvist", WalletAddress: common.HexToAddress("0x5555555555555555555555555555555555555555"),
	}, nil)
	f.registry.On("GetPendingDoctor", mock.Anything, uint32(3)).Return(nil, errors.New("execution reverted"))

	resp, err := f.usecase.ListPendingDoctors(adminCtx)
	require.NoError(t, err)
	require.Len(t, resp.OffChain, 1)
	require.Len(t, resp.OnChain, 1)
	assert.Equal(t, uint32(2), resp.OnChain[0].ID)
	assert.Equal(t, 2, resp.Total)
}
