package usecase_test

import (
	"errors"
	"testing"
	"time"

	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/mocks"
	"pulsebridge-consult/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHoldExpiry_ExpireAbandoned(t *testing.T) {
	db, sql := newMockDB(t)
	attempts := new(mocks.MockBookingAttemptRepository)
	slots := new(mocks.MockAvailabilityRepository)
	audit := new(mocks.MockAuditService)
	cache := &mocks.PassThroughCache{}

	doctorID := uuid.New()
	stale := entity.BookingAttempt{ID: uuid.New(), DoctorID: doctorID, SlotID: uuid.New(), Stage: entity.StageConfirmDetails}
	progressed := entity.BookingAttempt{ID: uuid.New(), DoctorID: uuid.New(), SlotID: uuid.New(), Stage: entity.StageCreateSession}

	attempts.On("FindAbandoned", mock.Anything, mock.AnythingOfType("time.Time"), mock.Anything).
		Return([]entity.BookingAttempt{stale, progressed}, nil)

	sql.ExpectBegin()
	attempts.On("MarkExpired", mock.Anything, stale.ID).Return(int64(1), nil)
	slots.On("ReleaseHold", mock.Anything, stale.SlotID, stale.ID).Return(int64(1), nil)
	audit.On("Record", mock.Anything, mock.Anything, mock.Anything, entity.AuditActionBookingExpire, "booking_attempt", stale.ID.String(), mock.Anything).Return(nil)
	sql.ExpectCommit()

	// submitted its session transaction after being listed
	sql.ExpectBegin()
	attempts.On("MarkExpired", mock.Anything, progressed.ID).Return(int64(0), nil)
	sql.ExpectRollback()

	slots.On("ReleaseExpiredHolds", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(3), nil)

	uc := usecase.NewHoldExpiryUsecase(db, quietLogger(), attempts, slots, cache, audit, 15*time.Minute)
	result, err := uc.ExpireAbandoned(asUser(uuid.New(), patientWallet, entity.RoleIDAdmin))
	require.NoError(t, err)

	assert.Equal(t, 1, result.AttemptsExpired)
	assert.Equal(t, int64(3), result.HoldsReleased)
	slots.AssertNotCalled(t, "ReleaseHold", mock.Anything, progressed.SlotID, progressed.ID)
	assert.Equal(t, []string{"availability:" + doctorID.String()}, cache.Invalidated)
	assert.NoError(t, sql.ExpectationsWereMet())
}

func TestHoldExpiry_ListingFailure(t *testing.T) {
	db, _ := newMockDB(t)
	attempts := new(mocks.MockBookingAttemptRepository)
	slots := new(mocks.MockAvailabilityRepository)

	boom := errors.New("connection refused")
	attempts.On("FindAbandoned", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

	uc := usecase.NewHoldExpiryUsecase(db, quietLogger(), attempts, slots, &mocks.PassThroughCache{}, new(mocks.MockAuditService), 15*time.Minute)
	_, err := uc.ExpireAbandoned(asUser(uuid.New(), patientWallet, entity.RoleIDAdmin))

	require.ErrorIs(t, err, boom)
	slots.AssertNotCalled(t, "ReleaseExpiredHolds", mock.Anything, mock.Anything)
}
