package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestAvailabilityRepository_HoldSlot(t *testing.T) {
	repo := NewAvailabilityRepository()
	slotID, attemptID := uuid.New(), uuid.New()
	now := time.Now()

	t.Run("takes a free slot", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "time_slots" SET "held_by"=$1,"held_until"=$2 WHERE id = $3 AND is_booked = $4 AND (held_by IS NULL OR held_by = $5 OR (held_until < $6 AND NOT EXISTS`)).
			WithArgs(attemptID, sqlmock.AnyArg(), slotID, false, attemptID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		affected, err := repo.HoldSlot(db, slotID, attemptID, now.Add(15*time.Minute), now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports zero rows when another attempt holds it", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE "time_slots"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		affected, err := repo.HoldSlot(db, slotID, attemptID, now.Add(15*time.Minute), now)
		require.NoError(t, err)
		assert.Zero(t, affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAvailabilityRepository_PinHold(t *testing.T) {
	repo := NewAvailabilityRepository()
	slotID, attemptID := uuid.New(), uuid.New()

	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "time_slots" SET "held_by"=$1,"held_until"=$2 WHERE id = $3 AND is_booked = $4 AND (held_by IS NULL OR held_by = $5 OR (held_until < $6 AND NOT EXISTS (SELECT 1 FROM booking_attempts ba WHERE ba.id = time_slots.held_by AND ba.session_tx_hash <> '')))`)).
		WithArgs(attemptID, nil, slotID, false, attemptID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.PinHold(db, slotID, attemptID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepository_ReleaseExpiredHoldsSkipsInFlight(t *testing.T) {
	repo := NewAvailabilityRepository()

	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "time_slots" SET "held_by"=$1,"held_until"=$2 WHERE is_booked = $3 AND held_until < $4 AND NOT EXISTS (SELECT 1 FROM booking_attempts ba WHERE ba.id = time_slots.held_by AND ba.session_tx_hash <> '')`)).
		WithArgs(nil, nil, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.ReleaseExpiredHolds(db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepository_DeleteOpenSlotKeepsHeldSlots(t *testing.T) {
	repo := NewAvailabilityRepository()
	doctorID, slotID := uuid.New(), uuid.New()

	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "time_slots" WHERE id = $1 AND doctor_id = $2 AND is_booked = $3 AND (held_by IS NULL OR (held_until < $4 AND NOT EXISTS`)).
		WithArgs(slotID, doctorID, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.DeleteOpenSlot(db, doctorID, slotID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepository_BookSlot(t *testing.T) {
	repo := NewAvailabilityRepository()
	slotID, attemptID := uuid.New(), uuid.New()

	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "time_slots" SET "held_until"=$1,"is_booked"=$2 WHERE id = $3 AND is_booked = $4 AND held_by = $5`)).
		WithArgs(nil, true, slotID, false, attemptID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.BookSlot(db, slotID, attemptID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingAttemptRepository_MarkExpired(t *testing.T) {
	repo := NewBookingAttemptRepository()
	id := uuid.New()

	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "booking_attempts" SET "stage"=\$1,"updated_at"=\$2 WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.MarkExpired(db, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
