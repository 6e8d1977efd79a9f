package mocks

import (
	"time"

	"pulsebridge-consult/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockDoctorProfileRepository struct {
	mock.Mock
}

func (m *MockDoctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	args := m.Called(db, profile)
	return args.Error(0)
}

func (m *MockDoctorProfileRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DoctorProfile), args.Error(1)
}

func (m *MockDoctorProfileRepository) FindByWallet(db *gorm.DB, wallet string) (*entity.DoctorProfile, error) {
	args := m.Called(db, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DoctorProfile), args.Error(1)
}

func (m *MockDoctorProfileRepository) FindByOnChainID(db *gorm.DB, onChainID uint32) (*entity.DoctorProfile, error) {
	args := m.Called(db, onChainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DoctorProfile), args.Error(1)
}

func (m *MockDoctorProfileRepository) FindAll(db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	args := m.Called(db, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DoctorProfile), args.Error(1)
}

func (m *MockDoctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	args := m.Called(db, profile)
	return args.Error(0)
}

func (m *MockDoctorProfileRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from []entity.VerificationStatus, to entity.VerificationStatus, at *time.Time) (int64, error) {
	args := m.Called(db, id, from, to, at)
	return args.Get(0).(int64), args.Error(1)
}

type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorAvailability, error) {
	args := m.Called(db, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DoctorAvailability), args.Error(1)
}

func (m *MockAvailabilityRepository) Upsert(db *gorm.DB, availability *entity.DoctorAvailability) error {
	args := m.Called(db, availability)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) ReplaceOpenSlots(db *gorm.DB, doctorID uuid.UUID, slots []entity.TimeSlot, now time.Time) error {
	args := m.Called(db, doctorID, slots, now)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) AddSlots(db *gorm.DB, slots []entity.TimeSlot) (int64, error) {
	args := m.Called(db, slots)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityRepository) DeleteOpenSlot(db *gorm.DB, doctorID, slotID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(db, doctorID, slotID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityRepository) Clear(db *gorm.DB, doctorID uuid.UUID, now time.Time) error {
	args := m.Called(db, doctorID, now)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) FindSlot(db *gorm.DB, slotID uuid.UUID) (*entity.TimeSlot, error) {
	args := m.Called(db, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TimeSlot), args.Error(1)
}

func (m *MockAvailabilityRepository) HoldSlot(db *gorm.DB, slotID, attemptID uuid.UUID, until, now time.Time) (int64, error) {
	args := m.Called(db, slotID, attemptID, until, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityRepository) PinHold(db *gorm.DB, slotID, attemptID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(db, slotID, attemptID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityRepository) BookSlot(db *gorm.DB, slotID, attemptID uuid.UUID) (int64, error) {
	args := m.Called(db, slotID, attemptID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityRepository) ReleaseHold(db *gorm.DB, slotID, attemptID uuid.UUID) (int64, error) {
	args := m.Called(db, slotID, attemptID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAvailabilityRepository) ReleaseExpiredHolds(db *gorm.DB, now time.Time) (int64, error) {
	args := m.Called(db, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockBookingAttemptRepository struct {
	mock.Mock
}

func (m *MockBookingAttemptRepository) Create(db *gorm.DB, attempt *entity.BookingAttempt) error {
	args := m.Called(db, attempt)
	return args.Error(0)
}

func (m *MockBookingAttemptRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.BookingAttempt, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BookingAttempt), args.Error(1)
}

func (m *MockBookingAttemptRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.BookingAttempt, error) {
	args := m.Called(db, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.BookingAttempt), args.Error(1)
}

func (m *MockBookingAttemptRepository) Update(db *gorm.DB, attempt *entity.BookingAttempt) error {
	args := m.Called(db, attempt)
	return args.Error(0)
}

func (m *MockBookingAttemptRepository) FindAbandoned(db *gorm.DB, cutoff time.Time, limit int) ([]entity.BookingAttempt, error) {
	args := m.Called(db, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.BookingAttempt), args.Error(1)
}

func (m *MockBookingAttemptRepository) MarkExpired(db *gorm.DB, id uuid.UUID) (int64, error) {
	args := m.Called(db, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	args := m.Called(db, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) FindByAttemptID(db *gorm.DB, attemptID uuid.UUID) (*entity.Appointment, error) {
	args := m.Called(db, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) FindBySessionID(db *gorm.DB, sessionID string) (*entity.Appointment, error) {
	args := m.Called(db, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	args := m.Called(db, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateMeetingLink(db *gorm.DB, id uuid.UUID, link string) (int64, error) {
	args := m.Called(db, id, link)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAppointmentRepository) MarkCompletedBySession(db *gorm.DB, sessionID string) (int64, error) {
	args := m.Called(db, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

// Mutate applies fn to the appointment the expectation returns, the way the
// row-locked repository does.
func (m *MockAppointmentRepository) Mutate(db *gorm.DB, id uuid.UUID, fn func(*entity.Appointment) (bool, error)) (*entity.Appointment, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	appointment := args.Get(0).(*entity.Appointment)
	if _, err := fn(appointment); err != nil {
		return nil, err
	}
	return appointment, args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(db *gorm.DB, payment *entity.Payment) error {
	args := m.Called(db, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindBySessionID(db *gorm.DB, sessionID string) (*entity.Payment, error) {
	args := m.Called(db, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Payment), args.Error(1)
}

func (m *MockPaymentRepository) MarkReleased(db *gorm.DB, sessionID, txHash string, at time.Time) (int64, error) {
	args := m.Called(db, sessionID, txHash, at)
	return args.Get(0).(int64), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(db *gorm.DB, task *entity.Task) error {
	args := m.Called(db, task)
	return args.Error(0)
}

func (m *MockTaskRepository) FindOpen(db *gorm.DB, kind entity.TaskKind) ([]entity.Task, error) {
	args := m.Called(db, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Task), args.Error(1)
}

func (m *MockTaskRepository) CompleteForAppointment(db *gorm.DB, appointmentID uuid.UUID, kind entity.TaskKind, at time.Time) (int64, error) {
	args := m.Called(db, appointmentID, kind, at)
	return args.Get(0).(int64), args.Error(1)
}

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(db *gorm.DB, review *entity.Review) error {
	args := m.Called(db, review)
	return args.Error(0)
}

func (m *MockReviewRepository) FindBySessionID(db *gorm.DB, sessionID string) (*entity.Review, error) {
	args := m.Called(db, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Review, error) {
	args := m.Called(db, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewRepository) SummaryByDoctor(db *gorm.DB, doctorID uuid.UUID) (*entity.RatingSummary, error) {
	args := m.Called(db, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingSummary), args.Error(1)
}

type MockPrescriptionRepository struct {
	mock.Mock
}

func (m *MockPrescriptionRepository) Create(db *gorm.DB, prescription *entity.Prescription) error {
	args := m.Called(db, prescription)
	return args.Error(0)
}

func (m *MockPrescriptionRepository) FindBySessionID(db *gorm.DB, sessionID string) (*entity.Prescription, error) {
	args := m.Called(db, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) FindByPatientWallet(db *gorm.DB, wallet string) ([]entity.Prescription, error) {
	args := m.Called(db, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Prescription), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(db *gorm.DB, user *entity.User) error {
	args := m.Called(db, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	args := m.Called(db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByWallet(db *gorm.DB, wallet string) (*entity.User, error) {
	args := m.Called(db, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(db *gorm.DB, id uuid.UUID, roleID int) error {
	args := m.Called(db, id, roleID)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLogin(db *gorm.DB, id uuid.UUID, at time.Time) error {
	args := m.Called(db, id, at)
	return args.Error(0)
}
