package mocks

import (
	"context"

	"pulsebridge-consult/internal/delivery/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockSessionOrchestrator struct {
	mock.Mock
}

func (m *MockSessionOrchestrator) attempt(args mock.Arguments) (*dto.BookingAttemptResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookingAttemptResponse), args.Error(1)
}

func (m *MockSessionOrchestrator) SelectSlot(ctx context.Context, req *dto.SelectSlotRequest) (*dto.BookingAttemptResponse, error) {
	return m.attempt(m.Called(ctx, req))
}

func (m *MockSessionOrchestrator) ConfirmDetails(ctx context.Context, attemptID uuid.UUID, req *dto.ConfirmDetailsRequest) (*dto.BookingAttemptResponse, error) {
	return m.attempt(m.Called(ctx, attemptID, req))
}

func (m *MockSessionOrchestrator) ApproveToken(ctx context.Context, attemptID uuid.UUID) (*dto.BookingAttemptResponse, error) {
	return m.attempt(m.Called(ctx, attemptID))
}

func (m *MockSessionOrchestrator) CreateSession(ctx context.Context, attemptID uuid.UUID) (*dto.BookingAttemptResponse, error) {
	return m.attempt(m.Called(ctx, attemptID))
}

func (m *MockSessionOrchestrator) Proceed(ctx context.Context, attemptID uuid.UUID, req *dto.ProceedRequest) (*dto.BookingAttemptResponse, error) {
	return m.attempt(m.Called(ctx, attemptID, req))
}

func (m *MockSessionOrchestrator) GetAttempt(ctx context.Context, attemptID uuid.UUID) (*dto.BookingAttemptResponse, error) {
	return m.attempt(m.Called(ctx, attemptID))
}

func (m *MockSessionOrchestrator) ListMyAttempts(ctx context.Context) (*dto.BookingAttemptListResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookingAttemptListResponse), args.Error(1)
}
