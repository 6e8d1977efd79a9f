package mocks

import (
	"context"
	"encoding/json"
	"math/big"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockFeeConverter struct {
	mock.Mock
}

func (m *MockFeeConverter) Quote(ctx context.Context, fee decimal.Decimal, sourceCurrency string, token config.TokenInfo) (*service.FeeQuote, error) {
	args := m.Called(ctx, fee, sourceCurrency, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FeeQuote), args.Error(1)
}

type MockAllowanceManager struct {
	mock.Mock
}

func (m *MockAllowanceManager) Check(ctx context.Context, token, owner, spender common.Address, required *big.Int) (*big.Int, *big.Int, error) {
	args := m.Called(ctx, token, owner, spender, required)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*big.Int), args.Get(1).(*big.Int), args.Error(2)
}

func (m *MockAllowanceManager) EnsureAllowance(ctx context.Context, token, owner, spender common.Address, required *big.Int) (*service.AllowanceResult, error) {
	args := m.Called(ctx, token, owner, spender, required)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AllowanceResult), args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, tx *gorm.DB, actor *uuid.UUID, action string, subject string, subjectID string, details interface{}) error {
	args := m.Called(ctx, tx, actor, action, subject, subjectID, details)
	return args.Error(0)
}

func (m *MockAuditService) RecordChange(ctx context.Context, tx *gorm.DB, actor *uuid.UUID, action string, subject string, subjectID string, before, after interface{}) error {
	args := m.Called(ctx, tx, actor, action, subject, subjectID, before, after)
	return args.Error(0)
}

type MockPrescriptionHashCache struct {
	mock.Mock
}

func (m *MockPrescriptionHashCache) Get(ctx context.Context, sessionID string) (string, bool, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockPrescriptionHashCache) Set(ctx context.Context, sessionID, hash string) error {
	args := m.Called(ctx, sessionID, hash)
	return args.Error(0)
}

func (m *MockPrescriptionHashCache) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// PassThroughCache always loads from the source. Invalidations are recorded.
type PassThroughCache struct {
	Invalidated []string
}

func (c *PassThroughCache) Fetch(ctx context.Context, kind, id string, load func(ctx context.Context) (interface{}, error)) ([]byte, error) {
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (c *PassThroughCache) Invalidate(ctx context.Context, kind string, ids ...string) {
	for _, id := range ids {
		c.Invalidated = append(c.Invalidated, kind+":"+id)
	}
}

// InlineLocker runs the locked function directly, or fails with Err.
type InlineLocker struct {
	Err error
}

func (l InlineLocker) WithAttemptLock(ctx context.Context, attemptID uuid.UUID, fn func(ctx context.Context) error) error {
	if l.Err != nil {
		return l.Err
	}
	return fn(ctx)
}

var (
	_ service.EntityCache   = (*PassThroughCache)(nil)
	_ service.AttemptLocker = InlineLocker{}
)
