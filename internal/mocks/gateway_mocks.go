// Package mocks holds testify mocks for the domain gateways, repositories
// and services.
package mocks

import (
	"context"
	"io"
	"math/big"

	"pulsebridge-consult/internal/domain/gateway"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type MockPriceFeed struct {
	mock.Mock
}

func (m *MockPriceFeed) LatestPrices(ctx context.Context, symbols []string) (*gateway.PriceSnapshot, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PriceSnapshot), args.Error(1)
}

type MockTxWaiter struct {
	mock.Mock
}

func (m *MockTxWaiter) WaitMined(ctx context.Context, txHash string) (*gateway.TxReceipt, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.TxReceipt), args.Error(1)
}

func (m *MockTxWaiter) Receipt(ctx context.Context, txHash string) (*gateway.TxReceipt, bool, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*gateway.TxReceipt), args.Bool(1), args.Error(2)
}

type MockTokenGateway struct {
	mock.Mock
}

func (m *MockTokenGateway) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	args := m.Called(ctx, token, owner, spender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockTokenGateway) IncreaseAllowance(ctx context.Context, token, owner, spender common.Address, added *big.Int) (string, error) {
	args := m.Called(ctx, token, owner, spender, added)
	return args.String(0), args.Error(1)
}

func (m *MockTokenGateway) Approve(ctx context.Context, token, owner, spender common.Address, amount *big.Int) (string, error) {
	args := m.Called(ctx, token, owner, spender, amount)
	return args.String(0), args.Error(1)
}

func (m *MockTokenGateway) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uint8), args.Error(1)
}

type MockEscrowGateway struct {
	mock.Mock
}

func (m *MockEscrowGateway) Address() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}

func (m *MockEscrowGateway) CreateSession(ctx context.Context, patient common.Address, req gateway.CreateSessionRequest) (string, error) {
	args := m.Called(ctx, patient, req)
	return args.String(0), args.Error(1)
}

func (m *MockEscrowGateway) SessionIDFromReceipt(receipt *gateway.TxReceipt) (*big.Int, error) {
	args := m.Called(receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockEscrowGateway) ReleasePayment(ctx context.Context, doctor common.Address, sessionID *big.Int, prescriptionHash string) (string, error) {
	args := m.Called(ctx, doctor, sessionID, prescriptionHash)
	return args.String(0), args.Error(1)
}

func (m *MockEscrowGateway) RateSession(ctx context.Context, patient common.Address, sessionID *big.Int, rating uint8) (string, error) {
	args := m.Called(ctx, patient, sessionID, rating)
	return args.String(0), args.Error(1)
}

func (m *MockEscrowGateway) GetSession(ctx context.Context, sessionID *big.Int) (*gateway.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Session), args.Error(1)
}

func (m *MockEscrowGateway) GetDoctorSessions(ctx context.Context, doctorID uint32) ([]*big.Int, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*big.Int), args.Error(1)
}

type MockRegistryGateway struct {
	mock.Mock
}

func (m *MockRegistryGateway) GetDoctor(ctx context.Context, id uint32) (*gateway.RegisteredDoctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.RegisteredDoctor), args.Error(1)
}

func (m *MockRegistryGateway) GetPendingDoctor(ctx context.Context, id uint32) (*gateway.RegisteredDoctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.RegisteredDoctor), args.Error(1)
}

func (m *MockRegistryGateway) NumTotalRegistrations(ctx context.Context) (uint32, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint32), args.Error(1)
}

func (m *MockRegistryGateway) ApproveDoctor(ctx context.Context, admin common.Address, id uint32) (string, error) {
	args := m.Called(ctx, admin, id)
	return args.String(0), args.Error(1)
}

func (m *MockRegistryGateway) DenyDoctor(ctx context.Context, admin common.Address, id uint32) (string, error) {
	args := m.Called(ctx, admin, id)
	return args.String(0), args.Error(1)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Pin(ctx context.Context, r io.Reader) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStore) Fetch(ctx context.Context, hash string) (io.ReadCloser, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
