package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"testing"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/domain/gateway"
	"pulsebridge-consult/internal/mocks"
	"pulsebridge-consult/internal/service"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	token   = common.HexToAddress("0xCaC524BcA292aaade2DF8A05cC58F0a65B1B3bB9")
	owner   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	spender = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestApprovalAmount(t *testing.T) {
	assert.Equal(t, "30", service.ApprovalAmount(big.NewInt(100), big.NewInt(70)).String())
	assert.Equal(t, "0", service.ApprovalAmount(big.NewInt(100), big.NewInt(100)).String())
	assert.Equal(t, "0", service.ApprovalAmount(big.NewInt(100), big.NewInt(500)).String())
}

func TestAllowanceManager_EnsureAllowance(t *testing.T) {
	t.Run("no approval when allowance covers amount", func(t *testing.T) {
		tokens := new(mocks.MockTokenGateway)
		waiter := new(mocks.MockTxWaiter)
		tokens.On("Allowance", mock.Anything, token, owner, spender).Return(big.NewInt(150), nil).Once()

		res, err := service.NewAllowanceManager(tokens, waiter, quietLogger()).
			EnsureAllowance(context.Background(), token, owner, spender, big.NewInt(100))

		require.NoError(t, err)
		assert.Equal(t, "0", res.Approved.String())
		assert.Empty(t, res.TxHash)
		tokens.AssertNotCalled(t, "IncreaseAllowance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		waiter.AssertNotCalled(t, "WaitMined", mock.Anything, mock.Anything)
	})

	t.Run("approves exactly the shortfall", func(t *testing.T) {
		tokens := new(mocks.MockTokenGateway)
		waiter := new(mocks.MockTxWaiter)
		tokens.On("Allowance", mock.Anything, token, owner, spender).Return(big.NewInt(30), nil).Once()
		tokens.On("IncreaseAllowance", mock.Anything, token, owner, spender, big.NewInt(70)).Return("0xapprove", nil).Once()
		waiter.On("WaitMined", mock.Anything, "0xapprove").Return(&gateway.TxReceipt{TxHash: "0xapprove", Success: true}, nil).Once()
		tokens.On("Allowance", mock.Anything, token, owner, spender).Return(big.NewInt(100), nil).Once()

		res, err := service.NewAllowanceManager(tokens, waiter, quietLogger()).
			EnsureAllowance(context.Background(), token, owner, spender, big.NewInt(100))

		require.NoError(t, err)
		assert.Equal(t, "70", res.Approved.String())
		assert.Equal(t, "0xapprove", res.TxHash)
		assert.Equal(t, "100", res.After.String())
		tokens.AssertExpectations(t)
		waiter.AssertExpectations(t)
	})

	t.Run("still short after approval", func(t *testing.T) {
		tokens := new(mocks.MockTokenGateway)
		waiter := new(mocks.MockTxWaiter)
		tokens.On("Allowance", mock.Anything, token, owner, spender).Return(big.NewInt(0), nil).Once()
		tokens.On("IncreaseAllowance", mock.Anything, token, owner, spender, big.NewInt(100)).Return("0xapprove", nil).Once()
		waiter.On("WaitMined", mock.Anything, "0xapprove").Return(&gateway.TxReceipt{Success: true}, nil).Once()
		tokens.On("Allowance", mock.Anything, token, owner, spender).Return(big.NewInt(40), nil).Once()

		_, err := service.NewAllowanceManager(tokens, waiter, quietLogger()).
			EnsureAllowance(context.Background(), token, owner, spender, big.NewInt(100))

		assert.ErrorIs(t, err, service.ErrAllowanceInsufficient)
	})

	t.Run("reverted approval", func(t *testing.T) {
		tokens := new(mocks.MockTokenGateway)
		waiter := new(mocks.MockTxWaiter)
		tokens.On("Allowance", mock.Anything, token, owner, spender).Return(big.NewInt(0), nil).Once()
		tokens.On("IncreaseAllowance", mock.Anything, token, owner, spender, big.NewInt(100)).Return("0xbad", nil).Once()
		waiter.On("WaitMined", mock.Anything, "0xbad").Return(nil, gateway.ErrTransactionFailed).Once()

		res, err := service.NewAllowanceManager(tokens, waiter, quietLogger()).
			EnsureAllowance(context.Background(), token, owner, spender, big.NewInt(100))

		assert.ErrorIs(t, err, gateway.ErrTransactionFailed)
		assert.Equal(t, "0xbad", res.TxHash)
	})

	t.Run("falls back to approve when increaseAllowance is missing", func(t *testing.T) {
		tokens := new(mocks.MockTokenGateway)
		waiter := new(mocks.MockTxWaiter)
		tokens.On("Allowance", mock.Anything, token, owner, spender).Return(big.NewInt(30), nil).Once()
		tokens.On("IncreaseAllowance", mock.Anything, token, owner, spender, big.NewInt(70)).
			Return("", fmt.Errorf("increaseAllowance: %w", gateway.ErrCallReverted)).Once()
		tokens.On("Approve", mock.Anything, token, owner, spender, big.NewInt(100)).Return("0xapprove", nil).Once()
		waiter.On("WaitMined", mock.Anything, "0xapprove").Return(&gateway.TxReceipt{TxHash: "0xapprove", Success: true}, nil).Once()
		tokens.On("Allowance", mock.Anything, token, owner, spender).Return(big.NewInt(100), nil).Once()

		res, err := service.NewAllowanceManager(tokens, waiter, quietLogger()).
			EnsureAllowance(context.Background(), token, owner, spender, big.NewInt(100))

		require.NoError(t, err)
		assert.Equal(t, "70", res.Approved.String())
		assert.Equal(t, "0xapprove", res.TxHash)
		tokens.AssertExpectations(t)
	})

	t.Run("other submission errors do not fall back", func(t *testing.T) {
		tokens := new(mocks.MockTokenGateway)
		waiter := new(mocks.MockTxWaiter)
		tokens.On("Allowance", mock.Anything, token, owner, spender).Return(big.NewInt(0), nil).Once()
		tokens.On("IncreaseAllowance", mock.Anything, token, owner, spender, big.NewInt(100)).
			Return("", gateway.ErrNoSigner).Once()

		_, err := service.NewAllowanceManager(tokens, waiter, quietLogger()).
			EnsureAllowance(context.Background(), token, owner, spender, big.NewInt(100))

		assert.ErrorIs(t, err, gateway.ErrNoSigner)
		tokens.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVerifyTokenDecimals(t *testing.T) {
	network := config.NetworkConfig{Tokens: map[string]config.TokenInfo{
		"ETH":   {Symbol: "ETH", Decimals: 18, Native: true},
		"PYUSD": {Symbol: "PYUSD", Address: token.Hex(), Decimals: 6},
	}}

	t.Run("matching", func(t *testing.T) {
		tokens := new(mocks.MockTokenGateway)
		tokens.On("Decimals", mock.Anything, token).Return(uint8(6), nil)

		require.NoError(t, service.VerifyTokenDecimals(context.Background(), tokens, network, quietLogger()))
		tokens.AssertNumberOfCalls(t, "Decimals", 1)
	})

	t.Run("mismatch", func(t *testing.T) {
		tokens := new(mocks.MockTokenGateway)
		tokens.On("Decimals", mock.Anything, token).Return(uint8(18), nil)

		err := service.VerifyTokenDecimals(context.Background(), tokens, network, quietLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PYUSD")
	})

	t.Run("unreachable token is skipped", func(t *testing.T) {
		tokens := new(mocks.MockTokenGateway)
		tokens.On("Decimals", mock.Anything, token).Return(uint8(0), errors.New("dial tcp: timeout"))

		assert.NoError(t, service.VerifyTokenDecimals(context.Background(), tokens, network, quietLogger()))
	})
}
