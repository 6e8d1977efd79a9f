package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/domain/gateway"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// ErrAllowanceInsufficient is returned when the allowance is still short
// after an approval was mined.
var ErrAllowanceInsufficient = errors.New("token allowance below required amount")

// AllowanceResult describes what EnsureAllowance found and did.
type AllowanceResult struct {
	Required *big.Int
	Before   *big.Int
	Approved *big.Int
	After    *big.Int
	TxHash   string
}

type AllowanceManager interface {
	// Check reads the current allowance and the approval needed to reach
	// required.
	Check(ctx context.Context, token, owner, spender common.Address, required *big.Int) (current, shortfall *big.Int, err error)
	// EnsureAllowance approves exactly the shortfall when there is one, waits
	// for the approval to be mined and re-reads the allowance.
	EnsureAllowance(ctx context.Context, token, owner, spender common.Address, required *big.Int) (*AllowanceResult, error)
}

type allowanceManager struct {
	tokens gateway.TokenGateway
	waiter gateway.TxWaiter
	log    *logrus.Logger
}

func NewAllowanceManager(tokens gateway.TokenGateway, waiter gateway.TxWaiter, log *logrus.Logger) AllowanceManager {
	return &allowanceManager{
		tokens: tokens,
		waiter: waiter,
		log:    log,
	}
}

// ApprovalAmount is max(0, required - current).
func ApprovalAmount(required, current *big.Int) *big.Int {
	diff := new(big.Int).Sub(required, current)
	if diff.Sign() < 0 {
		return new(big.Int)
	}
	return diff
}

func (m *allowanceManager) Check(ctx context.Context, token, owner, spender common.Address, required *big.Int) (*big.Int, *big.Int, error) {
	current, err := m.tokens.Allowance(ctx, token, owner, spender)
	if err != nil {
		return nil, nil, fmt.Errorf("read allowance: %w", err)
	}
	return current, ApprovalAmount(required, current), nil
}

func (m *allowanceManager) EnsureAllowance(ctx context.Context, token, owner, spender common.Address, required *big.Int) (*AllowanceResult, error) {
	current, shortfall, err := m.Check(ctx, token, owner, spender, required)
	if err != nil {
		return nil, err
	}

	result := &AllowanceResult{
		Required: required,
		Before:   current,
		Approved: shortfall,
		After:    current,
	}
	if shortfall.Sign() == 0 {
		return result, nil
	}

	txHash, err := m.tokens.IncreaseAllowance(ctx, token, owner, spender, shortfall)
	if errors.Is(err, gateway.ErrCallReverted) {
		// No increaseAllowance on this token; set the total instead
		m.log.Infof("increaseAllowance reverted for token %s, falling back to approve", token.Hex())
		txHash, err = m.tokens.Approve(ctx, token, owner, spender, new(big.Int).Add(current, shortfall))
	}
	if err != nil {
		return result, fmt.Errorf("submit approval: %w", err)
	}
	result.TxHash = txHash
	m.log.Infof("Approval submitted: token=%s owner=%s shortfall=%s tx=%s", token.Hex(), owner.Hex(), shortfall, txHash)

	if _, err := m.waiter.WaitMined(ctx, txHash); err != nil {
		return result, fmt.Errorf("wait approval %s: %w", txHash, err)
	}

	after, err := m.tokens.Allowance(ctx, token, owner, spender)
	if err != nil {
		return result, fmt.Errorf("re-read allowance: %w", err)
	}
	result.After = after

	if after.Cmp(required) < 0 {
		return result, fmt.Errorf("%w: have %s, need %s", ErrAllowanceInsufficient, after, required)
	}
	return result, nil
}

// VerifyTokenDecimals checks the configured decimals of every ERC-20 token
// against the contract. Unreachable tokens are logged and skipped.
func VerifyTokenDecimals(ctx context.Context, tokens gateway.TokenGateway, network config.NetworkConfig, log *logrus.Logger) error {
	for symbol, info := range network.Tokens {
		if info.Native {
			continue
		}
		onChain, err := tokens.Decimals(ctx, common.HexToAddress(info.Address))
		if err != nil {
			log.Warnf("Failed to read decimals for %s: %+v", symbol, err)
			continue
		}
		if onChain != info.Decimals {
			return fmt.Errorf("token %s: configured decimals %d, contract reports %d", symbol, info.Decimals, onChain)
		}
	}
	return nil
}
