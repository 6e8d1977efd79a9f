package chain

import (
	"context"
	"fmt"
	"math/big"

	"pulsebridge-consult/internal/domain/gateway"

	"github.com/ethereum/go-ethereum/common"
)

type tokenGateway struct {
	client *Client
}

func NewTokenGateway(client *Client) gateway.TokenGateway {
	return &tokenGateway{client: client}
}

func (g *tokenGateway) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	var out []interface{}
	err := g.client.bound(token, erc20ABI).Call(g.client.callOpts(ctx), &out, "allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}
	return firstBigInt(out)
}

func (g *tokenGateway) IncreaseAllowance(ctx context.Context, token, owner, spender common.Address, added *big.Int) (string, error) {
	opts, err := g.client.transactOpts(ctx, owner)
	if err != nil {
		return "", err
	}
	tx, err := g.client.bound(token, erc20ABI).Transact(opts, "increaseAllowance", spender, added)
	if err != nil {
		return "", fmt.Errorf("increaseAllowance: %w", asRevert(err))
	}
	return tx.Hash().Hex(), nil
}

func (g *tokenGateway) Approve(ctx context.Context, token, owner, spender common.Address, amount *big.Int) (string, error) {
	opts, err := g.client.transactOpts(ctx, owner)
	if err != nil {
		return "", err
	}
	tx, err := g.client.bound(token, erc20ABI).Transact(opts, "approve", spender, amount)
	if err != nil {
		return "", fmt.Errorf("approve: %w", asRevert(err))
	}
	return tx.Hash().Hex(), nil
}

func (g *tokenGateway) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	var out []interface{}
	if err := g.client.bound(token, erc20ABI).Call(g.client.callOpts(ctx), &out, "decimals"); err != nil {
		return 0, fmt.Errorf("decimals: %w", err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("decimals: unexpected output length %d", len(out))
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: unexpected type %T", out[0])
	}
	return d, nil
}
