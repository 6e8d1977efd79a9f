package chain

import (
	"context"
	"fmt"

	"pulsebridge-consult/internal/domain/gateway"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

type registryGateway struct {
	client   *Client
	contract *bind.BoundContract
}

func NewRegistryGateway(client *Client, address common.Address) gateway.RegistryGateway {
	return &registryGateway{
		client:   client,
		contract: client.bound(address, registryABI),
	}
}

func (g *registryGateway) GetDoctor(ctx context.Context, id uint32) (*gateway.RegisteredDoctor, error) {
	return g.readDoctor(ctx, "getDoctor", id)
}

func (g *registryGateway) GetPendingDoctor(ctx context.Context, id uint32) (*gateway.RegisteredDoctor, error) {
	return g.readDoctor(ctx, "getPendingDoctorInfoByID", id)
}

func (g *registryGateway) readDoctor(ctx context.Context, method string, id uint32) (*gateway.RegisteredDoctor, error) {
	var out []interface{}
	if err := g.contract.Call(g.client.callOpts(ctx), &out, method, id); err != nil {
		return nil, fmt.Errorf("%s(%d): %w", method, id, err)
	}
	raw, err := convertTuple[regStruct](out)
	if err != nil {
		return nil, err
	}
	return toRegisteredDoctor(id, raw)
}

func (g *registryGateway) NumTotalRegistrations(ctx context.Context) (uint32, error) {
	var out []interface{}
	if err := g.contract.Call(g.client.callOpts(ctx), &out, "numTotalRegistrations"); err != nil {
		return 0, fmt.Errorf("numTotalRegistrations: %w", err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("%w: expected 1 output, got %d", errMalformedResult, len(out))
	}
	n, ok := out[0].(uint32)
	if !ok {
		return 0, fmt.Errorf("%w: expected uint32, got %T", errMalformedResult, out[0])
	}
	return n, nil
}

func (g *registryGateway) ApproveDoctor(ctx context.Context, admin common.Address, id uint32) (string, error) {
	return g.decide(ctx, admin, "approveDoctor", id)
}

func (g *registryGateway) DenyDoctor(ctx context.Context, admin common.Address, id uint32) (string, error) {
	return g.decide(ctx, admin, "denyDoctor", id)
}

func (g *registryGateway) decide(ctx context.Context, admin common.Address, method string, id uint32) (string, error) {
	opts, err := g.client.transactOpts(ctx, admin)
	if err != nil {
		return "", err
	}
	tx, err := g.contract.Transact(opts, method, id)
	if err != nil {
		return "", fmt.Errorf("%s(%d): %w", method, id, err)
	}
	return tx.Hash().Hex(), nil
}
