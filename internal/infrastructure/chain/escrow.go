package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"pulsebridge-consult/internal/domain/gateway"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

var errSessionEventMissing = errors.New("SessionCreated event not found in receipt")

type escrowGateway struct {
	client   *Client
	address  common.Address
	contract *bind.BoundContract
}

func NewEscrowGateway(client *Client, address common.Address) gateway.EscrowGateway {
	return &escrowGateway{
		client:   client,
		address:  address,
		contract: client.bound(address, escrowABI),
	}
}

func (g *escrowGateway) Address() common.Address {
	return g.address
}

// CreateSession funds a session. Native settlement sends the amount as
// transaction value with the zero token address.
func (g *escrowGateway) CreateSession(ctx context.Context, patient common.Address, req gateway.CreateSessionRequest) (string, error) {
	opts, err := g.client.transactOpts(ctx, patient)
	if err != nil {
		return "", err
	}
	if req.Token == (common.Address{}) {
		opts.Value = new(big.Int).Set(req.Amount)
	}

	startTime := big.NewInt(req.StartTime.Unix())
	tx, err := g.contract.Transact(opts, "createSession", req.DoctorID, req.Amount, req.UpdateData, req.Token, startTime)
	if err != nil {
		return "", fmt.Errorf("createSession: %w", err)
	}
	return tx.Hash().Hex(), nil
}

func (g *escrowGateway) SessionIDFromReceipt(receipt *gateway.TxReceipt) (*big.Int, error) {
	event := escrowABI.Events["SessionCreated"]
	for _, l := range receipt.Logs {
		if l == nil || l.Address != g.address || len(l.Topics) == 0 || l.Topics[0] != event.ID {
			continue
		}
		var ev sessionCreatedEvent
		if err := g.contract.UnpackLog(&ev, "SessionCreated", *l); err != nil {
			return nil, fmt.Errorf("decode SessionCreated: %w", err)
		}
		if ev.SessionId == nil {
			return nil, fmt.Errorf("%w: empty session id", errMalformedResult)
		}
		return ev.SessionId, nil
	}
	return nil, errSessionEventMissing
}

func (g *escrowGateway) ReleasePayment(ctx context.Context, doctor common.Address, sessionID *big.Int, prescriptionHash string) (string, error) {
	opts, err := g.client.transactOpts(ctx, doctor)
	if err != nil {
		return "", err
	}
	tx, err := g.contract.Transact(opts, "releasePayment", sessionID, prescriptionHash)
	if err != nil {
		return "", fmt.Errorf("releasePayment: %w", err)
	}
	return tx.Hash().Hex(), nil
}

func (g *escrowGateway) RateSession(ctx context.Context, patient common.Address, sessionID *big.Int, rating uint8) (string, error) {
	opts, err := g.client.transactOpts(ctx, patient)
	if err != nil {
		return "", err
	}
	tx, err := g.contract.Transact(opts, "rateSession", sessionID, rating)
	if err != nil {
		return "", fmt.Errorf("rateSession: %w", err)
	}
	return tx.Hash().Hex(), nil
}

func (g *escrowGateway) GetSession(ctx context.Context, sessionID *big.Int) (*gateway.Session, error) {
	var out []interface{}
	if err := g.contract.Call(g.client.callOpts(ctx), &out, "getSession", sessionID); err != nil {
		return nil, fmt.Errorf("getSession: %w", err)
	}
	raw, err := convertTuple[escrowSession](out)
	if err != nil {
		return nil, err
	}
	return toSession(raw)
}

func (g *escrowGateway) GetDoctorSessions(ctx context.Context, doctorID uint32) ([]*big.Int, error) {
	var out []interface{}
	if err := g.contract.Call(g.client.callOpts(ctx), &out, "getDoctorSessions", doctorID); err != nil {
		return nil, fmt.Errorf("getDoctorSessions: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: expected 1 output, got %d", errMalformedResult, len(out))
	}
	ids, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: expected uint256[], got %T", errMalformedResult, out[0])
	}
	return ids, nil
}
