package gateway

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrTransactionFailed is returned when a mined transaction reverted.
	ErrTransactionFailed = errors.New("transaction reverted")
	// ErrNoSigner is returned when no key is available for a wallet.
	ErrNoSigner = errors.New("no signer for wallet")
	// ErrCallReverted is returned when a transaction reverts during gas
	// estimation and was never sent.
	ErrCallReverted = errors.New("call reverted")
)

// TxReceipt is the subset of a mined receipt the application reads.
type TxReceipt struct {
	TxHash      string
	BlockNumber uint64
	Success     bool
	Logs        []*types.Log
}

// TxWaiter resolves transaction hashes into receipts.
type TxWaiter interface {
	// WaitMined blocks until the transaction is included or ctx ends.
	WaitMined(ctx context.Context, txHash string) (*TxReceipt, error)
	// Receipt returns the receipt if the transaction is already mined.
	Receipt(ctx context.Context, txHash string) (*TxReceipt, bool, error)
}

// TokenGateway wraps the ERC-20 calls used for allowance management.
type TokenGateway interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	IncreaseAllowance(ctx context.Context, token, owner, spender common.Address, added *big.Int) (string, error)
	// Approve sets the allowance to amount.
	Approve(ctx context.Context, token, owner, spender common.Address, amount *big.Int) (string, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// SessionStatus is the escrow contract's session state.
type SessionStatus uint8

const (
	SessionActive    SessionStatus = 0
	SessionCompleted SessionStatus = 1
)

func (s SessionStatus) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionCompleted:
		return "completed"
	}
	return "unknown"
}

// Session is a decoded ConsultationEscrow session.
type Session struct {
	ID                   *big.Int
	Patient              common.Address
	DoctorID             uint32
	Amount               *big.Int
	Token                common.Address
	StartTime            time.Time
	Status               SessionStatus
	PrescriptionIPFSHash string
	Rating               uint8
}

// IsNative reports whether the session was funded with the gas currency.
func (s *Session) IsNative() bool {
	return s.Token == (common.Address{})
}

// CreateSessionRequest carries the createSession arguments.
type CreateSessionRequest struct {
	DoctorID   uint32
	Amount     *big.Int
	UpdateData [][]byte
	Token      common.Address
	StartTime  time.Time
}

// EscrowGateway wraps the ConsultationEscrow contract.
type EscrowGateway interface {
	Address() common.Address
	CreateSession(ctx context.Context, patient common.Address, req CreateSessionRequest) (string, error)
	SessionIDFromReceipt(receipt *TxReceipt) (*big.Int, error)
	ReleasePayment(ctx context.Context, doctor common.Address, sessionID *big.Int, prescriptionHash string) (string, error)
	RateSession(ctx context.Context, patient common.Address, sessionID *big.Int, rating uint8) (string, error)
	GetSession(ctx context.Context, sessionID *big.Int) (*Session, error)
	GetDoctorSessions(ctx context.Context, doctorID uint32) ([]*big.Int, error)
}

// RegisteredDoctor is a decoded DoctorRegistry registration.
type RegisteredDoctor struct {
	ID                     uint32
	Name                   string
	Specialization         string
	ProfileDescription     string
	Email                  string
	WalletAddress          common.Address
	ConsultationFeePerHour *big.Int
	DepositFeeStored       *big.Int
	LegalDocumentsIPFSHash string
}

// RegistryGateway wraps the DoctorRegistry contract.
type RegistryGateway interface {
	GetDoctor(ctx context.Context, id uint32) (*RegisteredDoctor, error)
	GetPendingDoctor(ctx context.Context, id uint32) (*RegisteredDoctor, error)
	NumTotalRegistrations(ctx context.Context) (uint32, error)
	ApproveDoctor(ctx context.Context, admin common.Address, id uint32) (string, error)
	DenyDoctor(ctx context.Context, admin common.Address, id uint32) (string, error)
}
