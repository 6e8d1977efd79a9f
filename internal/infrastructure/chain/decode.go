package chain

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"pulsebridge-consult/internal/domain/gateway"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var errMalformedResult = errors.New("malformed contract result")

// regStruct matches the DoctorRegistry RegStruct tuple.
type regStruct struct {
	Name                   string
	Specialization         string
	ProfileDescription     string
	Email                  string
	DoctorAddress          common.Address
	ConsultationFeePerHour *big.Int
	DepositFeeStored       *big.Int
	LegalDocumentsIPFSHash [32]byte
}

// escrowSession matches the ConsultationEscrow Session tuple.
type escrowSession struct {
	SessionId            *big.Int
	Patient              common.Address
	DoctorId             uint32
	PyusdAmount          *big.Int
	Token                common.Address
	StartTime            *big.Int
	Status               uint8
	PrescriptionIPFSHash string
	Rating               uint8
}

// sessionCreatedEvent matches the SessionCreated log.
type sessionCreatedEvent struct {
	SessionId *big.Int
	Patient   common.Address
	DoctorId  uint32
	Amount    *big.Int
}

// convertTuple copies an anonymous ABI tuple into proto. abi.ConvertType
// panics on shape mismatch, which is reported as errMalformedResult.
func convertTuple[T any](out []interface{}) (result *T, err error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: expected 1 output, got %d", errMalformedResult, len(out))
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: %v", errMalformedResult, r)
		}
	}()
	return abi.ConvertType(out[0], new(T)).(*T), nil
}

func firstBigInt(out []interface{}) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: expected 1 output, got %d", errMalformedResult, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: expected uint256, got %T", errMalformedResult, out[0])
	}
	return v, nil
}

// toSession validates the raw tuple: a known status, a funded amount, and a
// prescription hash present on completed sessions only.
func toSession(raw *escrowSession) (*gateway.Session, error) {
	if raw.SessionId == nil || raw.PyusdAmount == nil || raw.StartTime == nil {
		return nil, fmt.Errorf("%w: session has nil fields", errMalformedResult)
	}
	status := gateway.SessionStatus(raw.Status)
	switch status {
	case gateway.SessionActive:
		if raw.PrescriptionIPFSHash != "" {
			return nil, fmt.Errorf("%w: active session %s carries a prescription", errMalformedResult, raw.SessionId)
		}
	case gateway.SessionCompleted:
		if raw.PrescriptionIPFSHash == "" {
			return nil, fmt.Errorf("%w: completed session %s has no prescription", errMalformedResult, raw.SessionId)
		}
	default:
		return nil, fmt.Errorf("%w: session %s has status %d", errMalformedResult, raw.SessionId, raw.Status)
	}
	if raw.PyusdAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: session %s has no funds", errMalformedResult, raw.SessionId)
	}
	if raw.Rating > 5 {
		return nil, fmt.Errorf("%w: session %s rating %d", errMalformedResult, raw.SessionId, raw.Rating)
	}

	return &gateway.Session{
		ID:                   raw.SessionId,
		Patient:              raw.Patient,
		DoctorID:             raw.DoctorId,
		Amount:               raw.PyusdAmount,
		Token:                raw.Token,
		StartTime:            time.Unix(raw.StartTime.Int64(), 0).UTC(),
		Status:               status,
		PrescriptionIPFSHash: raw.PrescriptionIPFSHash,
		Rating:               raw.Rating,
	}, nil
}

func toRegisteredDoctor(id uint32, raw *regStruct) (*gateway.RegisteredDoctor, error) {
	if raw.DoctorAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: doctor %d has no address", errMalformedResult, id)
	}
	fee := raw.ConsultationFeePerHour
	if fee == nil {
		fee = new(big.Int)
	}
	deposit := raw.DepositFeeStored
	if deposit == nil {
		deposit = new(big.Int)
	}
	return &gateway.RegisteredDoctor{
		ID:                     id,
		Name:                   raw.Name,
		Specialization:         raw.Specialization,
		ProfileDescription:     raw.ProfileDescription,
		Email:                  raw.Email,
		WalletAddress:          raw.DoctorAddress,
		ConsultationFeePerHour: fee,
		DepositFeeStored:       deposit,
		LegalDocumentsIPFSHash: common.Hash(raw.LegalDocumentsIPFSHash).Hex(),
	}, nil
}
