package chain

import (
	"math/big"
	"testing"

	"pulsebridge-consult/internal/domain/gateway"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawSession() *escrowSession {
	return &escrowSession{
		SessionId:   big.NewInt(7),
		Patient:     common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		DoctorId:    3,
		PyusdAmount: big.NewInt(25_250_000),
		StartTime:   big.NewInt(1_760_000_000),
		Status:      0,
	}
}

func TestToSession(t *testing.T) {
	t.Run("decodes an active session", func(t *testing.T) {
		s, err := toSession(validRawSession())
		require.NoError(t, err)
		assert.Equal(t, gateway.SessionActive, s.Status)
		assert.Equal(t, uint32(3), s.DoctorID)
		assert.Equal(t, int64(1_760_000_000), s.StartTime.Unix())
		assert.True(t, s.IsNative())
	})

	t.Run("rejects a completed session without prescription", func(t *testing.T) {
		raw := validRawSession()
		raw.Status = 1
		_, err := toSession(raw)
		assert.ErrorIs(t, err, errMalformedResult)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		raw := validRawSession()
		raw.Status = 9
		_, err := toSession(raw)
		assert.ErrorIs(t, err, errMalformedResult)
	})

	t.Run("rejects an unfunded session", func(t *testing.T) {
		raw := validRawSession()
		raw.PyusdAmount = big.NewInt(0)
		_, err := toSession(raw)
		assert.ErrorIs(t, err, errMalformedResult)
	})
}

func TestConvertTuple(t *testing.T) {
	t.Run("converts a matching tuple", func(t *testing.T) {
		raw := validRawSession()
		out := []interface{}{*raw}
		got, err := convertTuple[escrowSession](out)
		require.NoError(t, err)
		assert.Equal(t, raw.SessionId, got.SessionId)
	})

	t.Run("reports a shape mismatch instead of panicking", func(t *testing.T) {
		_, err := convertTuple[escrowSession]([]interface{}{"not a tuple"})
		assert.ErrorIs(t, err, errMalformedResult)
	})
}

func TestSessionIDFromReceipt(t *testing.T) {
	address := common.HexToAddress("0x00000000000000000000000000000000000000e5")
	g := &escrowGateway{address: address, contract: bind.NewBoundContract(address, escrowABI, nil, nil, nil)}

	event := escrowABI.Events["SessionCreated"]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(1000))
	require.NoError(t, err)

	patient := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	sessionLog := &types.Log{
		Address: address,
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(big.NewInt(42)),
			common.BytesToHash(patient.Bytes()),
			common.BigToHash(big.NewInt(3)),
		},
		Data: data,
	}
	unrelated := &types.Log{Address: common.HexToAddress("0x01"), Topics: []common.Hash{event.ID}}

	id, err := g.SessionIDFromReceipt(&gateway.TxReceipt{Logs: []*types.Log{unrelated, sessionLog}})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.Int64())

	_, err = g.SessionIDFromReceipt(&gateway.TxReceipt{Logs: []*types.Log{unrelated}})
	assert.ErrorIs(t, err, errSessionEventMissing)
}
