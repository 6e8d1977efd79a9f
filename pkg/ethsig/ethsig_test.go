package ethsig

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, msg string) (string, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	require.NoError(t, err)
	sig[64] += 27
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestVerify(t *testing.T) {
	msg := LoginMessage("0x0000000000000000000000000000000000000001", "n-1")
	wallet, sig := sign(t, msg)

	assert.NoError(t, Verify(wallet, msg, sig))
	assert.ErrorIs(t, Verify("0x0000000000000000000000000000000000000002", msg, sig), ErrInvalidSignature)
	assert.ErrorIs(t, Verify(wallet, msg+"x", sig), ErrInvalidSignature)
}

func TestRecoverAddressRejectsGarbage(t *testing.T) {
	_, err := RecoverAddress("hello", "0x1234")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = RecoverAddress("hello", "not-hex")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
