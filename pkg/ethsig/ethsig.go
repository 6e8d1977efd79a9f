// Package ethsig verifies EIP-191 personal_sign signatures used for wallet
// sign-in.
package ethsig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidSignature = errors.New("invalid signature")

// LoginMessage is the exact text a wallet signs to prove ownership.
func LoginMessage(wallet, nonce string) string {
	return fmt.Sprintf("Sign in to PulseBridge Consult\n\nWallet: %s\nNonce: %s", common.HexToAddress(wallet).Hex(), nonce)
}

// RecoverAddress returns the signer of message.
func RecoverAddress(message, signatureHex string) (common.Address, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil || len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}
	// wallets emit v as 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify reports whether signatureHex over message was produced by wallet.
func Verify(wallet, message, signatureHex string) error {
	addr, err := RecoverAddress(message, signatureHex)
	if err != nil {
		return err
	}
	if !strings.EqualFold(addr.Hex(), wallet) {
		return ErrInvalidSignature
	}
	return nil
}
