package chain

import (
	"context"
	"fmt"
	"math/big"

	"pulsebridge-consult/internal/domain/gateway"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
)

// Signer produces transaction options for a wallet.
type Signer interface {
	TransactOpts(ctx context.Context, from common.Address) (*bind.TransactOpts, error)
}

// KeystoreSigner signs with keys held in an encrypted go-ethereum keystore
// directory, unlocked with a single passphrase.
type KeystoreSigner struct {
	ks         *keystore.KeyStore
	passphrase string
	chainID    *big.Int
}

func NewKeystoreSigner(dir, passphrase string, chainID int64) *KeystoreSigner {
	return &KeystoreSigner{
		ks:         keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP),
		passphrase: passphrase,
		chainID:    big.NewInt(chainID),
	}
}

func (s *KeystoreSigner) TransactOpts(ctx context.Context, from common.Address) (*bind.TransactOpts, error) {
	account, err := s.ks.Find(accounts.Account{Address: from})
	if err != nil {
		return nil, fmt.Errorf("%w %s", gateway.ErrNoSigner, from.Hex())
	}
	if err := s.ks.Unlock(account, s.passphrase); err != nil {
		return nil, fmt.Errorf("unlock %s: %w", from.Hex(), err)
	}

	opts, err := bind.NewKeyStoreTransactorWithChainID(s.ks, account, s.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// Accounts lists the wallets the keystore can sign for.
func (s *KeystoreSigner) Accounts() []common.Address {
	var out []common.Address
	for _, acc := range s.ks.Accounts() {
		out = append(out, acc.Address)
	}
	return out
}
