package ipfs

import (
	"context"
	"fmt"
	"io"

	"pulsebridge-consult/config"
	"pulsebridge-consult/internal/domain/gateway"

	shell "github.com/ipfs/go-ipfs-api"
)

// Store pins documents on an IPFS node through its HTTP API.
type Store struct {
	sh *shell.Shell
}

func NewStore(cfg config.IPFSConfig) gateway.DocumentStore {
	return &Store{sh: shell.NewShell(cfg.APIURL)}
}

func (s *Store) Pin(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	hash, err := s.sh.Add(r, shell.Pin(true))
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	return hash, nil
}

func (s *Store) Fetch(ctx context.Context, hash string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := s.sh.Cat(hash)
	if err != nil {
		return nil, fmt.Errorf("ipfs cat %s: %w", hash, err)
	}
	return rc, nil
}
