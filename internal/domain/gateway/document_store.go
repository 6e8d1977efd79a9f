package gateway

import (
	"context"
	"io"
)

// DocumentStore pins documents to content-addressed storage.
type DocumentStore interface {
	Pin(ctx context.Context, r io.Reader) (string, error)
	Fetch(ctx context.Context, hash string) (io.ReadCloser, error)
}
