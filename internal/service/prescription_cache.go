package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	prescriptionHashKeyPrefix = "prescription:hash:"
	prescriptionHashTTL       = 24 * time.Hour
)

// PrescriptionHashCache remembers the IPFS hash pinned for a session so a
// failed releasePayment can be retried without pinning the document again.
type PrescriptionHashCache interface {
	Get(ctx context.Context, sessionID string) (string, bool, error)
	Set(ctx context.Context, sessionID, hash string) error
	Clear(ctx context.Context, sessionID string) error
}

type redisPrescriptionHashCache struct {
	client *redis.Client
}

func NewPrescriptionHashCache(client *redis.Client) PrescriptionHashCache {
	return &redisPrescriptionHashCache{client: client}
}

func (c *redisPrescriptionHashCache) Get(ctx context.Context, sessionID string) (string, bool, error) {
	hash, err := c.client.Get(ctx, prescriptionHashKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

func (c *redisPrescriptionHashCache) Set(ctx context.Context, sessionID, hash string) error {
	return c.client.Set(ctx, prescriptionHashKeyPrefix+sessionID, hash, prescriptionHashTTL).Err()
}

func (c *redisPrescriptionHashCache) Clear(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, prescriptionHashKeyPrefix+sessionID).Err()
}
