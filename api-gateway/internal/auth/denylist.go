package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisDenylist remembers signed-out token ids until the tokens would have
// expired anyway.
type RedisDenylist struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisDenylist(client *redis.Client, keyPrefix string) *RedisDenylist {
	return &RedisDenylist{client: client, keyPrefix: keyPrefix}
}

func (d *RedisDenylist) key(tokenID string) string {
	return d.keyPrefix + ":revoked:" + tokenID
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}
