package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
)

const (
	fieldCiphertext = "ciphertext"
	fieldCreatedAt  = "created_at"
)

// Get implements otp.SecretStore.
func (c *Cache) Get(ctx context.Context, username string) (ct []byte, err error) {
	ctx, span := c.startSpan(ctx, "Get")
	defer func() { c.endSpan(span, err) }()

	ct, err = c.client.HGet(ctx, c.secretKey(username), fieldCiphertext).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, otp.ErrSecretNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get secret: %w", err)
	}
	return ct, nil
}

// Create implements otp.SecretStore. HSETNX makes the first writer win and
// both fields land in one MULTI.
func (c *Cache) Create(ctx context.Context, username string, ciphertext []byte) (err error) {
	ctx, span := c.startSpan(ctx, "Create")
	defer func() { c.endSpan(span, err) }()

	key := c.secretKey(username)
	stamp := c.clock.Now().UTC().Format(time.RFC3339)

	var created *redis.BoolCmd
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.HSetNX(ctx, key, fieldCiphertext, ciphertext)
		pipe.HSetNX(ctx, key, fieldCreatedAt, stamp)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: create secret: %w", err)
	}
	if !created.Val() {
		return otp.ErrSecretExists
	}
	return nil
}

var _ otp.SecretStore = (*Cache)(nil)
