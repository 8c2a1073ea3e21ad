package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
)

// Claim implements otp.ReplayGuard with SET NX and a TTL.
func (c *Cache) Claim(ctx context.Context, key string, ttl time.Duration) (ok bool, err error) {
	ctx, span := c.startSpan(ctx, "Claim")
	defer func() { c.endSpan(span, err) }()

	ok, err = c.client.SetNX(ctx, c.replayKey(key), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache: claim replay key: %w", err)
	}
	return ok, nil
}

var _ otp.ReplayGuard = (*Cache)(nil)
