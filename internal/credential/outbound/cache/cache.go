package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/usercredential/internal/pkg/clock"
	"github.com/shandysiswandi/usercredential/internal/pkg/instrument"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultPrefix = "credential:"

// Cache stores OTP secrets and replay markers in Redis.
type Cache struct {
	client redis.UniversalClient
	ins    instrument.Instrumentation
	clock  clock.Clocker
	prefix string
}

// NewCache returns a Redis-backed store. An empty prefix selects "credential:".
func NewCache(client redis.UniversalClient, ins instrument.Instrumentation, clk clock.Clocker, prefix string) *Cache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if ins == nil {
		ins = instrument.NewNoop()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Cache{client: client, ins: ins, clock: clk, prefix: prefix}
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("credential.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, otp.ErrSecretNotFound) && !errors.Is(err, otp.ErrSecretExists) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Cache) secretKey(username string) string {
	return c.prefix + "otp:secret:" + username
}

func (c *Cache) replayKey(key string) string {
	return c.prefix + "otp:replay:" + key
}
