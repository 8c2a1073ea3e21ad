package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("usercredential"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestMapError(t *testing.T) {
	s := NewDB(nil, nil)

	assert.NoError(t, s.mapError(nil))
	assert.ErrorIs(t, s.mapError(pgx.ErrNoRows), otp.ErrSecretNotFound)
	assert.ErrorIs(t, s.mapError(&pgconn.PgError{Code: "23505"}), otp.ErrSecretExists)

	other := errors.New("conn closed")
	assert.ErrorIs(t, s.mapError(other), other)
}

func TestDBSecretStore(t *testing.T) {
	ctx := context.Background()
	s := NewDB(newPostgres(t), nil)

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))

	_, err := s.Get(ctx, "alice")
	assert.ErrorIs(t, err, otp.ErrSecretNotFound)

	require.NoError(t, s.Create(ctx, "alice", []byte{9, 8, 7}))
	assert.ErrorIs(t, s.Create(ctx, "alice", []byte{1}), otp.ErrSecretExists)

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7}, got)

	require.NoError(t, s.Delete(ctx, "alice"))
	_, err = s.Get(ctx, "alice")
	assert.ErrorIs(t, err, otp.ErrSecretNotFound)

	t.Run("ConcurrentCreate", func(t *testing.T) {
		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 8 {
			wg.Go(func() {
				if s.Create(ctx, "bob", []byte("ct")) == nil {
					wins.Add(1)
				}
			})
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}
