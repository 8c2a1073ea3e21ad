package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/usercredential/internal/pkg/instrument"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Schema creates the table backing the secret store.
const Schema = `CREATE TABLE IF NOT EXISTS credential_otp_secrets (
	username   TEXT PRIMARY KEY,
	ciphertext BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	if ins == nil {
		ins = instrument.NewNoop()
	}
	return &DB{conn: conn, ins: ins}
}

// Migrate applies Schema. It is idempotent.
func (s *DB) Migrate(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Migrate")
	defer func() { s.endSpan(span, err) }()

	if _, err = s.conn.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}

// mapError translates driver errors into store sentinels:
// - no rows → otp.ErrSecretNotFound
// - 23505 unique violation → otp.ErrSecretExists
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return otp.ErrSecretNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return otp.ErrSecretExists
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("credential.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, otp.ErrSecretNotFound) && !errors.Is(err, otp.ErrSecretExists) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
