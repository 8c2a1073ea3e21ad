package db

import (
	"context"

	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
)

const (
	queryGetSecret    = `SELECT ciphertext FROM credential_otp_secrets WHERE username = $1`
	queryCreateSecret = `INSERT INTO credential_otp_secrets (username, ciphertext) VALUES ($1, $2)`
	queryDeleteSecret = `DELETE FROM credential_otp_secrets WHERE username = $1`
)

func (s *DB) Get(ctx context.Context, username string) (_ []byte, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	var ct []byte
	if err = s.conn.QueryRow(ctx, queryGetSecret, username).Scan(&ct); err != nil {
		return nil, s.mapError(err)
	}

	return ct, nil
}

func (s *DB) Create(ctx context.Context, username string, ciphertext []byte) (err error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateSecret, username, ciphertext)
	err = s.mapError(err)
	return err
}

func (s *DB) Delete(ctx context.Context, username string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryDeleteSecret, username)
	err = s.mapError(err)
	return err
}

var _ otp.SecretStore = (*DB)(nil)
