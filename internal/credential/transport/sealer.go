// Package transport carries the stage registry between requests as a signed token.
package transport

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/goerror"
	"github.com/shandysiswandi/usercredential/internal/pkg/jwt"
)

var errSealInvalid = goerror.NewInitialization("Sealed stage registry is invalid", goerror.CodeSealInvalid)

// Sealer binds a StageRegistry to a username in an HS512 token.
//
// A requester holding a sealed registry cannot move it to stage 2 without the
// stage 1 result, because the registry can only change through Seal.
type Sealer struct {
	jwt jwt.JWT[entity.StageRegistry]
}

// NewSealer builds a Sealer from cfg. The secret must be at least 64 bytes.
func NewSealer(cfg jwt.Config) (*Sealer, error) {
	j, err := jwt.NewHS512[entity.StageRegistry](cfg)
	if err != nil {
		return nil, err
	}
	return &Sealer{jwt: j}, nil
}

// Seal signs reg for username.
func (s *Sealer) Seal(username string, reg entity.StageRegistry) (string, error) {
	if username == "" || !reg.WellFormed() {
		return "", errSealInvalid
	}
	return s.jwt.Seal(username, reg.Clone())
}

// Open verifies token and returns the username and registry it carries.
func (s *Sealer) Open(ctx context.Context, token string) (string, entity.StageRegistry, error) {
	claims, err := s.jwt.Open(token)
	if err != nil {
		slog.WarnContext(ctx, "failed to open sealed stage registry", "error", err)
		return "", entity.StageRegistry{}, errSealInvalid
	}

	reg := claims.Payload
	if claims.Subject == "" || !reg.WellFormed() {
		return "", entity.StageRegistry{}, errSealInvalid
	}
	if reg.Current == entity.StageOTP && !reg.PasswordPassed() {
		slog.WarnContext(ctx, "sealed stage registry at stage 2 without a passed stage 1", "username", claims.Subject)
		return "", entity.StageRegistry{}, errSealInvalid
	}

	return claims.Subject, reg, nil
}
