package authenticator

import (
	"context"

	"github.com/shandysiswandi/usercredential/internal/pkg/goerror"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
)

// checkToken validates the one-time token for the current username.
//
// It runs on every stage 2 attempt regardless of the time and hash checks.
func (m *MultiFactorAuthenticator) checkToken(ctx context.Context) (bool, error) {
	if m.username == "" {
		return false, goerror.NewCredential("cannot validate a TOTP token when username is not set", goerror.CodeUsernameMissing)
	}

	exists, err := m.opts.tokens.TokenExists(ctx, m.username)
	if err != nil {
		return false, goerror.NewServer(err)
	}
	if !exists {
		return false, goerror.NewCredential("the TOTP token for the current user does not exist", goerror.CodeTokenNotEnrolled)
	}

	if err := m.opts.tokens.BindToken(ctx, m.username); err != nil {
		return false, goerror.NewServer(err)
	}

	res, err := m.opts.tokens.ValidateToken(ctx, m.username, m.oneTimeToken)
	if err != nil {
		return false, goerror.NewServer(err)
	}

	return res == otp.ResultValid, nil
}
