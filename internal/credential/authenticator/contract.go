package authenticator

import (
	"context"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
)

// CredentialAuthenticator is the operation set every login strategy exposes.
//
// Initialize must succeed before Authenticate is called.
type CredentialAuthenticator interface {
	SetUsePassword(flag bool)
	UsePassword() bool

	// SetPassword sets the plaintext input password.
	SetPassword(password string)
	// Password returns the input password when unhashed is true, otherwise a
	// fresh hash of it. Self-salting platforms return a different hash on every
	// call; compare through the platform's verify, never by string equality.
	Password(unhashed bool) (string, error)

	SetMultiFactor(flag bool)
	MultiFactor() bool

	SetMultiFactorHandler(handler string)
	MultiFactorHandler() string

	SetMultiFactorStages(stages entity.StageRegistry)
	MultiFactorStages() entity.StageRegistry

	// Initialize checks the preconditions of the current stage.
	Initialize() error
	// Authenticate runs the current stage. Rejected credentials are reported
	// through the Outcome, never as an error.
	Authenticate(ctx context.Context) (Outcome, error)

	SetCurrentUsername(username string)
	CurrentUsername() string

	// SetCurrentPassword sets the stored reference hash.
	SetCurrentPassword(hash string)
	CurrentPassword() string
}

// Outcome is the result of one Authenticate call.
type Outcome struct {
	Status entity.Status
	// Stages is the full registry after a multi-factor stage 1 call, nil otherwise.
	Stages *entity.StageRegistry
}

// Authenticated reports whether the whole flow succeeded.
func (o Outcome) Authenticated() bool {
	return o.Status == entity.StatusSuccess
}

var (
	_ CredentialAuthenticator = (*PasswordAuthenticator)(nil)
	_ CredentialAuthenticator = (*MultiFactorAuthenticator)(nil)
)
