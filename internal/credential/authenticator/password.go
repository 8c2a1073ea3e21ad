package authenticator

import (
	"context"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/goerror"
)

// PasswordAuthenticator verifies an input password against a stored reference
// hash using the selected platform.
type PasswordAuthenticator struct {
	usePassword   bool
	multiFactor   bool
	inputPassword string
	username      string
	referenceHash string
	handler       string
	stages        entity.StageRegistry

	opts *options
	rec  *recorder
}

// NewPasswordAuthenticator returns a password-only authenticator.
func NewPasswordAuthenticator(opts ...Option) *PasswordAuthenticator {
	return newPasswordAuthenticator(newOptions(opts...))
}

func newPasswordAuthenticator(o *options) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		usePassword: true,
		opts:        o,
		rec:         newRecorder(o),
	}
}

func (a *PasswordAuthenticator) SetUsePassword(flag bool) { a.usePassword = flag }

func (a *PasswordAuthenticator) UsePassword() bool { return a.usePassword }

func (a *PasswordAuthenticator) SetPassword(password string) { a.inputPassword = password }

// Password returns the raw input when unhashed, otherwise a fresh hash from
// the selected platform, falling back to bcrypt for platforms that cannot hash.
func (a *PasswordAuthenticator) Password(unhashed bool) (string, error) {
	if unhashed {
		return a.inputPassword, nil
	}

	hasher, ok := a.opts.platforms[a.opts.platform].(PasswordHasher)
	if !ok {
		hasher, _ = a.opts.platforms[entity.PlatformNative].(PasswordHasher)
	}
	if hasher == nil {
		return "", goerror.NewInitialization("no password hasher is registered", goerror.CodeUnknownPlatform)
	}

	hashed, err := hasher.Hash(a.inputPassword)
	if err != nil {
		return "", goerror.NewServer(err)
	}
	return hashed, nil
}

func (a *PasswordAuthenticator) SetMultiFactor(flag bool) { a.multiFactor = flag }

func (a *PasswordAuthenticator) MultiFactor() bool { return a.multiFactor }

func (a *PasswordAuthenticator) SetMultiFactorHandler(handler string) { a.handler = handler }

func (a *PasswordAuthenticator) MultiFactorHandler() string { return a.handler }

// SetMultiFactorStages stores a copy of stages.
func (a *PasswordAuthenticator) SetMultiFactorStages(stages entity.StageRegistry) {
	a.stages = stages.Clone()
}

// MultiFactorStages returns a copy of the current registry.
func (a *PasswordAuthenticator) MultiFactorStages() entity.StageRegistry {
	return a.stages.Clone()
}

func (a *PasswordAuthenticator) SetCurrentUsername(username string) { a.username = username }

func (a *PasswordAuthenticator) CurrentUsername() string { return a.username }

func (a *PasswordAuthenticator) SetCurrentPassword(hash string) { a.referenceHash = hash }

func (a *PasswordAuthenticator) CurrentPassword() string { return a.referenceHash }

// SetPlatform selects the verifying platform for this attempt.
func (a *PasswordAuthenticator) SetPlatform(id entity.Platform) { a.opts.platform = id }

func (a *PasswordAuthenticator) Platform() entity.Platform { return a.opts.platform }

// Initialize requires at least one of username, reference hash or input
// password, and a registered platform.
func (a *PasswordAuthenticator) Initialize() error {
	if a.inputPassword == "" && a.username == "" && a.referenceHash == "" {
		return goerror.NewInitialization("credential login is not initialized with all parameters", goerror.CodeNotInitialized)
	}
	if _, ok := a.opts.platforms[a.opts.platform]; !ok {
		return goerror.NewInitialization("password platform "+a.opts.platform.String()+" is not registered", goerror.CodeUnknownPlatform)
	}
	return nil
}

// Authenticate verifies the input password with the selected platform.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context) (Outcome, error) {
	at := a.rec.begin(ctx, entity.StagePassword, a.username, a.opts.platform)

	ok, err := a.verify(at.ctx)
	status := entity.StatusFail
	if ok {
		status = entity.StatusSuccess
	}
	a.rec.end(at, status, err)

	if err != nil {
		return Outcome{Status: entity.StatusFail}, err
	}
	return Outcome{Status: status}, nil
}

func (a *PasswordAuthenticator) verify(ctx context.Context) (bool, error) {
	p, ok := a.opts.platforms[a.opts.platform]
	if !ok {
		return false, goerror.NewInitialization("password platform "+a.opts.platform.String()+" is not registered", goerror.CodeUnknownPlatform)
	}

	match, err := p.Verify(ctx, a.username, a.inputPassword, a.referenceHash)
	if err != nil {
		return false, goerror.NewServer(err)
	}
	return match, nil
}
