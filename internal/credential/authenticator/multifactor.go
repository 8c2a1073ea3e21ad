package authenticator

import (
	"bytes"
	"context"
	"io"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/goerror"
)

// MultiFactorAuthenticator runs password verification as stage 1 and a
// time-boxed one-time token check as stage 2.
//
// With the multi-factor flag off it behaves exactly like the embedded
// PasswordAuthenticator.
type MultiFactorAuthenticator struct {
	*PasswordAuthenticator

	profile          entity.TOTPProfile
	verificationHash string
	oneTimeToken     string
}

// NewMultiFactorAuthenticator returns a two-stage authenticator.
func NewMultiFactorAuthenticator(opts ...Option) *MultiFactorAuthenticator {
	return &MultiFactorAuthenticator{PasswordAuthenticator: newPasswordAuthenticator(newOptions(opts...))}
}

// SetEncKeyLength sets the stage 2 key size in bytes.
func (m *MultiFactorAuthenticator) SetEncKeyLength(n int) error {
	if n <= 0 {
		return goerror.NewInitialization("the encryption key length must be a positive integer", goerror.CodeKeyLengthInvalid)
	}
	m.opts.keyLength = n
	return nil
}

func (m *MultiFactorAuthenticator) EncKeyLength() int { return m.opts.keyLength }

// SetUserTOTPProfile sets the stage 2 context rebuilt by the caller.
func (m *MultiFactorAuthenticator) SetUserTOTPProfile(p entity.TOTPProfile) {
	p.EncKey = bytes.Clone(p.EncKey)
	m.profile = p
}

func (m *MultiFactorAuthenticator) UserTOTPProfile() entity.TOTPProfile { return m.profile }

// SetVerificationHash sets the requester's salted hash of the reference credential.
func (m *MultiFactorAuthenticator) SetVerificationHash(h string) { m.verificationHash = h }

func (m *MultiFactorAuthenticator) VerificationHash() string { return m.verificationHash }

// SetOneTimeToken sets the code the user typed.
func (m *MultiFactorAuthenticator) SetOneTimeToken(token string) { m.oneTimeToken = token }

func (m *MultiFactorAuthenticator) OneTimeToken() string { return m.oneTimeToken }

// Initialize checks the preconditions of the registry's current stage.
func (m *MultiFactorAuthenticator) Initialize() error {
	if !m.multiFactor {
		return m.PasswordAuthenticator.Initialize()
	}

	if !m.stages.WellFormed() || m.opts.keyLength <= 0 {
		return goerror.NewInitialization("the multi factor stages register is initialized with an unknown state", goerror.CodeStagesMalformed)
	}

	if !m.stages.Current.IsKnown() {
		return errUnknownStage()
	}

	switch m.stages.Current {
	case entity.StagePassword:
		m.stages.Password.Status = false
		m.stages.OTP = nil
		return m.PasswordAuthenticator.Initialize()
	case entity.StageOTP:
		if !m.profileValid() || m.verificationHash == "" || m.oneTimeToken == "" || m.opts.tokens == nil {
			return goerror.NewInitialization("the user TOTP profile is not initialized properly", goerror.CodeTOTPProfileInvalid)
		}
	}
	return nil
}

// Authenticate runs the current stage.
//
// Stage 1 returns the full registry; on success it carries a fresh enc_key in
// stage 2 and the status is StatusNextStage. Stage 2 succeeds only when the
// window is open, the verification hash matches and the token is valid, and
// never reveals which check failed.
func (m *MultiFactorAuthenticator) Authenticate(ctx context.Context) (Outcome, error) {
	if !m.multiFactor {
		return m.PasswordAuthenticator.Authenticate(ctx)
	}
	if !m.stages.WellFormed() {
		return Outcome{Status: entity.StatusFail}, goerror.NewInitialization("the multi factor stages register is initialized with an unknown state", goerror.CodeStagesMalformed)
	}

	if !m.stages.Current.IsKnown() {
		return Outcome{Status: entity.StatusFail}, errUnknownStage()
	}

	if m.stages.Current == entity.StagePassword {
		return m.authenticatePassword(ctx)
	}
	return m.authenticateToken(ctx)
}

func (m *MultiFactorAuthenticator) authenticatePassword(ctx context.Context) (Outcome, error) {
	at := m.rec.begin(ctx, entity.StagePassword, m.username, m.opts.platform)

	ok, err := m.verify(at.ctx)
	if err != nil {
		m.rec.end(at, entity.StatusFail, err)
		return Outcome{Status: entity.StatusFail}, err
	}

	// Stage 2 exists only after a successful stage 1.
	m.stages.Password.Status = ok
	m.stages.OTP = nil
	status := entity.StatusFail
	if ok {
		key := make([]byte, m.opts.keyLength)
		if _, err := io.ReadFull(m.opts.random, key); err != nil {
			m.stages.Password.Status = false
			err = goerror.NewServer(err)
			m.rec.end(at, entity.StatusFail, err)
			return Outcome{Status: entity.StatusFail}, err
		}
		m.stages.OTP = &entity.OTPStage{EncKey: key}
		status = entity.StatusNextStage
	}
	m.rec.end(at, status, nil)

	reg := m.stages.Clone()
	return Outcome{Status: status, Stages: &reg}, nil
}

func (m *MultiFactorAuthenticator) authenticateToken(ctx context.Context) (Outcome, error) {
	at := m.rec.begin(ctx, entity.StageOTP, m.username, m.opts.platform)

	expired := m.profile.Expired(m.opts.clock.Now())

	comparison, err := m.opts.salted.SaltedHash(m.referenceHash, m.profile.EncKey)
	if err != nil {
		err = goerror.NewServer(err)
		m.rec.end(at, entity.StatusFail, err)
		return Outcome{Status: entity.StatusFail}, err
	}
	match := m.opts.comparer.Equal(m.verificationHash, comparison)

	tokenValid, err := m.checkToken(at.ctx)
	if err != nil {
		m.rec.end(at, entity.StatusFail, err)
		return Outcome{Status: entity.StatusFail}, err
	}

	status := entity.StatusFail
	if !expired && match && tokenValid {
		status = entity.StatusSuccess
	}
	if m.stages.OTP != nil {
		m.stages.OTP.Status = status == entity.StatusSuccess
	}
	m.rec.end(at, status, nil)

	return Outcome{Status: status}, nil
}

func (m *MultiFactorAuthenticator) profileValid() bool {
	if m.opts.validator != nil {
		return m.opts.validator.Validate(m.profile) == nil
	}
	return m.profile.Complete()
}

func errUnknownStage() error {
	return goerror.NewState("the current stage of the multi factor auth process is in an unknown state", goerror.CodeUnknownStage)
}
