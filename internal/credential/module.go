package credential

import (
	"strings"

	"github.com/shandysiswandi/usercredential/internal/credential/authenticator"
	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/credential/outbound/mq"
	"github.com/shandysiswandi/usercredential/internal/credential/transport"
	"github.com/shandysiswandi/usercredential/internal/pkg/clock"
	"github.com/shandysiswandi/usercredential/internal/pkg/config"
	"github.com/shandysiswandi/usercredential/internal/pkg/hash"
	"github.com/shandysiswandi/usercredential/internal/pkg/instrument"
	"github.com/shandysiswandi/usercredential/internal/pkg/messaging"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
	"github.com/shandysiswandi/usercredential/internal/pkg/uid"
	"github.com/shandysiswandi/usercredential/internal/pkg/validator"
)

// DefaultMultiFactorHandler names the TOTP second factor.
const DefaultMultiFactorHandler = "totp"

type Dependency struct {
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Argon2ID   hash.Hash                  `validate:"required"`
	Tokens     otp.TokenProvider          `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`

	// LDAP registers entity.PlatformLDAP when set.
	LDAP authenticator.PasswordPlatform
	// Custom registers entity.PlatformCustom when set.
	Custom authenticator.PasswordPlatform
	// Sealer is exposed to embedders that carry the registry as a token.
	Sealer *transport.Sealer
}

// Module builds authenticators sharing one set of collaborators.
type Module struct {
	dep     Dependency
	opts    []authenticator.Option
	handler string
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	keyLength := dep.Config.GetInt("credential.enc_key_length")
	if keyLength <= 0 {
		keyLength = authenticator.DefaultEncKeyLength
	}

	// Accepts a name or a numeric id; anything else fails at Initialize.
	platform := entity.PlatformNative
	if raw := strings.ToLower(strings.TrimSpace(dep.Config.GetString("credential.platform"))); raw != "" && raw != "0" {
		platform = entity.ParsePlatform(raw)
	}

	handler := dep.Config.GetString("credential.multi_factor_handler")
	if handler == "" {
		handler = DefaultMultiFactorHandler
	}

	opts := []authenticator.Option{
		authenticator.WithPlatform(entity.PlatformNative, authenticator.NewHashPlatform(dep.Bcrypt)),
		authenticator.WithPlatform(entity.PlatformArgon2id, authenticator.NewHashPlatform(dep.Argon2ID)),
		authenticator.WithSelectedPlatform(platform),
		authenticator.WithEncKeyLength(keyLength),
		authenticator.WithClock(dep.Clock),
		authenticator.WithTokenProvider(dep.Tokens),
		authenticator.WithValidator(dep.Validator),
		authenticator.WithInstrumentation(dep.Instrument),
		authenticator.WithIDGenerator(dep.UUID),
		authenticator.WithAuditPublisher(mq.NewMessaging(dep.Messaging, dep.Instrument)),
	}
	if dep.LDAP != nil {
		opts = append(opts, authenticator.WithPlatform(entity.PlatformLDAP, dep.LDAP))
	}
	if dep.Custom != nil {
		opts = append(opts, authenticator.WithPlatform(entity.PlatformCustom, dep.Custom))
	}

	return &Module{dep: dep, opts: opts, handler: handler}, nil
}

// NewPasswordAuthenticator returns a single-stage authenticator.
func (m *Module) NewPasswordAuthenticator() *authenticator.PasswordAuthenticator {
	return authenticator.NewPasswordAuthenticator(m.opts...)
}

// NewMultiFactorAuthenticator returns a two-stage authenticator with the
// multi-factor flag on and the configured handler set.
func (m *Module) NewMultiFactorAuthenticator() *authenticator.MultiFactorAuthenticator {
	a := authenticator.NewMultiFactorAuthenticator(m.opts...)
	a.SetMultiFactor(true)
	a.SetMultiFactorHandler(m.handler)
	return a
}

// Tokens returns the one-time token provider used by stage 2.
func (m *Module) Tokens() otp.TokenProvider { return m.dep.Tokens }

// Sealer returns the registry sealer, or nil when none was configured.
func (m *Module) Sealer() *transport.Sealer { return m.dep.Sealer }
