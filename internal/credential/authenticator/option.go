package authenticator

import (
	"crypto/rand"
	"io"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/clock"
	"github.com/shandysiswandi/usercredential/internal/pkg/hash"
	"github.com/shandysiswandi/usercredential/internal/pkg/instrument"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
	"github.com/shandysiswandi/usercredential/internal/pkg/uid"
	"github.com/shandysiswandi/usercredential/internal/pkg/validator"
)

// DefaultEncKeyLength is the stage 2 key size in bytes.
const DefaultEncKeyLength = 16

type options struct {
	platforms map[entity.Platform]PasswordPlatform
	platform  entity.Platform
	keyLength int

	random    io.Reader
	comparer  ConstantTimeComparer
	salted    hash.Salted
	clock     clock.Clocker
	tokens    otp.TokenProvider
	validator validator.Validator

	ins   instrument.Instrumentation
	audit AuditPublisher
	ids   uid.StringID
}

// Option configures an authenticator.
type Option func(*options)

func newOptions(opts ...Option) *options {
	o := &options{
		platforms: map[entity.Platform]PasswordPlatform{
			entity.PlatformNative:   NewHashPlatform(hash.NewBcrypt(0, "")),
			entity.PlatformArgon2id: NewHashPlatform(hash.NewArgon2id("")),
		},
		platform:  entity.PlatformNative,
		keyLength: DefaultEncKeyLength,
		random:    rand.Reader,
		comparer:  SubtleComparer{},
		salted:    defaultSalted,
		clock:     clock.New(),
		ins:       instrument.NewNoop(),
		ids:       uid.NewUUID(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithPlatform registers p under id, replacing any previous registration.
func WithPlatform(id entity.Platform, p PasswordPlatform) Option {
	return func(o *options) { o.platforms[id] = p }
}

// WithSelectedPlatform selects the platform used to verify passwords.
func WithSelectedPlatform(id entity.Platform) Option {
	return func(o *options) { o.platform = id }
}

// WithEncKeyLength sets the stage 2 key size. Non-positive values leave the
// length unset, which Initialize reports for multi-factor flows.
func WithEncKeyLength(n int) Option {
	return func(o *options) { o.keyLength = n }
}

// WithRandomSource replaces crypto/rand as the key source.
func WithRandomSource(r io.Reader) Option {
	return func(o *options) { o.random = r }
}

// WithComparer replaces the constant-time comparer.
func WithComparer(c ConstantTimeComparer) Option {
	return func(o *options) { o.comparer = c }
}

// WithSaltedHasher replaces the verification hash primitive. Requesters must
// use the same primitive to build the hash they send.
func WithSaltedHasher(s hash.Salted) Option {
	return func(o *options) { o.salted = s }
}

// WithClock sets the time source for the stage 2 window.
func WithClock(c clock.Clocker) Option {
	return func(o *options) { o.clock = c }
}

// WithTokenProvider sets the one-time token provider used by stage 2.
func WithTokenProvider(p otp.TokenProvider) Option {
	return func(o *options) { o.tokens = p }
}

// WithValidator validates the TOTP profile at Initialize.
func WithValidator(v validator.Validator) Option {
	return func(o *options) { o.validator = v }
}

// WithInstrumentation sets the tracer and meter source.
func WithInstrumentation(ins instrument.Instrumentation) Option {
	return func(o *options) { o.ins = ins }
}

// WithAuditPublisher emits an event after every Authenticate call.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(o *options) { o.audit = p }
}

// WithIDGenerator sets the attempt id generator.
func WithIDGenerator(g uid.StringID) Option {
	return func(o *options) { o.ids = g }
}
