package app

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/usercredential/internal/credential"
	"github.com/shandysiswandi/usercredential/internal/credential/authenticator"
	"github.com/shandysiswandi/usercredential/internal/credential/transport"
	"github.com/shandysiswandi/usercredential/internal/pkg/clock"
	"github.com/shandysiswandi/usercredential/internal/pkg/config"
	"github.com/shandysiswandi/usercredential/internal/pkg/hash"
	"github.com/shandysiswandi/usercredential/internal/pkg/instrument"
	"github.com/shandysiswandi/usercredential/internal/pkg/messaging"
	"github.com/shandysiswandi/usercredential/internal/pkg/mfa"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
	"github.com/shandysiswandi/usercredential/internal/pkg/uid"
	"github.com/shandysiswandi/usercredential/internal/pkg/validator"
)

// App wires dependencies and manages their lifecycle.
type App struct {
	ctx context.Context

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator    validator.Validator
	clock        clock.Clocker
	uuid         uid.StringID
	bcrypt       hash.Hash
	argon2id     hash.Hash
	totp         *otp.TOTP
	mfaEncryptor mfa.Encryptor
	ldap         authenticator.PasswordPlatform
	sealer       *transport.Sealer

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	store     otp.SecretStore
	guard     otp.ReplayGuard
	tokens    *otp.Provider
	messaging messaging.Publisher

	credential *credential.Module

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New builds every dependency described by cfg. On failure the resources
// opened so far are released.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{ctx: ctx, config: cfg}
	app.addCloser("Config", func(context.Context) error {
		return cfg.Close()
	})

	steps := []struct {
		name string
		fn   func() error
	}{
		{"instrument", app.initInstrument},
		{"libraries", app.initLibraries},
		{"ldap", app.initLDAP},
		{"sealer", app.initSealer},
		{"otp store", app.initStore},
		{"otp provider", app.initTokens},
		{"messaging", app.initMessaging},
		{"modules", app.initModules},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			slog.ErrorContext(ctx, "failed to init application", "step", step.name, "error", err)
			app.Stop(ctx)
			return nil, err
		}
	}

	return app, nil
}

// Credential returns the authenticator factory.
func (a *App) Credential() *credential.Module { return a.credential }

// Tokens returns the OTP provider used for enrollment.
func (a *App) Tokens() *otp.Provider { return a.tokens }

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.config }

// Stop closes resources in reverse order of acquisition.
func (a *App) Stop(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		closer := a.closers[i]
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
	a.closers = nil
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, struct {
		name string
		fn   func(context.Context) error
	}{name: name, fn: fn})
}
