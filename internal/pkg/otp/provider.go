package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shandysiswandi/usercredential/internal/pkg/clock"
	"github.com/shandysiswandi/usercredential/internal/pkg/hash"
	"github.com/shandysiswandi/usercredential/internal/pkg/mfa"
)

// ErrProviderNotConfigured is returned by NewProvider when a required collaborator is missing.
var ErrProviderNotConfigured = errors.New("otp: provider not configured")

// TokenProvider is the narrow boundary the multi-factor authenticator consumes.
type TokenProvider interface {
	// TokenExists reports whether a token is enrolled for username.
	TokenExists(ctx context.Context, username string) (bool, error)
	// CreateToken enrolls username; enrolling twice returns the existing token.
	CreateToken(ctx context.Context, username string) (*Enrollment, error)
	// BindToken selects username as the active context for the next validation.
	BindToken(ctx context.Context, username string) error
	// ValidateToken checks code for a bound username. ResultValid (0) means accepted.
	ValidateToken(ctx context.Context, username, code string) (Result, error)
}

// Enrollment describes an enrolled token.
type Enrollment struct {
	Username string
	Secret   string
	URI      string
	// Created is false when the token already existed.
	Created bool
}

// ProviderConfig lists the provider's collaborators.
type ProviderConfig struct {
	TOTP      OTP
	Store     SecretStore
	Encryptor mfa.Encryptor
	Clock     clock.Clocker
	// Guard is optional; without it a code can be reused inside its window.
	Guard ReplayGuard
	// Fingerprint keys replay entries so raw codes never reach the guard.
	Fingerprint hash.Hash
}

// Provider enrolls, binds and validates per-user TOTP tokens.
//
// It is safe for concurrent use. Each BindToken pairs with one ValidateToken;
// concurrent attempts for the same username hold separate bindings and never
// consume each other's.
type Provider struct {
	totp        OTP
	store       SecretStore
	encryptor   mfa.Encryptor
	clock       clock.Clocker
	guard       ReplayGuard
	fingerprint hash.Hash

	mu    sync.Mutex
	bound map[string]*binding
}

// binding is the bound secret and the number of pending validations on it.
type binding struct {
	secret  string
	pending int
}

// NewProvider validates cfg and returns a Provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.TOTP == nil || cfg.Store == nil || cfg.Encryptor == nil || cfg.Clock == nil {
		return nil, ErrProviderNotConfigured
	}

	fp := cfg.Fingerprint
	if fp == nil {
		fp = hash.NewHMACSHA256([]byte("otp-replay"))
	}

	return &Provider{
		totp:        cfg.TOTP,
		store:       cfg.Store,
		encryptor:   cfg.Encryptor,
		clock:       cfg.Clock,
		guard:       cfg.Guard,
		fingerprint: fp,
		bound:       make(map[string]*binding),
	}, nil
}

// TokenExists implements TokenProvider.
func (p *Provider) TokenExists(ctx context.Context, username string) (bool, error) {
	_, err := p.store.Get(ctx, username)
	if errors.Is(err, ErrSecretNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("otp: lookup secret: %w", err)
	}
	return true, nil
}

// CreateToken implements TokenProvider.
func (p *Provider) CreateToken(ctx context.Context, username string) (*Enrollment, error) {
	if username == "" {
		return nil, errors.New("otp: username is required")
	}

	if enr, err := p.existing(ctx, username); err == nil {
		return enr, nil
	} else if !errors.Is(err, ErrSecretNotFound) {
		return nil, err
	}

	secret, uri, err := p.totp.Generate(username)
	if err != nil {
		return nil, fmt.Errorf("otp: generate secret: %w", err)
	}

	ct, err := p.encryptor.Encrypt([]byte(secret), scopeOf(username))
	if err != nil {
		return nil, fmt.Errorf("otp: encrypt secret: %w", err)
	}

	err = p.store.Create(ctx, username, ct)
	if errors.Is(err, ErrSecretExists) {
		// lost a concurrent enrollment; return the winner
		return p.existing(ctx, username)
	}
	if err != nil {
		return nil, fmt.Errorf("otp: store secret: %w", err)
	}

	slog.InfoContext(ctx, "otp token enrolled", "username", username)

	return &Enrollment{Username: username, Secret: secret, URI: uri, Created: true}, nil
}

// DeleteToken removes the user's enrolled token.
func (p *Provider) DeleteToken(ctx context.Context, username string) error {
	p.mu.Lock()
	delete(p.bound, username)
	p.mu.Unlock()

	if err := p.store.Delete(ctx, username); err != nil {
		return fmt.Errorf("otp: delete secret: %w", err)
	}
	return nil
}

// BindToken implements TokenProvider.
func (p *Provider) BindToken(ctx context.Context, username string) error {
	secret, err := p.secret(ctx, username)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.bound[username]
	if !ok {
		b = &binding{}
		p.bound[username] = b
	}
	b.secret = secret
	b.pending++
	return nil
}

// ValidateToken implements TokenProvider.
func (p *Provider) ValidateToken(ctx context.Context, username, code string) (Result, error) {
	secret, ok := p.release(username)
	if !ok {
		slog.WarnContext(ctx, "otp validation without binding", "username", username)
		return ResultNotBound, nil
	}

	if !p.totp.Validate(code, secret, p.clock.Now()) {
		return ResultInvalid, nil
	}

	if p.guard == nil {
		return ResultValid, nil
	}

	key, err := p.fingerprint.Hash(username + "\x00" + code)
	if err != nil {
		return ResultInvalid, fmt.Errorf("otp: fingerprint code: %w", err)
	}

	first, err := p.guard.Claim(ctx, string(key), p.totp.Window())
	if err != nil {
		return ResultInvalid, fmt.Errorf("otp: replay guard: %w", err)
	}
	if !first {
		slog.WarnContext(ctx, "otp code replayed", "username", username)
		return ResultReplayed, nil
	}

	return ResultValid, nil
}

// release consumes one pending binding for username.
func (p *Provider) release(username string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.bound[username]
	if !ok {
		return "", false
	}
	b.pending--
	if b.pending <= 0 {
		delete(p.bound, username)
	}
	return b.secret, true
}

func (p *Provider) existing(ctx context.Context, username string) (*Enrollment, error) {
	secret, err := p.secret(ctx, username)
	if err != nil {
		return nil, err
	}

	uri, err := p.totp.URI(username, secret)
	if err != nil {
		return nil, fmt.Errorf("otp: rebuild uri: %w", err)
	}

	return &Enrollment{Username: username, Secret: secret, URI: uri}, nil
}

func (p *Provider) secret(ctx context.Context, username string) (string, error) {
	ct, err := p.store.Get(ctx, username)
	if errors.Is(err, ErrSecretNotFound) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("otp: lookup secret: %w", err)
	}

	plain, err := p.encryptor.Decrypt(ct, scopeOf(username))
	if err != nil {
		return "", fmt.Errorf("otp: decrypt secret: %w", err)
	}
	return string(plain), nil
}

func scopeOf(username string) mfa.Scope {
	return mfa.Scope{Subject: username, Purpose: mfa.PurposeOTPSeed}
}
