package otp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shandysiswandi/usercredential/internal/pkg/clock"
)

var (
	// ErrSecretNotFound is returned by a SecretStore when the user has no secret.
	ErrSecretNotFound = errors.New("otp: secret not found")
	// ErrSecretExists is returned by SecretStore.Create when a secret is already stored.
	ErrSecretExists = errors.New("otp: secret already exists")
)

// SecretStore persists encrypted TOTP secrets keyed by username.
//
// Implementations must be safe for concurrent use.
type SecretStore interface {
	// Get returns the stored ciphertext or ErrSecretNotFound.
	Get(ctx context.Context, username string) ([]byte, error)
	// Create stores ciphertext if the user has none yet, else ErrSecretExists.
	Create(ctx context.Context, username string, ciphertext []byte) error
	// Delete removes the user's secret. Deleting a missing secret is not an error.
	Delete(ctx context.Context, username string) error
}

// ReplayGuard remembers accepted codes for a while.
type ReplayGuard interface {
	// Claim records key and reports whether this is its first use within ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryStore is an in-process SecretStore.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string][]byte)}
}

// Get implements SecretStore.
func (m *MemoryStore) Get(_ context.Context, username string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ct, ok := m.secrets[username]
	if !ok {
		return nil, ErrSecretNotFound
	}
	return append([]byte(nil), ct...), nil
}

// Create implements SecretStore.
func (m *MemoryStore) Create(_ context.Context, username string, ciphertext []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.secrets[username]; ok {
		return ErrSecretExists
	}
	m.secrets[username] = append([]byte(nil), ciphertext...)
	return nil
}

// Delete implements SecretStore.
func (m *MemoryStore) Delete(_ context.Context, username string) error {
	m.mu.Lock()
	delete(m.secrets, username)
	m.mu.Unlock()
	return nil
}

// MemoryReplayGuard is an in-process ReplayGuard.
type MemoryReplayGuard struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	clock clock.Clocker
}

// NewMemoryReplayGuard returns a guard that expires entries against c.
func NewMemoryReplayGuard(c clock.Clocker) *MemoryReplayGuard {
	return &MemoryReplayGuard{seen: make(map[string]time.Time), clock: c}
}

// Claim implements ReplayGuard.
func (g *MemoryReplayGuard) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := g.clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, exp := range g.seen {
		if !now.Before(exp) {
			delete(g.seen, k)
		}
	}

	if _, ok := g.seen[key]; ok {
		return false, nil
	}
	g.seen[key] = now.Add(ttl)
	return true, nil
}
