package authenticator

import (
	"context"

	"github.com/shandysiswandi/usercredential/internal/pkg/hash"
)

// PasswordPlatform verifies an input password for a user.
//
// A mismatch is (false, nil). Errors are reserved for backend failures.
type PasswordPlatform interface {
	Verify(ctx context.Context, username, password, referenceHash string) (bool, error)
}

// PasswordHasher is implemented by platforms that can hash an input password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// HashPlatform adapts a hash.Hash into a PasswordPlatform.
type HashPlatform struct {
	h hash.Hash
}

// NewHashPlatform wraps h.
func NewHashPlatform(h hash.Hash) *HashPlatform {
	return &HashPlatform{h: h}
}

// Verify compares password against referenceHash.
func (p *HashPlatform) Verify(_ context.Context, _, password, referenceHash string) (bool, error) {
	return p.h.Verify(referenceHash, password), nil
}

// Hash returns a fresh encoded hash of password.
func (p *HashPlatform) Hash(password string) (string, error) {
	b, err := p.h.Hash(password)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PlatformFunc adapts an ordinary function into a PasswordPlatform.
type PlatformFunc func(ctx context.Context, username, password, referenceHash string) (bool, error)

// Verify calls f.
func (f PlatformFunc) Verify(ctx context.Context, username, password, referenceHash string) (bool, error) {
	return f(ctx, username, password, referenceHash)
}
