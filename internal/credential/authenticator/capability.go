package authenticator

import (
	"context"
	"crypto/subtle"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/hash"
)

// ConstantTimeComparer compares secrets without leaking where they differ.
type ConstantTimeComparer interface {
	Equal(a, b string) bool
}

// SubtleComparer implements ConstantTimeComparer with crypto/subtle.
type SubtleComparer struct{}

// Equal reports whether a and b are identical.
func (SubtleComparer) Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// AuditPublisher receives one event per Authenticate call.
type AuditPublisher interface {
	PublishAttempt(ctx context.Context, ev entity.AttemptEvent) error
}

// ComputeVerificationHash is the salted hash the requester sends with stage 2.
//
// It is HMAC-SHA256 keyed by encKey over referenceHash, hex encoded, and is
// the same primitive MultiFactorAuthenticator uses by default.
func ComputeVerificationHash(referenceHash string, encKey []byte) (string, error) {
	return defaultSalted.SaltedHash(referenceHash, encKey)
}

var defaultSalted hash.Salted = hash.NewHMACSHA256(nil)
