package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// ErrEmptySalt is returned when a salted hash is requested without a salt.
var ErrEmptySalt = errors.New("hash: salt is empty")

// HMACSHA256 implements Hash and Salted using HMAC-SHA256, hex encoded.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new hasher keyed with secret.
func NewHMACSHA256(secret []byte) *HMACSHA256 {
	return &HMACSHA256{secret: append([]byte(nil), secret...)}
}

// Hash returns the HMAC SHA-256 of str under the configured secret.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return sum(s.secret, str), nil
}

// Verify checks whether str matches the given hash.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	return subtle.ConstantTimeCompare([]byte(hashed), sum(s.secret, str)) == 1
}

// SaltedHash returns HMAC-SHA256(key=salt, msg=value), hex encoded.
//
// The configured secret is not involved, so any party holding the salt and
// the value computes the same digest.
func (s *HMACSHA256) SaltedHash(value string, salt []byte) (string, error) {
	if len(salt) == 0 {
		return "", ErrEmptySalt
	}
	return string(sum(salt, value)), nil
}

func sum(key []byte, str string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(str))
	digest := h.Sum(nil)
	out := make([]byte, hex.EncodedLen(len(digest)))
	hex.Encode(out, digest)
	return out
}
