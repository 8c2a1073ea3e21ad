package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id implements the Hash interface using Argon2id.
type Argon2id struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
	pepper      string
}

// Argon2idOption tunes the cost parameters of an Argon2id hasher.
type Argon2idOption func(*Argon2id)

// WithArgon2idCost overrides memory (KiB), iterations and parallelism.
func WithArgon2idCost(memory, iterations uint32, parallelism uint8) Argon2idOption {
	return func(a *Argon2id) {
		a.memory = memory
		a.iterations = iterations
		a.parallelism = parallelism
	}
}

// NewArgon2id returns a Argon2id hasher with recommended defaults.
func NewArgon2id(pepper string, opts ...Argon2idOption) *Argon2id {
	a := &Argon2id{
		memory:      32 * 1024, // e.g. 32MB, 64MB, 128MB
		iterations:  3,         // time cost
		parallelism: 2,         // threads
		saltLength:  16,
		keyLength:   32,
		pepper:      pepper,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Hash takes a plaintext string and returns its PHC-encoded hash.
func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, a.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(str+a.pepper), salt, a.iterations, a.memory, a.parallelism, a.keyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.memory,
		a.iterations,
		a.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return []byte(encoded), nil
}

// Verify checks if the given plaintext string matches the encoded hash.
//
// Parameters are read back from the encoding, so hashes produced with other
// cost settings still verify.
func (a *Argon2id) Verify(hashed, str string) bool {
	if hashed == "" {
		return false
	}

	parts := strings.Split(hashed, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(str+a.pepper), salt, iterations, memory, parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(expected, computed) == 1
}
