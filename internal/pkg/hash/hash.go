package hash

// Hash hashes plaintext and verifies plaintext against a stored hash.
type Hash interface {
	// Hash returns the encoded hash of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether str matches hashed.
	Verify(hashed, str string) bool
}

// Salted computes a deterministic hash of value keyed by a caller-provided salt.
type Salted interface {
	SaltedHash(value string, salt []byte) (string, error)
}
