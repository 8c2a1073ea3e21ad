// Package hash provides helpers for hashing and verifying secrets.
//
// Password platforms (bcrypt, Argon2id) are self-salting: Hash returns a new
// encoding on every call and the only valid comparison is Verify. HMACSHA256
// is deterministic and also provides the salted hash both sides of a
// multi-factor login compute over the reference credential.
package hash
