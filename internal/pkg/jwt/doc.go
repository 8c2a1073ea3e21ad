// Package jwt is helpers for sealing typed payloads into JSON Web Tokens (JWT).
//
// It includes:
//   - A generic Claims wrapper (registered claims + strongly-typed payload).
//   - A symmetric HS512 Sealer for signing and opening tokens.
package jwt
