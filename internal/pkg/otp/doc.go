// Package otp provides time-based one-time passwords (TOTP) and the token
// provider the multi-factor authenticator consumes.
//
// TOTP wraps github.com/pquerna/otp. Provider enrolls per-user secrets,
// keeps them encrypted in a SecretStore, binds a user before validation and
// reports results through the Result enum whose zero value means valid.
package otp
