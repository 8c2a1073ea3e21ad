// Package authenticator implements the credential authentication strategies.
//
// PasswordAuthenticator verifies a password against a stored reference hash
// through a selectable platform. MultiFactorAuthenticator composes it as
// stage 1 and adds a time-boxed one-time token stage. Both are configured per
// attempt, then driven with Initialize followed by Authenticate.
//
// Authenticators are single use and not safe for concurrent use.
package authenticator
