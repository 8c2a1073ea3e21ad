package mfa

// Purpose identifies what an encrypted blob is for.
type Purpose string

const (
	// PurposeOTPSeed scopes encryption to enrolled TOTP secrets.
	PurposeOTPSeed Purpose = "otp_seed"
)

// Scope binds a ciphertext to its owner and purpose through GCM AAD.
type Scope struct {
	// Subject is the username the secret belongs to.
	Subject string
	// Purpose is the encryption purpose.
	Purpose Purpose
}
