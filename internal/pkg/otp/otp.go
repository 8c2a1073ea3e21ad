package otp

import (
	"encoding/base32"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Generate creates a secret and provisioning URI for an account name.
	Generate(accountName string) (secret string, uri string, err error)
	// URI rebuilds the provisioning URI of an existing secret.
	URI(accountName, secret string) (string, error)
	// Validate checks whether a code is valid at the given time.
	Validate(code, secret string, at time.Time) bool
	// GenerateCode creates a TOTP code for the given secret and time.
	GenerateCode(secret string, at time.Time) (string, error)
	// Window is how long a single code can be accepted, skew included.
	Window() time.Duration
}

// TOTP implements OTP using the Time-based One-Time Password algorithm.
type TOTP struct {
	issuer string
	period uint
	skew   uint
	digits otp.Digits
}

var b32NoPadding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewTOTP constructs a TOTP instance with sensible defaults.
//
// If digits is not 6 or 8, it falls back to 6 digits. If period is 0, it uses
// the common 30-second period. A zero skew accepts only the current step.
func NewTOTP(issuer string, period, skew uint, digits otp.Digits) *TOTP {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	if period == 0 {
		period = 30
	}

	return &TOTP{
		issuer: issuer,
		period: period,
		skew:   skew,
		digits: digits,
	}
}

// Generate creates a secret and provisioning URI for an account name.
func (o *TOTP) Generate(accountName string) (secret string, uri string, err error) {
	key, err := totp.Generate(o.generateOpts(accountName, nil))
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

// URI rebuilds the provisioning URI for an already generated secret.
func (o *TOTP) URI(accountName, secret string) (string, error) {
	raw, err := b32NoPadding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("otp: decode secret: %w", err)
	}

	key, err := totp.Generate(o.generateOpts(accountName, raw))
	if err != nil {
		return "", err
	}

	return key.URL(), nil
}

// Validate checks whether a code is valid at the given time.
func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	rv, err := totp.ValidateCustom(code, secret, at, o.validateOpts())
	return rv && err == nil
}

// GenerateCode creates a TOTP code for the given secret and time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, o.validateOpts())
}

// Window returns period * (2*skew + 1).
func (o *TOTP) Window() time.Duration {
	return time.Duration(o.period*(2*o.skew+1)) * time.Second
}

func (o *TOTP) generateOpts(accountName string, secret []byte) totp.GenerateOpts {
	return totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: accountName,
		Period:      o.period,
		SecretSize:  20, // RFC 4226/6238 recommendation
		Secret:      secret,
		Digits:      o.digits,
		Algorithm:   otp.AlgorithmSHA1,
	}
}

func (o *TOTP) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    o.period,
		Skew:      o.skew,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}
