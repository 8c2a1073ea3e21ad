package entity

import (
	"bytes"
	"time"
)

// TOTPProfile is the stage 2 context rebuilt by the caller.
type TOTPProfile struct {
	EncKey           []byte    `json:"enc_key" validate:"required,min=1"`
	IssuedAt         time.Time `json:"issued_at" validate:"required"`
	TimeLimitSeconds int       `json:"time_limit_seconds" validate:"gt=0"`
}

// NewTOTPProfile builds a profile for a key issued at issuedAt and valid for limit.
func NewTOTPProfile(encKey []byte, issuedAt time.Time, limit time.Duration) TOTPProfile {
	return TOTPProfile{
		EncKey:           bytes.Clone(encKey),
		IssuedAt:         issuedAt,
		TimeLimitSeconds: int(limit / time.Second),
	}
}

// Complete reports whether every field is populated.
func (p TOTPProfile) Complete() bool {
	return len(p.EncKey) > 0 && !p.IssuedAt.IsZero() && p.TimeLimitSeconds > 0
}

// Expired reports whether the profile's window has closed at now.
//
// Elapsed time is counted in whole seconds; elapsed == limit is expired.
func (p TOTPProfile) Expired(now time.Time) bool {
	elapsed := now.Unix() - p.IssuedAt.Unix()
	return elapsed >= int64(p.TimeLimitSeconds)
}
