package entity

import "bytes"

// PasswordStage is the state of stage 1.
type PasswordStage struct {
	Status bool `json:"status"`
}

// OTPStage is the state of stage 2. It exists only after stage 1 succeeds.
type OTPStage struct {
	// EncKey is the ephemeral salt issued at stage 1 success.
	EncKey []byte `json:"enc_key"`
	Status bool   `json:"status"`
}

// StageRegistry is the multi-factor progress carried by the caller between requests.
//
// It encodes as {"current": 1, "1": {"status": false}, "2": {"enc_key": "...", "status": false}}.
type StageRegistry struct {
	Current  StageID        `json:"current"`
	Password *PasswordStage `json:"1"`
	OTP      *OTPStage      `json:"2,omitempty"`
}

// NewStageRegistry returns a registry positioned at stage 1.
func NewStageRegistry() StageRegistry {
	return StageRegistry{Current: StagePassword, Password: &PasswordStage{}}
}

// WellFormed reports whether the stage 1 entry is present.
//
// It does not check Current; an unknown stage is a state problem, not a shape one.
func (r StageRegistry) WellFormed() bool {
	return r.Password != nil
}

// PasswordPassed reports whether stage 1 succeeded and issued a key.
func (r StageRegistry) PasswordPassed() bool {
	return r.Password != nil && r.Password.Status && r.OTP != nil && len(r.OTP.EncKey) > 0
}

// Advance moves the registry to stage 2 once stage 1 has passed.
func (r *StageRegistry) Advance() bool {
	if r.Current != StagePassword || !r.PasswordPassed() {
		return false
	}
	r.Current = StageOTP
	return true
}

// Clone returns a deep copy.
func (r StageRegistry) Clone() StageRegistry {
	out := StageRegistry{Current: r.Current}
	if r.Password != nil {
		p := *r.Password
		out.Password = &p
	}
	if r.OTP != nil {
		out.OTP = &OTPStage{EncKey: bytes.Clone(r.OTP.EncKey), Status: r.OTP.Status}
	}
	return out
}

// EncKey returns the stage 2 key, or nil before stage 1 succeeded.
func (r StageRegistry) EncKey() []byte {
	if r.OTP == nil {
		return nil
	}
	return r.OTP.EncKey
}
