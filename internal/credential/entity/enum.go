package entity

import "strconv"

// StageID identifies a step of the multi-factor flow.
type StageID int

const (
	// StagePassword is the password verification step.
	StagePassword StageID = 1

	// StageOTP is the one-time token verification step.
	StageOTP StageID = 2
)

func (s StageID) String() string {
	switch s {
	case StagePassword:
		return "password"
	case StageOTP:
		return "otp"
	default:
		return "stage_" + strconv.Itoa(int(s))
	}
}

// IsKnown reports whether s is a stage the engine can run.
func (s StageID) IsKnown() bool {
	return s == StagePassword || s == StageOTP
}

// Platform selects the backend that verifies passwords.
type Platform int

const (
	// PlatformUnknown is the zero value and never valid.
	PlatformUnknown Platform = 0

	// PlatformNative verifies bcrypt reference hashes.
	PlatformNative Platform = 1

	// PlatformArgon2id verifies Argon2id PHC reference hashes.
	PlatformArgon2id Platform = 2

	// PlatformLDAP binds against a directory with the input password.
	PlatformLDAP Platform = 3

	// PlatformCustom delegates to a caller-registered verifier.
	PlatformCustom Platform = 4
)

func (p Platform) String() string {
	switch p {
	case PlatformNative:
		return "native"
	case PlatformArgon2id:
		return "argon2id"
	case PlatformLDAP:
		return "ldap"
	case PlatformCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParsePlatform maps a name or numeric id to a Platform.
func ParsePlatform(raw string) Platform {
	if n, err := strconv.Atoi(raw); err == nil {
		p := Platform(n)
		if p.String() == "unknown" {
			return PlatformUnknown
		}
		return p
	}

	for _, p := range []Platform{PlatformNative, PlatformArgon2id, PlatformLDAP, PlatformCustom} {
		if p.String() == raw {
			return p
		}
	}
	return PlatformUnknown
}

// Status is the per-call result of Authenticate.
type Status int

const (
	// StatusFail means the credentials were rejected.
	StatusFail Status = iota

	// StatusNextStage means the current stage passed and another one follows.
	StatusNextStage

	// StatusSuccess means the flow is complete and the user is authenticated.
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusNextStage:
		return "next_stage"
	case StatusSuccess:
		return "success"
	default:
		return "fail"
	}
}
