package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

// Type classifies errors into the high-level buckets callers branch on.
type Type int

const (
	// TypeServer represents infrastructure failures (store, directory, broker).
	TypeServer Type = iota
	// TypeInitialization represents missing or malformed inputs for the current stage.
	TypeInitialization
	// TypeState represents a stage registry in an unsupported state.
	TypeState
	// TypeCredential represents an unusable credential context (no username, no enrolled token).
	TypeCredential
)

// String returns the string representation of the error type.
func (t Type) String() string {
	switch t {
	case TypeInitialization:
		return "ERROR_TYPE_INITIALIZATION"
	case TypeState:
		return "ERROR_TYPE_STATE"
	case TypeCredential:
		return "ERROR_TYPE_CREDENTIAL"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable, machine-readable error identifier.
type Code int

const (
	// CodeInternal represents an infrastructure or unspecified error.
	CodeInternal Code = 1

	// CodeNotInitialized is returned when none of username, reference hash or input password is set.
	CodeNotInitialized Code = 2000
	// CodeUnknownPlatform is returned when the password platform selector is not registered.
	CodeUnknownPlatform Code = 2001

	// CodeStagesMalformed is returned when the stage registry or key length is not set up.
	CodeStagesMalformed Code = 2100
	// CodeUnknownStage is returned when the current stage is neither 1 nor 2.
	CodeUnknownStage Code = 2101
	// CodeTOTPProfileInvalid is returned when stage 2 inputs are incomplete.
	CodeTOTPProfileInvalid Code = 2102
	// CodeKeyLengthInvalid is returned when a non-positive enc key length is configured.
	CodeKeyLengthInvalid Code = 2105
	// CodeUsernameMissing is returned when a token check runs without a username.
	CodeUsernameMissing Code = 2106
	// CodeTokenNotEnrolled is returned when no OTP token exists for the username.
	CodeTokenNotEnrolled Code = 2107
	// CodeSealInvalid is returned when a sealed stage registry cannot be opened.
	CodeSealInvalid Code = 2108
)

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeNotInitialized:
		return "ERROR_CODE_NOT_INITIALIZED"
	case CodeUnknownPlatform:
		return "ERROR_CODE_UNKNOWN_PLATFORM"
	case CodeStagesMalformed:
		return "ERROR_CODE_STAGES_MALFORMED"
	case CodeUnknownStage:
		return "ERROR_CODE_UNKNOWN_STAGE"
	case CodeTOTPProfileInvalid:
		return "ERROR_CODE_TOTP_PROFILE_INVALID"
	case CodeKeyLengthInvalid:
		return "ERROR_CODE_KEY_LENGTH_INVALID"
	case CodeUsernameMissing:
		return "ERROR_CODE_USERNAME_MISSING"
	case CodeTokenNotEnrolled:
		return "ERROR_CODE_TOKEN_NOT_ENROLLED"
	case CodeSealInvalid:
		return "ERROR_CODE_SEAL_INVALID"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error is the structured error returned by the authenticators.
//
// It can wrap an underlying error while also carrying a user-facing message,
// a high-level type, and a stable error code.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}

	if e.err != nil {
		return e.err.Error()
	}

	return "Unknown error"
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Code: %s(%d), Message: %s, Underlying Error: %v",
		e.errType.String(),
		e.code.String(),
		int(e.code),
		e.msg,
		e.err,
	)
}

// Msg returns the user-facing error message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error type to an HTTP status code for embedding services.
func (e *Error) StatusCode() int {
	switch e.errType {
	case TypeInitialization:
		return http.StatusBadRequest
	case TypeState:
		return http.StatusConflict
	case TypeCredential:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func new(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer wraps an infrastructure failure.
func NewServer(err error) error {
	return new(err, "Internal server error", TypeServer, CodeInternal)
}

// NewInitialization reports missing or malformed inputs for the current stage.
func NewInitialization(msg string, code Code) error {
	return new(nil, msg, TypeInitialization, code)
}

// NewState reports a stage registry in an unknown state.
func NewState(msg string, code Code) error {
	return new(nil, msg, TypeState, code)
}

// NewCredential reports a credential context that cannot be checked.
func NewCredential(msg string, code Code) error {
	return new(nil, msg, TypeCredential, code)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the stable code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.code
	}
	return CodeInternal
}

// IsInitialization reports whether err is an initialization error.
func IsInitialization(err error) bool {
	e, ok := As(err)
	return ok && e.errType == TypeInitialization
}

// IsState reports whether err is a state error.
func IsState(err error) bool {
	e, ok := As(err)
	return ok && e.errType == TypeState
}

// IsCredential reports whether err is a credential error.
func IsCredential(err error) bool {
	e, ok := As(err)
	return ok && e.errType == TypeCredential
}
