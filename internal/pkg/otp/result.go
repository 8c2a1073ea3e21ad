package otp

// Result is the outcome of ValidateToken.
//
// The zero value is ResultValid: providers report success as 0 and any
// nonzero value as a rejection.
type Result int

const (
	// ResultValid means the code was accepted.
	ResultValid Result = iota
	// ResultInvalid means the code did not match the enrolled secret.
	ResultInvalid
	// ResultNotBound means ValidateToken ran without a prior BindToken.
	ResultNotBound
	// ResultReplayed means the code was already accepted once in its window.
	ResultReplayed
)

// OK reports whether r is ResultValid.
func (r Result) OK() bool {
	return r == ResultValid
}

// String returns the string representation of the result.
func (r Result) String() string {
	switch r {
	case ResultValid:
		return "valid"
	case ResultInvalid:
		return "invalid"
	case ResultNotBound:
		return "not_bound"
	case ResultReplayed:
		return "replayed"
	default:
		return "unknown"
	}
}
