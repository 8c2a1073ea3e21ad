// Package validator provides a small validation abstraction for domain and
// dependency structs.
//
// Types that arrive from a caller (a TOTP profile rebuilt from a request, a
// module's dependency set) are checked once at construction through the
// Validator interface. The go-playground/validator v10 implementation lives
// in this package.
package validator
