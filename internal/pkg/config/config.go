package config

import (
	"io"
	"time"
)

// Config defines the set of methods for retrieving configuration values.
//
// Implementations handle retrieval and type conversion; a missing key yields
// the zero value or the registered default.
type Config interface {
	io.Closer

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetSecond retrieves the value for key, an integer, as seconds.
	GetSecond(key string) time.Duration

	// GetBinary retrieves the value for key as a byte slice.
	// Configuration value is stored as base64 encoded.
	GetBinary(key string) []byte

	// GetArray retrieves the value for key as a slice of strings.
	// Configuration value is stored with format <element1>,<element2>,...
	// or as a native list.
	GetArray(key string) []string

	// OnChange registers fn to run after the configuration is reloaded.
	OnChange(fn func())
}
