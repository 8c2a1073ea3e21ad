package app

import (
	"github.com/shandysiswandi/usercredential/internal/pkg/config"
)

// EnvPrefix prefixes environment overrides, e.g. USERCREDENTIAL_OTP_STORE.
const EnvPrefix = "USERCREDENTIAL"

const (
	storeMemory   = "memory"
	storeRedis    = "redis"
	storePostgres = "postgres"
)

// Defaults are applied beneath the config file and environment.
var Defaults = map[string]any{
	"credential.enc_key_length":       16,
	"credential.platform":             "native",
	"credential.multi_factor_handler": "totp",

	"hash.bcrypt.cost":       12,
	"hash.bcrypt.pepper":     "",
	"hash.argon2id.pepper":   "",
	"ldap.start_tls":         false,
	"ldap.timeout_seconds":   10,
	"otp.issuer":             "usercredential",
	"otp.period":             30,
	"otp.skew":               1,
	"otp.store":              storeMemory,
	"otp.replay_guard":       true,
	"transport.issuer":       "usercredential",
	"transport.ttl_seconds":  300,
	"audit.driver":           "",
	"retry.max_attempts":     5,

	"instrument.enabled":                 false,
	"instrument.service_name":            "usercredential",
	"instrument.trace_sample_ratio":      1.0,
	"instrument.metric_interval_seconds": 60,
}

// Load reads the config file at path with Defaults and environment overrides.
func Load(path string) (config.Config, error) {
	return config.NewViper(path, config.WithDefaults(Defaults), config.WithEnvPrefix(EnvPrefix))
}
