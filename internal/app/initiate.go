package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	libOTP "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/usercredential/internal/credential/authenticator"
	"github.com/shandysiswandi/usercredential/internal/credential/outbound/cache"
	"github.com/shandysiswandi/usercredential/internal/credential/outbound/db"
	"github.com/shandysiswandi/usercredential/internal/credential/transport"
	"github.com/shandysiswandi/usercredential/internal/pkg/clock"
	"github.com/shandysiswandi/usercredential/internal/pkg/hash"
	"github.com/shandysiswandi/usercredential/internal/pkg/instrument"
	"github.com/shandysiswandi/usercredential/internal/pkg/jwt"
	"github.com/shandysiswandi/usercredential/internal/pkg/messaging"
	"github.com/shandysiswandi/usercredential/internal/pkg/mfa"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
	"github.com/shandysiswandi/usercredential/internal/pkg/uid"
	"github.com/shandysiswandi/usercredential/internal/pkg/validator"
)

var (
	// ErrInvalidOTPSecret is returned when otp.secret is not a base64 32-byte key.
	ErrInvalidOTPSecret = errors.New("app: otp.secret must be a base64 encoded 32-byte key")
	// ErrUnknownStore is returned for an unsupported otp.store value.
	ErrUnknownStore = errors.New("app: unknown otp store")
)

func (a *App) initInstrument() error {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		return err
	}

	a.ins = ins
	a.addCloser("Instrument", ins.Shutdown)
	return nil
}

func (a *App) initLibraries() error {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.bcrypt = hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper"))
	a.argon2id = hash.NewArgon2id(a.config.GetString("hash.argon2id.pepper"))

	v, err := validator.NewV10Validator()
	if err != nil {
		return err
	}
	a.validator = v

	a.totp = otp.NewTOTP(
		a.config.GetString("otp.issuer"),
		uint(max(a.config.GetInt("otp.period"), 0)),
		uint(max(a.config.GetInt("otp.skew"), 0)),
		libOTP.DigitsSix,
	)

	rawKey := a.config.GetBinary("otp.secret")
	if len(rawKey) != 32 {
		return ErrInvalidOTPSecret
	}
	a.mfaEncryptor = mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: rawKey})

	return nil
}

func (a *App) initLDAP() error {
	url := strings.TrimSpace(a.config.GetString("ldap.url"))
	if url == "" {
		return nil
	}

	p, err := authenticator.NewLDAPPlatform(authenticator.LDAPConfig{
		URL:            url,
		UserDNTemplate: a.config.GetString("ldap.user_dn_template"),
		StartTLS:       a.config.GetBool("ldap.start_tls"),
		Timeout:        a.config.GetSecond("ldap.timeout_seconds"),
	})
	if err != nil {
		return err
	}

	a.ldap = p
	return nil
}

func (a *App) initSealer() error {
	secret := a.config.GetString("transport.secret")
	if secret == "" {
		return nil
	}

	s, err := transport.NewSealer(jwt.Config{
		Secret:    []byte(secret),
		Issuer:    a.config.GetString("transport.issuer"),
		Audiences: a.config.GetArray("transport.audiences"),
		TTL:       a.config.GetSecond("transport.ttl_seconds"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		return err
	}

	a.sealer = s
	return nil
}

func (a *App) initStore() error {
	driver := strings.ToLower(strings.TrimSpace(a.config.GetString("otp.store")))

	switch driver {
	case storeMemory, "":
		a.store = otp.NewMemoryStore()
	case storeRedis:
		if err := a.initCache(); err != nil {
			return err
		}
		a.store = cache.NewCache(a.cacheConn, a.ins, a.clock, a.config.GetString("redis.prefix"))
	case storePostgres:
		if err := a.initDatabase(); err != nil {
			return err
		}
		store := db.NewDB(a.dbConn, a.ins)
		if err := store.Migrate(a.ctx); err != nil {
			return err
		}
		a.store = store
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStore, driver)
	}

	if !a.config.GetBool("otp.replay_guard") {
		return nil
	}
	if a.cacheConn == nil && strings.TrimSpace(a.config.GetString("redis.url")) != "" {
		if err := a.initCache(); err != nil {
			return err
		}
	}
	if a.cacheConn != nil {
		a.guard = cache.NewCache(a.cacheConn, a.ins, a.clock, a.config.GetString("redis.prefix"))
	} else {
		a.guard = otp.NewMemoryReplayGuard(a.clock)
	}

	return nil
}

func (a *App) initDatabase() error {
	cfg, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}

	if v := a.config.GetInt("database.pool.max_conns"); v > 0 {
		cfg.MaxConns = int32(min(v, 1<<15))
	}
	if v := a.config.GetSecond("database.pool.max_conn_idle_seconds"); v > 0 {
		cfg.MaxConnIdleTime = v
	}

	pool, err := pgxpool.NewWithConfig(a.ctx, cfg)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	a.addCloser("Database", func(context.Context) error {
		pool.Close()
		return nil
	})

	if err := a.waitReady("database", pool.Ping); err != nil {
		return err
	}

	a.dbConn = pool
	return nil
}

func (a *App) initCache() error {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	a.addCloser("Redis", func(context.Context) error {
		return rdb.Close()
	})

	if err := a.waitReady("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		return err
	}

	a.cacheConn = rdb
	return nil
}

// waitReady retries ping with a capped fibonacci backoff.
func (a *App) waitReady(name string, ping func(context.Context) error) error {
	attempts := uint64(max(a.config.GetInt("retry.max_attempts"), 0))

	b := retry.NewFibonacci(200 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(attempts, b)

	return retry.Do(a.ctx, b, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := ping(pingCtx); err != nil {
			slog.WarnContext(ctx, "dependency not ready", "name", name, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (a *App) initTokens() error {
	p, err := otp.NewProvider(otp.ProviderConfig{
		TOTP:      a.totp,
		Store:     a.store,
		Encryptor: a.mfaEncryptor,
		Clock:     a.clock,
		Guard:     a.guard,
	})
	if err != nil {
		return err
	}

	a.tokens = p
	return nil
}

func (a *App) initMessaging() error {
	driver := a.config.GetString("audit.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("audit.nsq.producer_addr"),
			ProducerConfig: func() *nsq.Config {
				cfg := nsq.NewConfig()
				if v := a.config.GetSecond("audit.nsq.dial_timeout_seconds"); v > 0 {
					cfg.DialTimeout = v
				}
				if v := a.config.GetSecond("audit.nsq.write_timeout_seconds"); v > 0 {
					cfg.WriteTimeout = v
				}
				return cfg
			}(),
		},
		Kafka: messaging.KafkaConfig{
			Brokers:      a.config.GetArray("audit.kafka.brokers"),
			BatchTimeout: time.Duration(a.config.GetInt("audit.kafka.batch_timeout_ms")) * time.Millisecond,
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("audit.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("instrument.service_name")),
				nats.MaxReconnects(a.config.GetInt("audit.nats.max_reconnects")),
				nats.RetryOnFailedConnect(a.config.GetBool("audit.nats.retry_on_failed_connect")),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("init messaging driver %q: %w", driver, err)
	}

	a.messaging = client
	a.addCloser("Messaging", func(context.Context) error {
		return client.Close()
	})
	return nil
}
