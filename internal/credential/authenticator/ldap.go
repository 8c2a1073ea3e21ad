package authenticator

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// ErrLDAPNotConfigured is returned when the directory URL or DN template is missing.
var ErrLDAPNotConfigured = errors.New("authenticator: ldap url and user dn template are required")

// LDAPConfig configures directory authentication.
type LDAPConfig struct {
	// URL is the directory address, e.g. ldaps://ldap.example.org:636.
	URL string
	// UserDNTemplate has one %s for the escaped username,
	// e.g. uid=%s,ou=people,dc=example,dc=org.
	UserDNTemplate string
	// StartTLS upgrades a plain ldap:// connection.
	StartTLS bool
	// TLSConfig is used for StartTLS and ldaps.
	TLSConfig *tls.Config
	// Timeout bounds dialing. Zero selects ten seconds.
	Timeout time.Duration
}

type ldapSession interface {
	StartTLS(config *tls.Config) error
	Bind(username, password string) error
}

// LDAPPlatform verifies passwords with a simple bind as the user.
//
// The reference hash is ignored; the directory owns the credential.
type LDAPPlatform struct {
	cfg  LDAPConfig
	dial func(ctx context.Context) (ldapSession, func(), error)
}

// NewLDAPPlatform validates cfg and returns the platform.
func NewLDAPPlatform(cfg LDAPConfig) (*LDAPPlatform, error) {
	if cfg.URL == "" || strings.Count(cfg.UserDNTemplate, "%s") != 1 {
		return nil, ErrLDAPNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	p := &LDAPPlatform{cfg: cfg}
	p.dial = p.dialDirectory
	return p, nil
}

// Verify binds as the user's DN with password.
func (p *LDAPPlatform) Verify(ctx context.Context, username, password, _ string) (bool, error) {
	// An empty password would be an unauthenticated bind, which servers accept.
	if username == "" || password == "" {
		return false, nil
	}

	sess, closeFn, err := p.dial(ctx)
	if err != nil {
		return false, fmt.Errorf("authenticator: ldap dial: %w", err)
	}
	defer closeFn()

	if p.cfg.StartTLS {
		if err := sess.StartTLS(p.cfg.TLSConfig); err != nil {
			return false, fmt.Errorf("authenticator: ldap starttls: %w", err)
		}
	}

	dn := fmt.Sprintf(p.cfg.UserDNTemplate, ldap.EscapeDN(username))
	if err := sess.Bind(dn, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return false, nil
		}
		return false, fmt.Errorf("authenticator: ldap bind: %w", err)
	}

	return true, nil
}

func (p *LDAPPlatform) dialDirectory(ctx context.Context) (ldapSession, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	opts := []ldap.DialOpt{ldap.DialWithDialer(&net.Dialer{Timeout: p.cfg.Timeout})}
	if p.cfg.TLSConfig != nil {
		opts = append(opts, ldap.DialWithTLSConfig(p.cfg.TLSConfig))
	}

	conn, err := ldap.DialURL(p.cfg.URL, opts...)
	if err != nil {
		return nil, nil, err
	}
	conn.SetTimeout(p.cfg.Timeout)

	return conn, func() { conn.Close() }, nil
}
