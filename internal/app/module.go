package app

import (
	"github.com/shandysiswandi/usercredential/internal/credential"
)

func (a *App) initModules() error {
	m, err := credential.New(credential.Dependency{
		Config:     a.config,
		Instrument: a.ins,
		Validator:  a.validator,
		Clock:      a.clock,
		UUID:       a.uuid,
		Bcrypt:     a.bcrypt,
		Argon2ID:   a.argon2id,
		Tokens:     a.tokens,
		Messaging:  a.messaging,
		LDAP:       a.ldap,
		Sealer:     a.sealer,
	})
	if err != nil {
		return err
	}

	a.credential = m
	return nil
}
