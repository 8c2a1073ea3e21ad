package authenticator

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/goerror"
	"github.com/shandysiswandi/usercredential/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fastBcrypt = hash.NewBcrypt(bcrypt.MinCost, "")

func mustHash(t *testing.T, h hash.Hash, plain string) string {
	t.Helper()

	b, err := h.Hash(plain)
	require.NoError(t, err)
	return string(b)
}

func newPassword(opts ...Option) *PasswordAuthenticator {
	return NewPasswordAuthenticator(append([]Option{
		WithPlatform(entity.PlatformNative, NewHashPlatform(fastBcrypt)),
	}, opts...)...)
}

func TestPasswordAuthenticate(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		want      entity.Status
	}{
		{name: "Match", reference: "hunter2", want: entity.StatusSuccess},
		{name: "Mismatch", reference: "wrong", want: entity.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newPassword()
			a.SetCurrentUsername("alice")
			a.SetPassword("hunter2")
			a.SetCurrentPassword(mustHash(t, fastBcrypt, tt.reference))

			require.NoError(t, a.Initialize())
			out, err := a.Authenticate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Status)
			assert.Equal(t, tt.want == entity.StatusSuccess, out.Authenticated())
			assert.Nil(t, out.Stages)
		})
	}
}

func TestPasswordArgon2idPlatform(t *testing.T) {
	argon := hash.NewArgon2id("", hash.WithArgon2idCost(8*1024, 1, 1))
	a := NewPasswordAuthenticator(
		WithPlatform(entity.PlatformArgon2id, NewHashPlatform(argon)),
		WithSelectedPlatform(entity.PlatformArgon2id),
	)
	a.SetCurrentUsername("alice")
	a.SetPassword("hunter2")
	a.SetCurrentPassword(mustHash(t, argon, "hunter2"))

	require.NoError(t, a.Initialize())
	out, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Authenticated())
	assert.Equal(t, entity.PlatformArgon2id, a.Platform())
}

func TestPasswordInitialize(t *testing.T) {
	t.Run("NothingSet", func(t *testing.T) {
		err := newPassword().Initialize()
		require.Error(t, err)
		assert.True(t, goerror.IsInitialization(err))
		assert.Equal(t, goerror.CodeNotInitialized, goerror.CodeOf(err))
	})

	t.Run("AnyOneFieldIsEnough", func(t *testing.T) {
		for _, set := range []func(*PasswordAuthenticator){
			func(a *PasswordAuthenticator) { a.SetCurrentUsername("alice") },
			func(a *PasswordAuthenticator) { a.SetPassword("hunter2") },
			func(a *PasswordAuthenticator) { a.SetCurrentPassword("$2a$04$x") },
		} {
			a := newPassword()
			set(a)
			assert.NoError(t, a.Initialize())
		}
	})

	t.Run("UnknownPlatform", func(t *testing.T) {
		a := newPassword(WithSelectedPlatform(entity.PlatformLDAP))
		a.SetCurrentUsername("alice")

		err := a.Initialize()
		assert.True(t, goerror.IsInitialization(err))
		assert.Equal(t, goerror.CodeUnknownPlatform, goerror.CodeOf(err))
	})
}

func TestPasswordGetter(t *testing.T) {
	a := newPassword()
	a.SetPassword("hunter2")

	raw1, err := a.Password(true)
	require.NoError(t, err)
	raw2, err := a.Password(true)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", raw1)
	assert.Equal(t, raw1, raw2)

	h1, err := a.Password(false)
	require.NoError(t, err)
	h2, err := a.Password(false)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.True(t, fastBcrypt.Verify(h1, "hunter2"))
	assert.True(t, fastBcrypt.Verify(h2, "hunter2"))
}

func TestPasswordCustomPlatform(t *testing.T) {
	var seen string
	custom := PlatformFunc(func(_ context.Context, username, password, _ string) (bool, error) {
		seen = username
		return password == "letmein", nil
	})

	a := newPassword(WithPlatform(entity.PlatformCustom, custom))
	a.SetPlatform(entity.PlatformCustom)
	a.SetCurrentUsername("bob")
	a.SetPassword("letmein")

	require.NoError(t, a.Initialize())
	out, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Authenticated())
	assert.Equal(t, "bob", seen)

	t.Run("HashFallsBackToNative", func(t *testing.T) {
		h, err := a.Password(false)
		require.NoError(t, err)
		assert.True(t, fastBcrypt.Verify(h, "letmein"))
	})
}

func TestPasswordPlatformFailureIsServerError(t *testing.T) {
	boom := PlatformFunc(func(context.Context, string, string, string) (bool, error) {
		return false, errors.New("directory unreachable")
	})

	a := newPassword(WithPlatform(entity.PlatformCustom, boom), WithSelectedPlatform(entity.PlatformCustom))
	a.SetCurrentUsername("alice")
	a.SetPassword("x")
	require.NoError(t, a.Initialize())

	out, err := a.Authenticate(context.Background())
	require.Error(t, err)
	assert.Equal(t, goerror.CodeInternal, goerror.CodeOf(err))
	assert.ErrorContains(t, errors.Unwrap(err), "directory unreachable")
	assert.False(t, out.Authenticated())
}

func TestPasswordAccessors(t *testing.T) {
	a := newPassword()

	assert.True(t, a.UsePassword())
	a.SetUsePassword(false)
	assert.False(t, a.UsePassword())

	assert.False(t, a.MultiFactor())
	a.SetMultiFactor(true)
	assert.True(t, a.MultiFactor())

	a.SetMultiFactorHandler("totp")
	assert.Equal(t, "totp", a.MultiFactorHandler())

	reg := entity.NewStageRegistry()
	a.SetMultiFactorStages(reg)
	got := a.MultiFactorStages()
	got.Password.Status = true
	assert.False(t, a.MultiFactorStages().Password.Status)

	a.SetCurrentUsername("alice")
	a.SetCurrentPassword("ref")
	assert.Equal(t, "alice", a.CurrentUsername())
	assert.Equal(t, "ref", a.CurrentPassword())
}

func TestPasswordAuditEvent(t *testing.T) {
	pub := &mockAuditPublisher{}
	pub.On("PublishAttempt", mock.Anything, mock.MatchedBy(func(ev entity.AttemptEvent) bool {
		return ev.Username == "alice" && ev.Stage == "password" && ev.Status == "fail" &&
			ev.Platform == "native" && ev.AttemptID != ""
	})).Return(errors.New("broker down")).Once()

	a := newPassword(WithAuditPublisher(pub))
	a.SetCurrentUsername("alice")
	a.SetPassword("nope")
	a.SetCurrentPassword(mustHash(t, fastBcrypt, "hunter2"))

	require.NoError(t, a.Initialize())
	out, err := a.Authenticate(context.Background())
	require.NoError(t, err, "publish failures never change the result")
	assert.Equal(t, entity.StatusFail, out.Status)
	pub.AssertExpectations(t)
}
