package authenticator

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/clock"
	"github.com/shandysiswandi/usercredential/internal/pkg/goerror"
	"github.com/shandysiswandi/usercredential/internal/pkg/otp"
	"github.com/shandysiswandi/usercredential/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const goodToken = "123456"

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type stageTwoFixture struct {
	auth      *MultiFactorAuthenticator
	tokens    *mockTokenProvider
	encKey    []byte
	reference string
}

// newStageTwo returns an authenticator positioned at stage 2 with every input correct.
func newStageTwo(t *testing.T, elapsed time.Duration, opts ...Option) stageTwoFixture {
	t.Helper()

	tokens := &mockTokenProvider{}
	encKey := bytes.Repeat([]byte{7}, DefaultEncKeyLength)
	reference := mustHash(t, fastBcrypt, "hunter2")

	a := NewMultiFactorAuthenticator(append([]Option{
		WithPlatform(entity.PlatformNative, NewHashPlatform(fastBcrypt)),
		WithClock(clock.NewFrozen(now)),
		WithTokenProvider(tokens),
	}, opts...)...)
	a.SetMultiFactor(true)
	a.SetCurrentUsername("alice")
	a.SetCurrentPassword(reference)

	reg := entity.NewStageRegistry()
	reg.Current = entity.StageOTP
	reg.Password.Status = true
	reg.OTP = &entity.OTPStage{EncKey: encKey}
	a.SetMultiFactorStages(reg)

	a.SetUserTOTPProfile(entity.NewTOTPProfile(encKey, now.Add(-elapsed), 180*time.Second))

	vh, err := ComputeVerificationHash(reference, encKey)
	require.NoError(t, err)
	a.SetVerificationHash(vh)
	a.SetOneTimeToken(goodToken)

	return stageTwoFixture{auth: a, tokens: tokens, encKey: encKey, reference: reference}
}

func (f stageTwoFixture) expectEnrolled() {
	f.tokens.On("TokenExists", mock.Anything, "alice").Return(true, nil)
	f.tokens.On("BindToken", mock.Anything, "alice").Return(nil)
	f.tokens.On("ValidateToken", mock.Anything, "alice", goodToken).Return(otp.ResultValid, nil)
	f.tokens.On("ValidateToken", mock.Anything, "alice", mock.Anything).Return(otp.ResultInvalid, nil)
}

func TestMultiFactorStageOne(t *testing.T) {
	newStageOne := func(opts ...Option) *MultiFactorAuthenticator {
		a := NewMultiFactorAuthenticator(append([]Option{
			WithPlatform(entity.PlatformNative, NewHashPlatform(fastBcrypt)),
		}, opts...)...)
		a.SetMultiFactor(true)
		a.SetMultiFactorStages(entity.NewStageRegistry())
		a.SetCurrentUsername("alice")
		return a
	}

	t.Run("CorrectPasswordIssuesKey", func(t *testing.T) {
		a := newStageOne()
		a.SetPassword("hunter2")
		a.SetCurrentPassword(mustHash(t, fastBcrypt, "hunter2"))

		require.NoError(t, a.Initialize())
		out, err := a.Authenticate(context.Background())
		require.NoError(t, err)

		assert.Equal(t, entity.StatusNextStage, out.Status)
		assert.False(t, out.Authenticated())
		require.NotNil(t, out.Stages)
		assert.True(t, out.Stages.Password.Status)
		require.NotNil(t, out.Stages.OTP)
		assert.Len(t, out.Stages.OTP.EncKey, 16)
		assert.False(t, out.Stages.OTP.Status)
		assert.Equal(t, entity.StagePassword, out.Stages.Current)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		a := newStageOne()
		a.SetPassword("nope")
		a.SetCurrentPassword(mustHash(t, fastBcrypt, "hunter2"))

		require.NoError(t, a.Initialize())
		out, err := a.Authenticate(context.Background())
		require.NoError(t, err)

		assert.Equal(t, entity.StatusFail, out.Status)
		require.NotNil(t, out.Stages)
		assert.False(t, out.Stages.Password.Status)
		assert.Nil(t, out.Stages.OTP)
	})

	t.Run("KeyFromRandomSource", func(t *testing.T) {
		src := bytes.Repeat([]byte{0xAB}, 64)
		a := newStageOne(WithRandomSource(bytes.NewReader(src)))
		require.NoError(t, a.SetEncKeyLength(32))
		a.SetPassword("hunter2")
		a.SetCurrentPassword(mustHash(t, fastBcrypt, "hunter2"))

		require.NoError(t, a.Initialize())
		out, err := a.Authenticate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, src[:32], out.Stages.OTP.EncKey)
	})

	t.Run("KeysAreFreshPerSession", func(t *testing.T) {
		keys := make([][]byte, 0, 2)
		for range 2 {
			a := newStageOne()
			a.SetPassword("hunter2")
			a.SetCurrentPassword(mustHash(t, fastBcrypt, "hunter2"))
			require.NoError(t, a.Initialize())
			out, err := a.Authenticate(context.Background())
			require.NoError(t, err)
			keys = append(keys, out.Stages.OTP.EncKey)
		}
		assert.NotEqual(t, keys[0], keys[1])
	})

	t.Run("RandomSourceFailure", func(t *testing.T) {
		a := newStageOne(WithRandomSource(bytes.NewReader(nil)))
		a.SetPassword("hunter2")
		a.SetCurrentPassword(mustHash(t, fastBcrypt, "hunter2"))

		require.NoError(t, a.Initialize())
		_, err := a.Authenticate(context.Background())
		require.Error(t, err)
		assert.Equal(t, goerror.CodeInternal, goerror.CodeOf(err))
		assert.False(t, a.MultiFactorStages().Password.Status)
	})

	t.Run("InitializeResetsStatus", func(t *testing.T) {
		a := newStageOne()
		reg := entity.NewStageRegistry()
		reg.Password.Status = true
		reg.OTP = &entity.OTPStage{EncKey: []byte{1, 2, 3}}
		a.SetMultiFactorStages(reg)

		require.NoError(t, a.Initialize())
		assert.False(t, a.MultiFactorStages().Password.Status)
		assert.Nil(t, a.MultiFactorStages().OTP)
	})

	t.Run("FailureDropsStaleStageTwo", func(t *testing.T) {
		tests := []struct {
			name       string
			initialize bool
		}{
			{name: "AfterInitialize", initialize: true},
			{name: "WithoutInitialize", initialize: false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Registry as returned by an earlier successful stage 1.
				reg := entity.NewStageRegistry()
				reg.Password.Status = true
				reg.OTP = &entity.OTPStage{EncKey: bytes.Repeat([]byte{0x5e}, DefaultEncKeyLength)}

				a := newStageOne()
				a.SetMultiFactorStages(reg)
				a.SetPassword("nope")
				a.SetCurrentPassword(mustHash(t, fastBcrypt, "hunter2"))

				if tt.initialize {
					require.NoError(t, a.Initialize())
				}
				out, err := a.Authenticate(context.Background())
				require.NoError(t, err)

				assert.Equal(t, entity.StatusFail, out.Status)
				require.NotNil(t, out.Stages)
				assert.False(t, out.Stages.Password.Status)
				assert.Nil(t, out.Stages.OTP)
				assert.False(t, out.Stages.PasswordPassed())
			})
		}
	})
}

func TestMultiFactorStageTwo(t *testing.T) {
	t.Run("AllCorrectSucceeds", func(t *testing.T) {
		f := newStageTwo(t, 140*time.Second)
		f.expectEnrolled()

		require.NoError(t, f.auth.Initialize())
		out, err := f.auth.Authenticate(context.Background())
		require.NoError(t, err)
		assert.True(t, out.Authenticated())
		assert.Nil(t, out.Stages)
		assert.True(t, f.auth.MultiFactorStages().OTP.Status)
	})

	t.Run("ExpiredWindowFails", func(t *testing.T) {
		f := newStageTwo(t, 181*time.Second)
		f.expectEnrolled()

		require.NoError(t, f.auth.Initialize())
		out, err := f.auth.Authenticate(context.Background())
		require.NoError(t, err)
		assert.False(t, out.Authenticated())
		f.tokens.AssertCalled(t, "ValidateToken", mock.Anything, "alice", goodToken)
	})

	t.Run("ExpiredRegardlessOfHashAndToken", func(t *testing.T) {
		for _, elapsed := range []time.Duration{180 * time.Second, 181 * time.Second, time.Hour} {
			f := newStageTwo(t, elapsed)
			f.expectEnrolled()

			require.NoError(t, f.auth.Initialize())
			out, err := f.auth.Authenticate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, entity.StatusFail, out.Status, "elapsed=%s", elapsed)
		}
	})

	t.Run("LastSecondIsOpen", func(t *testing.T) {
		f := newStageTwo(t, 179*time.Second)
		f.expectEnrolled()

		require.NoError(t, f.auth.Initialize())
		out, err := f.auth.Authenticate(context.Background())
		require.NoError(t, err)
		assert.True(t, out.Authenticated())
	})

	t.Run("WrongVerificationHash", func(t *testing.T) {
		for _, vh := range []string{"deadbeef", "", "x"} {
			f := newStageTwo(t, 10*time.Second)
			f.expectEnrolled()
			require.NoError(t, f.auth.Initialize())

			f.auth.SetVerificationHash(vh)
			out, err := f.auth.Authenticate(context.Background())
			require.NoError(t, err)
			assert.False(t, out.Authenticated())
			f.tokens.AssertCalled(t, "ValidateToken", mock.Anything, "alice", goodToken)
		}
	})

	t.Run("HashFromOtherKey", func(t *testing.T) {
		f := newStageTwo(t, 10*time.Second)
		f.expectEnrolled()

		vh, err := ComputeVerificationHash(f.reference, []byte("another-session-"))
		require.NoError(t, err)
		f.auth.SetVerificationHash(vh)

		require.NoError(t, f.auth.Initialize())
		out, err := f.auth.Authenticate(context.Background())
		require.NoError(t, err)
		assert.False(t, out.Authenticated())
	})

	t.Run("WrongToken", func(t *testing.T) {
		f := newStageTwo(t, 10*time.Second)
		f.expectEnrolled()
		f.auth.SetOneTimeToken("654321")

		require.NoError(t, f.auth.Initialize())
		out, err := f.auth.Authenticate(context.Background())
		require.NoError(t, err)
		assert.False(t, out.Authenticated())
	})

	t.Run("ReplayedTokenIsRejected", func(t *testing.T) {
		f := newStageTwo(t, 10*time.Second)
		f.tokens.On("TokenExists", mock.Anything, "alice").Return(true, nil)
		f.tokens.On("BindToken", mock.Anything, "alice").Return(nil)
		f.tokens.On("ValidateToken", mock.Anything, "alice", goodToken).Return(otp.ResultReplayed, nil)

		require.NoError(t, f.auth.Initialize())
		out, err := f.auth.Authenticate(context.Background())
		require.NoError(t, err)
		assert.False(t, out.Authenticated())
	})

	t.Run("EmptyUsernameIsCredentialError", func(t *testing.T) {
		f := newStageTwo(t, 10*time.Second)
		f.auth.SetCurrentUsername("")

		require.NoError(t, f.auth.Initialize())
		_, err := f.auth.Authenticate(context.Background())
		require.Error(t, err)
		assert.True(t, goerror.IsCredential(err))
		assert.Equal(t, goerror.CodeUsernameMissing, goerror.CodeOf(err))
		f.tokens.AssertNotCalled(t, "TokenExists", mock.Anything, mock.Anything)
		f.tokens.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotEnrolled", func(t *testing.T) {
		f := newStageTwo(t, 10*time.Second)
		f.tokens.On("TokenExists", mock.Anything, "alice").Return(false, nil)

		require.NoError(t, f.auth.Initialize())
		_, err := f.auth.Authenticate(context.Background())
		assert.True(t, goerror.IsCredential(err))
		assert.Equal(t, goerror.CodeTokenNotEnrolled, goerror.CodeOf(err))
		f.tokens.AssertNotCalled(t, "BindToken", mock.Anything, mock.Anything)
	})

	t.Run("ProviderFailure", func(t *testing.T) {
		f := newStageTwo(t, 10*time.Second)
		f.tokens.On("TokenExists", mock.Anything, "alice").Return(false, errors.New("redis: connection refused"))

		require.NoError(t, f.auth.Initialize())
		_, err := f.auth.Authenticate(context.Background())
		require.Error(t, err)
		assert.Equal(t, goerror.CodeInternal, goerror.CodeOf(err))
	})
}

func TestMultiFactorInitialize(t *testing.T) {
	t.Run("MultiFactorOffBehavesLikePassword", func(t *testing.T) {
		a := NewMultiFactorAuthenticator()
		err := a.Initialize()
		assert.Equal(t, goerror.CodeNotInitialized, goerror.CodeOf(err))

		a.SetCurrentUsername("alice")
		assert.NoError(t, a.Initialize())
	})

	t.Run("MalformedRegistry", func(t *testing.T) {
		a := NewMultiFactorAuthenticator()
		a.SetMultiFactor(true)
		a.SetCurrentUsername("alice")

		err := a.Initialize()
		assert.True(t, goerror.IsInitialization(err))
		assert.Equal(t, goerror.CodeStagesMalformed, goerror.CodeOf(err))

		_, err = a.Authenticate(context.Background())
		assert.Equal(t, goerror.CodeStagesMalformed, goerror.CodeOf(err))
	})

	t.Run("KeyLengthUnset", func(t *testing.T) {
		a := NewMultiFactorAuthenticator(WithEncKeyLength(0))
		a.SetMultiFactor(true)
		a.SetMultiFactorStages(entity.NewStageRegistry())
		a.SetCurrentUsername("alice")

		assert.Equal(t, goerror.CodeStagesMalformed, goerror.CodeOf(a.Initialize()))
	})

	t.Run("UnknownStage", func(t *testing.T) {
		a := NewMultiFactorAuthenticator()
		a.SetMultiFactor(true)
		reg := entity.NewStageRegistry()
		reg.Current = 3
		a.SetMultiFactorStages(reg)

		err := a.Initialize()
		assert.True(t, goerror.IsState(err))
		assert.Equal(t, goerror.CodeUnknownStage, goerror.CodeOf(err))

		_, err = a.Authenticate(context.Background())
		assert.True(t, goerror.IsState(err))
	})

	t.Run("StageTwoDoesNotCheckPasswordFields", func(t *testing.T) {
		f := newStageTwo(t, 10*time.Second)
		f.auth.SetPassword("")
		assert.NoError(t, f.auth.Initialize())
	})

	stageTwoMissing := []struct {
		name  string
		apply func(f stageTwoFixture)
	}{
		{"NoProfile", func(f stageTwoFixture) { f.auth.SetUserTOTPProfile(entity.TOTPProfile{}) }},
		{"NoEncKey", func(f stageTwoFixture) {
			f.auth.SetUserTOTPProfile(entity.NewTOTPProfile(nil, now, time.Minute))
		}},
		{"NoIssuedAt", func(f stageTwoFixture) {
			f.auth.SetUserTOTPProfile(entity.NewTOTPProfile(f.encKey, time.Time{}, time.Minute))
		}},
		{"ZeroLimit", func(f stageTwoFixture) {
			f.auth.SetUserTOTPProfile(entity.NewTOTPProfile(f.encKey, now, 0))
		}},
		{"NoVerificationHash", func(f stageTwoFixture) { f.auth.SetVerificationHash("") }},
		{"NoToken", func(f stageTwoFixture) { f.auth.SetOneTimeToken("") }},
	}
	for _, tt := range stageTwoMissing {
		t.Run("StageTwo"+tt.name, func(t *testing.T) {
			f := newStageTwo(t, 10*time.Second)
			tt.apply(f)

			err := f.auth.Initialize()
			assert.True(t, goerror.IsInitialization(err))
			assert.Equal(t, goerror.CodeTOTPProfileInvalid, goerror.CodeOf(err))
		})
	}

	t.Run("StageTwoWithValidator", func(t *testing.T) {
		v, err := validator.NewV10Validator()
		require.NoError(t, err)

		f := newStageTwo(t, 10*time.Second, WithValidator(v))
		require.NoError(t, f.auth.Initialize())

		f.auth.SetUserTOTPProfile(entity.NewTOTPProfile(f.encKey, now, 0))
		assert.Equal(t, goerror.CodeTOTPProfileInvalid, goerror.CodeOf(f.auth.Initialize()))
	})

	t.Run("StageTwoWithoutProvider", func(t *testing.T) {
		f := newStageTwo(t, 10*time.Second, WithTokenProvider(nil))
		assert.Equal(t, goerror.CodeTOTPProfileInvalid, goerror.CodeOf(f.auth.Initialize()))
	})
}

func TestSetEncKeyLength(t *testing.T) {
	a := NewMultiFactorAuthenticator()
	assert.Equal(t, DefaultEncKeyLength, a.EncKeyLength())

	for _, n := range []int{0, -1} {
		err := a.SetEncKeyLength(n)
		assert.True(t, goerror.IsInitialization(err))
		assert.Equal(t, goerror.CodeKeyLengthInvalid, goerror.CodeOf(err))
	}
	assert.Equal(t, DefaultEncKeyLength, a.EncKeyLength())

	require.NoError(t, a.SetEncKeyLength(32))
	assert.Equal(t, 32, a.EncKeyLength())
}

func TestMultiFactorAccessors(t *testing.T) {
	a := NewMultiFactorAuthenticator()
	key := []byte{1, 2, 3}
	p := entity.NewTOTPProfile(key, now, time.Minute)

	a.SetUserTOTPProfile(p)
	key[0] = 9
	assert.Equal(t, byte(1), a.UserTOTPProfile().EncKey[0])
	assert.Equal(t, 60, a.UserTOTPProfile().TimeLimitSeconds)

	a.SetVerificationHash("vh")
	a.SetOneTimeToken("000000")
	assert.Equal(t, "vh", a.VerificationHash())
	assert.Equal(t, "000000", a.OneTimeToken())
}
