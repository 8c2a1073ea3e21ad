package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost, "pepper")

	hashed, err := h.Hash("hunter2")
	require.NoError(t, err)

	assert.True(t, h.Verify(string(hashed), "hunter2"))
	assert.False(t, h.Verify(string(hashed), "wrong"))
	assert.False(t, h.Verify("", "hunter2"))
	assert.False(t, NewBcrypt(bcrypt.MinCost, "other").Verify(string(hashed), "hunter2"))

	again, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, string(hashed), string(again))
	assert.True(t, h.Verify(string(again), "hunter2"))
}

func TestBcryptCostClamp(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0, "").Cost())
	assert.Equal(t, bcrypt.MinCost, NewBcrypt(2, "").Cost())
	assert.Equal(t, bcrypt.MaxCost, NewBcrypt(99, "").Cost())
}

func TestArgon2id(t *testing.T) {
	h := NewArgon2id("pepper", WithArgon2idCost(1024, 1, 1))

	hashed, err := h.Hash("hunter2")
	require.NoError(t, err)

	assert.True(t, h.Verify(string(hashed), "hunter2"))
	assert.False(t, h.Verify(string(hashed), "wrong"))
	assert.False(t, h.Verify("$argon2i$v=19$m=1,t=1,p=1$AA$AA", "hunter2"))
	assert.False(t, h.Verify("garbage", "hunter2"))

	// defaults verify hashes made with other parameters
	assert.True(t, NewArgon2id("pepper").Verify(string(hashed), "hunter2"))
}

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256([]byte("secret"))

	first, err := h.Hash("value")
	require.NoError(t, err)
	second, err := h.Hash("value")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.True(t, h.Verify(string(first), "value"))
	assert.False(t, h.Verify(string(first), "other"))
}

func TestHMACSHA256SaltedHash(t *testing.T) {
	a := NewHMACSHA256([]byte("one"))
	b := NewHMACSHA256([]byte("two"))
	salt := []byte("0123456789abcdef")

	x, err := a.SaltedHash("$2a$10$reference", salt)
	require.NoError(t, err)
	y, err := b.SaltedHash("$2a$10$reference", salt)
	require.NoError(t, err)
	assert.Equal(t, x, y)

	z, err := a.SaltedHash("$2a$10$reference", []byte("fedcba9876543210"))
	require.NoError(t, err)
	assert.NotEqual(t, x, z)

	_, err = a.SaltedHash("value", nil)
	assert.ErrorIs(t, err, ErrEmptySalt)
}
