package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	for _, pw := range []string{"pw123", "", "пароль", strings.Repeat("x", 72)} {
		hashed, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hashed, "hash must not equal plaintext")

		ok, err := h.Verify(pw, hashed)
		require.NoError(t, err)
		assert.True(t, ok, "verify(%q, hash(%q))", pw, pw)
	}
}

func TestPasswordHasher_Mismatch(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	hashed, err := h.Hash("right")
	require.NoError(t, err)

	ok, err := h.Verify("wrong", hashed)
	require.NoError(t, err, "a mismatch is not an error")
	assert.False(t, ok)
}

func TestPasswordHasher_Salted(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_MalformedHashIsInternal(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	ok, err := h.Verify("pw", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, common.ErrorInternal), "got %v", err)
}

func TestPasswordHasher_TooLongIsValidation(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("x", 73))
	assert.True(t, errors.Is(err, common.ErrorValidation), "got %v", err)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestPasswordHasher_CostFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}

func TestPasswordHasher_SimulateVerifyDoesNotPanic(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	h.SimulateVerify("anything")
	h.SimulateVerify("again")
}
