package cryptox_test

import (
	"strings"
	"testing"

	"github.com/socialfin/authgate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	t.Run("round trips", func(t *testing.T) {
		hash, err := cryptox.HashPassword("Abcd1234")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

		require.NoError(t, cryptox.VerifyPassword("Abcd1234", hash))
	})

	t.Run("salts are unique per hash", func(t *testing.T) {
		a, err := cryptox.HashPassword("same-password")
		require.NoError(t, err)
		b, err := cryptox.HashPassword("same-password")
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashPassword("correct horse")
	require.NoError(t, err)

	t.Run("rejects wrong password", func(t *testing.T) {
		err := cryptox.VerifyPassword("battery staple", hash)
		require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
	})

	t.Run("rejects malformed digests", func(t *testing.T) {
		require.Error(t, cryptox.VerifyPassword("x", "not-a-hash"))
		require.Error(t, cryptox.VerifyPassword("x", "$bcrypt$v=19$m=1,t=1,p=1$AA$AA"))
	})
}
