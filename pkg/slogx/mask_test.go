package slogx_test

import (
	"testing"

	"github.com/socialfin/authgate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestMaskFields(t *testing.T) {
	t.Parallel()

	t.Run("masks sensitive keys", func(t *testing.T) {
		in := map[string]any{
			"email":         "a@x.com",
			"password":      "Abcd1234",
			"refresh_token": "tok",
		}

		out := slogx.MaskFields(in)
		require.Equal(t, "a@x.com", out["email"])
		require.Equal(t, slogx.Masked, out["password"])
		require.Equal(t, slogx.Masked, out["refresh_token"])

		// Input must not be mutated.
		require.Equal(t, "Abcd1234", in["password"])
	})

	t.Run("is case-insensitive", func(t *testing.T) {
		out := slogx.MaskFields(map[string]any{"Password": "x"})
		require.Equal(t, slogx.Masked, out["Password"])
	})

	t.Run("masks nested maps", func(t *testing.T) {
		in := map[string]any{
			"profile": map[string]any{
				"token": "abc",
				"name":  "alice",
			},
		}

		out := slogx.MaskFields(in)
		nested := out["profile"].(map[string]any)
		require.Equal(t, slogx.Masked, nested["token"])
		require.Equal(t, "alice", nested["name"])
	})

	t.Run("nil stays nil", func(t *testing.T) {
		require.Nil(t, slogx.MaskFields(nil))
	})
}

func TestMaskHeader(t *testing.T) {
	t.Parallel()

	require.Equal(t, slogx.Masked, slogx.MaskHeader("Authorization", "Bearer abc"))
	require.Equal(t, slogx.Masked, slogx.MaskHeader("cookie", "session=1"))
	require.Equal(t, "curl/8.0", slogx.MaskHeader("User-Agent", "curl/8.0"))
}
