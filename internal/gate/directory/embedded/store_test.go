package embedded_test

import (
	"path/filepath"
	"testing"

	"github.com/socialfin/authgate/internal/gate/directory"
	"github.com/socialfin/authgate/internal/gate/directory/embedded"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *embedded.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "directory.db")
	s, err := embedded.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestCreatePrincipal(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := t.Context()

	p, err := s.CreatePrincipal(ctx, "a@x.com", "Abcd1234", directory.Attrs{FirstName: "Ada"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.True(t, p.Active)
	require.False(t, p.Verified)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := s.CreatePrincipal(ctx, "a@x.com", "Other123", directory.Attrs{})
		require.ErrorIs(t, err, directory.ErrAlreadyExists)
	})

	t.Run("email comparison is case-insensitive", func(t *testing.T) {
		_, err := s.CreatePrincipal(ctx, "A@X.COM", "Other123", directory.Attrs{})
		require.ErrorIs(t, err, directory.ErrAlreadyExists)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := t.Context()

	created, err := s.CreatePrincipal(ctx, "a@x.com", "Abcd1234", directory.Attrs{})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		p, err := s.Authenticate(ctx, "a@x.com", "Abcd1234")
		require.NoError(t, err)
		require.Equal(t, created.ID, p.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Authenticate(ctx, "a@x.com", "wrong")
		require.ErrorIs(t, err, directory.ErrInvalidCredentials)
	})

	t.Run("unknown email looks identical to wrong password", func(t *testing.T) {
		_, err := s.Authenticate(ctx, "nobody@x.com", "Abcd1234")
		require.ErrorIs(t, err, directory.ErrInvalidCredentials)
	})
}

func TestUpdateByID(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := t.Context()

	created, err := s.CreatePrincipal(ctx, "a@x.com", "Abcd1234", directory.Attrs{})
	require.NoError(t, err)

	t.Run("updates verification flag", func(t *testing.T) {
		verified := true
		p, err := s.UpdateByID(ctx, created.ID, directory.Update{Verified: &verified})
		require.NoError(t, err)
		require.True(t, p.Verified)
	})

	t.Run("rotates password", func(t *testing.T) {
		newPass := "Wxyz5678"
		_, err := s.UpdateByID(ctx, created.ID, directory.Update{Password: &newPass})
		require.NoError(t, err)

		_, err = s.Authenticate(ctx, "a@x.com", "Abcd1234")
		require.ErrorIs(t, err, directory.ErrInvalidCredentials)

		_, err = s.Authenticate(ctx, "a@x.com", newPass)
		require.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		active := false
		_, err := s.UpdateByID(ctx, "missing", directory.Update{Active: &active})
		require.ErrorIs(t, err, directory.ErrNotFound)
	})
}

func TestFindByEmailAndList(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := t.Context()

	_, err := s.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, directory.ErrNotFound)

	first, err := s.CreatePrincipal(ctx, "a@x.com", "Abcd1234", directory.Attrs{})
	require.NoError(t, err)
	_, err = s.CreatePrincipal(ctx, "b@x.com", "Abcd1234", directory.Attrs{})
	require.NoError(t, err)

	found, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestProfiles(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := t.Context()

	p, err := s.CreatePrincipal(ctx, "a@x.com", "Abcd1234", directory.Attrs{})
	require.NoError(t, err)

	profile := directory.Profile{
		ID:        p.ID,
		Email:     "a@x.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	require.NoError(t, s.CreateProfile(ctx, profile))

	got, err := s.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", got.FirstName)
	require.Equal(t, "Lovelace", got.LastName)

	_, err = s.GetProfile(ctx, "missing")
	require.ErrorIs(t, err, directory.ErrNotFound)
}
