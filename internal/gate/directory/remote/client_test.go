package remote_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/socialfin/authgate/internal/gate/directory"
	"github.com/socialfin/authgate/internal/gate/directory/remote"
	"github.com/stretchr/testify/require"
)

func TestCreatePrincipal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/admin/principals", r.URL.Path)
		require.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@x.com", body["email"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "p1", "email": "a@x.com", "active": true,
		})
	}))
	defer srv.Close()

	c := remote.NewClient(srv.URL, "service-key")
	p, err := c.CreatePrincipal(t.Context(), "a@x.com", "Abcd1234", directory.Attrs{FirstName: "A"})
	require.NoError(t, err)
	require.Equal(t, "p1", p.ID)
	require.True(t, p.Active)
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	status := http.StatusNotFound
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := remote.NewClient(srv.URL, "key")

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		status = http.StatusNotFound
		_, err := c.GetByID(t.Context(), "missing")
		require.ErrorIs(t, err, directory.ErrNotFound)
	})

	t.Run("409 maps to ErrAlreadyExists", func(t *testing.T) {
		status = http.StatusConflict
		_, err := c.CreatePrincipal(t.Context(), "a@x.com", "pw", directory.Attrs{})
		require.ErrorIs(t, err, directory.ErrAlreadyExists)
	})

	t.Run("401 maps to ErrInvalidCredentials", func(t *testing.T) {
		status = http.StatusUnauthorized
		_, err := c.Authenticate(t.Context(), "a@x.com", "wrong")
		require.ErrorIs(t, err, directory.ErrInvalidCredentials)
	})

	t.Run("500 is an opaque failure", func(t *testing.T) {
		status = http.StatusInternalServerError
		_, err := c.GetByID(t.Context(), "p1")
		require.Error(t, err)
		require.NotErrorIs(t, err, directory.ErrNotFound)
	})
}

func TestFindByEmail(t *testing.T) {
	t.Parallel()

	t.Run("uses the indexed endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/admin/principals/by-email", r.URL.Path)
			require.Equal(t, "a@x.com", r.URL.Query().Get("email"))
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "p1", "email": "a@x.com"})
		}))
		defer srv.Close()

		c := remote.NewClient(srv.URL, "key")
		p, err := c.FindByEmail(t.Context(), "a@x.com")
		require.NoError(t, err)
		require.Equal(t, "p1", p.ID)
	})

	t.Run("legacy mode scans the full listing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/admin/principals", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"principals": []map[string]any{
					{"id": "p1", "email": "other@x.com"},
					{"id": "p2", "email": "A@X.com"},
				},
			})
		}))
		defer srv.Close()

		c := remote.NewClient(srv.URL, "key")
		c.LegacyLookup = true

		p, err := c.FindByEmail(t.Context(), "a@x.com")
		require.NoError(t, err)
		require.Equal(t, "p2", p.ID)

		_, err = c.FindByEmail(t.Context(), "nobody@x.com")
		require.ErrorIs(t, err, directory.ErrNotFound)
	})
}

func TestUpdateByID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/v1/admin/principals/p1", r.URL.Path)

		var upd directory.Update
		require.NoError(t, json.NewDecoder(r.Body).Decode(&upd))
		require.NotNil(t, upd.Verified)
		require.True(t, *upd.Verified)
		require.Nil(t, upd.Password)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "p1", "verified": true})
	}))
	defer srv.Close()

	verified := true
	c := remote.NewClient(srv.URL, "key")
	p, err := c.UpdateByID(t.Context(), "p1", directory.Update{Verified: &verified})
	require.NoError(t, err)
	require.True(t, p.Verified)
}

func TestProfiles(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			require.Equal(t, "/v1/admin/profiles", r.URL.Path)
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			require.Equal(t, "/v1/admin/profiles/p1", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id": "p1", "email": "a@x.com", "first_name": "Ada",
			})
		}
	}))
	defer srv.Close()

	c := remote.NewClient(srv.URL, "key")
	require.NoError(t, c.CreateProfile(t.Context(), directory.Profile{ID: "p1", Email: "a@x.com"}))

	profile, err := c.GetProfile(t.Context(), "p1")
	require.NoError(t, err)
	require.Equal(t, "Ada", profile.FirstName)
}
