// Package directory defines the contract with the remote user
// directory: the external system of record for principal identity and
// credentials. The façade only reads and derives from Principal
// records, it never persists them itself.
package directory

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports that no principal or profile matches.
	ErrNotFound = errors.New("directory: not found")

	// ErrAlreadyExists reports a create conflict on email.
	ErrAlreadyExists = errors.New("directory: already exists")

	// ErrInvalidCredentials reports a failed authentication.
	ErrInvalidCredentials = errors.New("directory: invalid credentials")
)

// Principal is the identity record the directory returns.
type Principal struct {
	ID        string
	Email     string
	Verified  bool
	Active    bool
	Attrs     Attrs
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attrs are the free-form identity attributes captured at signup.
type Attrs struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Update describes a partial mutation of a principal. Nil fields are
// left untouched.
type Update struct {
	Password *string `json:"password,omitempty"`
	Verified *bool   `json:"verified,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Attrs    *Attrs  `json:"attrs,omitempty"`
}

// Directory is the outbound interface the session manager depends on.
// Implementations must serialize per-principal updates; refresh-token
// rotation correctness relies on it.
type Directory interface {
	// CreatePrincipal registers a new principal with credentials.
	// Returns ErrAlreadyExists when the email is taken.
	CreatePrincipal(ctx context.Context, email, password string, attrs Attrs) (Principal, error)

	// FindByEmail performs an indexed lookup by email.
	FindByEmail(ctx context.Context, email string) (Principal, error)

	// GetByID fetches a principal by id.
	GetByID(ctx context.Context, id string) (Principal, error)

	// UpdateByID applies a partial update and returns the new state.
	UpdateByID(ctx context.Context, id string, upd Update) (Principal, error)

	// Authenticate checks credentials and returns the principal on
	// success, ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, email, password string) (Principal, error)

	// ListAll enumerates every principal. Only for fallback lookups
	// against directories without an email index; does not scale.
	ListAll(ctx context.Context) ([]Principal, error)
}

// Profile is the application-facing profile record kept alongside the
// directory identity.
type Profile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profiles is the outbound interface to the persistent profile store.
type Profiles interface {
	CreateProfile(ctx context.Context, p Profile) error
	GetProfile(ctx context.Context, id string) (Profile, error)
}
