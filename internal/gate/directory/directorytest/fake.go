// Package directorytest provides an in-memory directory double for
// service and handler tests.
package directorytest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/socialfin/authgate/internal/gate/directory"
	"github.com/socialfin/authgate/pkg/idx"
)

// Fake implements directory.Directory and directory.Profiles in
// memory. Safe for concurrent use.
type Fake struct {
	mu         sync.Mutex
	principals map[string]directory.Principal // by id
	passwords  map[string]string              // by id, plaintext (test only)
	profiles   map[string]directory.Profile   // by id

	// FailWith, when set, makes every call return this error. For
	// exercising fault paths.
	FailWith error
}

func New() *Fake {
	return &Fake{
		principals: make(map[string]directory.Principal),
		passwords:  make(map[string]string),
		profiles:   make(map[string]directory.Profile),
	}
}

func (f *Fake) CreatePrincipal(
	_ context.Context,
	email, password string,
	attrs directory.Attrs,
) (directory.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return directory.Principal{}, f.FailWith
	}

	for _, p := range f.principals {
		if strings.EqualFold(p.Email, email) {
			return directory.Principal{}, directory.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	p := directory.Principal{
		ID:        idx.New().String(),
		Email:     email,
		Active:    true,
		Attrs:     attrs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.principals[p.ID] = p
	f.passwords[p.ID] = password
	return p, nil
}

func (f *Fake) FindByEmail(_ context.Context, email string) (directory.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return directory.Principal{}, f.FailWith
	}

	for _, p := range f.principals {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return directory.Principal{}, directory.ErrNotFound
}

func (f *Fake) GetByID(_ context.Context, id string) (directory.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return directory.Principal{}, f.FailWith
	}

	p, ok := f.principals[id]
	if !ok {
		return directory.Principal{}, directory.ErrNotFound
	}
	return p, nil
}

func (f *Fake) UpdateByID(
	_ context.Context,
	id string,
	upd directory.Update,
) (directory.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return directory.Principal{}, f.FailWith
	}

	p, ok := f.principals[id]
	if !ok {
		return directory.Principal{}, directory.ErrNotFound
	}

	if upd.Password != nil {
		f.passwords[id] = *upd.Password
	}
	if upd.Verified != nil {
		p.Verified = *upd.Verified
	}
	if upd.Active != nil {
		p.Active = *upd.Active
	}
	if upd.Attrs != nil {
		p.Attrs = *upd.Attrs
	}
	p.UpdatedAt = time.Now().UTC()
	f.principals[id] = p
	return p, nil
}

func (f *Fake) Authenticate(_ context.Context, email, password string) (directory.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return directory.Principal{}, f.FailWith
	}

	for id, p := range f.principals {
		if strings.EqualFold(p.Email, email) && f.passwords[id] == password {
			return p, nil
		}
	}
	return directory.Principal{}, directory.ErrInvalidCredentials
}

func (f *Fake) ListAll(_ context.Context) ([]directory.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}

	out := make([]directory.Principal, 0, len(f.principals))
	for _, p := range f.principals {
		out = append(out, p)
	}
	return out, nil
}

func (f *Fake) CreateProfile(_ context.Context, p directory.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}

	if _, ok := f.profiles[p.ID]; ok {
		return directory.ErrAlreadyExists
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	f.profiles[p.ID] = p
	return nil
}

func (f *Fake) GetProfile(_ context.Context, id string) (directory.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return directory.Profile{}, f.FailWith
	}

	p, ok := f.profiles[id]
	if !ok {
		return directory.Profile{}, directory.ErrNotFound
	}
	return p, nil
}
