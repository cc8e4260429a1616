// Package embedded is a local directory implementation on SQLite for
// single-binary deployments and development. It owns credentials:
// passwords are hashed with Argon2id and verified here, so the rest of
// the façade never sees a password hash.
package embedded

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/socialfin/authgate/internal/gate/directory"
	"github.com/socialfin/authgate/pkg/cryptox"
	"github.com/socialfin/authgate/pkg/idx"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at dsn.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const principalColumns = `id, email, password_hash, verified, active,
	first_name, last_name, phone, created_at, updated_at`

func (s *Store) CreatePrincipal(
	ctx context.Context,
	email, password string,
	attrs directory.Attrs,
) (directory.Principal, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return directory.Principal{}, fmt.Errorf("embedded: hash password: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	p := directory.Principal{
		ID:        idx.New().String(),
		Email:     email,
		Active:    true,
		Attrs:     attrs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO principals (id, email, password_hash, verified, active,
			first_name, last_name, phone, created_at, updated_at)
		VALUES (?, ?, ?, 0, 1, ?, ?, ?, ?, ?)`,
		p.ID, email, hash,
		attrs.FirstName, attrs.LastName, attrs.Phone,
		now.Unix(), now.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return directory.Principal{}, directory.ErrAlreadyExists
		}
		return directory.Principal{}, err
	}

	return p, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (directory.Principal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE email = ?`, email)
	p, _, err := scanPrincipal(row)
	return p, err
}

func (s *Store) GetByID(ctx context.Context, id string) (directory.Principal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = ?`, id)
	p, _, err := scanPrincipal(row)
	return p, err
}

func (s *Store) UpdateByID(
	ctx context.Context,
	id string,
	upd directory.Update,
) (directory.Principal, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Unix()}

	if upd.Password != nil {
		hash, err := cryptox.HashPassword(*upd.Password)
		if err != nil {
			return directory.Principal{}, fmt.Errorf("embedded: hash password: %w", err)
		}
		sets = append(sets, "password_hash = ?")
		args = append(args, hash)
	}
	if upd.Verified != nil {
		sets = append(sets, "verified = ?")
		args = append(args, boolInt(*upd.Verified))
	}
	if upd.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, boolInt(*upd.Active))
	}
	if upd.Attrs != nil {
		sets = append(sets, "first_name = ?", "last_name = ?", "phone = ?")
		args = append(args, upd.Attrs.FirstName, upd.Attrs.LastName, upd.Attrs.Phone)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE principals SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return directory.Principal{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return directory.Principal{}, directory.ErrNotFound
	}

	return s.GetByID(ctx, id)
}

func (s *Store) Authenticate(ctx context.Context, email, password string) (directory.Principal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE email = ?`, email)

	p, hash, err := scanPrincipal(row)
	if err != nil {
		// Not-found and bad-password must look identical to callers.
		if errors.Is(err, directory.ErrNotFound) {
			return directory.Principal{}, directory.ErrInvalidCredentials
		}
		return directory.Principal{}, err
	}

	if err := cryptox.VerifyPassword(password, hash); err != nil {
		return directory.Principal{}, directory.ErrInvalidCredentials
	}

	return p, nil
}

func (s *Store) ListAll(ctx context.Context) ([]directory.Principal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+principalColumns+` FROM principals ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var principals []directory.Principal
	for rows.Next() {
		p, _, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(row scanner) (directory.Principal, string, error) {
	var (
		p                directory.Principal
		hash             string
		verified, active int
		created, updated int64
	)

	err := row.Scan(&p.ID, &p.Email, &hash, &verified, &active,
		&p.Attrs.FirstName, &p.Attrs.LastName, &p.Attrs.Phone, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directory.Principal{}, "", directory.ErrNotFound
		}
		return directory.Principal{}, "", err
	}

	p.Verified = verified != 0
	p.Active = active != 0
	p.CreatedAt = time.Unix(created, 0).UTC()
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return p, hash, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
