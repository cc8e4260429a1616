package embedded

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/socialfin/authgate/internal/gate/directory"
)

func (s *Store) CreateProfile(ctx context.Context, p directory.Profile) error {
	now := time.Now().UTC().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, first_name, last_name, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.FirstName, p.LastName, p.Phone, now, now,
	)
	if isUniqueViolation(err) {
		return directory.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetProfile(ctx context.Context, id string) (directory.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, phone, created_at, updated_at
		FROM profiles WHERE id = ?`, id)

	var (
		p                directory.Profile
		created, updated int64
	)
	err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Phone, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directory.Profile{}, directory.ErrNotFound
		}
		return directory.Profile{}, err
	}

	p.CreatedAt = time.Unix(created, 0).UTC()
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return p, nil
}
