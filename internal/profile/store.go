// Package profile reads user profile documents from the dashboard database.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"energy_dashboard/internal/model"
)

var ErrNotFound = errors.New("profile: user not found")

// SQLiteStore keeps user profiles in the users table.
type SQLiteStore struct {
	conn *sql.DB
}

func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{conn: conn}
}

// Get returns the profile for userID, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (model.UserProfile, error) {
	query := `
	SELECT id, name, electricity_provider
	FROM users
	WHERE id = ?
	`

	var p model.UserProfile
	err := s.conn.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.Name, &p.ElectricityProvider)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("querying user %q: %w", userID, err)
	}
	return p, nil
}

// Put inserts or replaces a profile.
func (s *SQLiteStore) Put(ctx context.Context, p model.UserProfile) error {
	if p.ID == "" {
		return errors.New("profile: empty user id")
	}

	query := `
	INSERT INTO users (id, name, electricity_provider, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name, electricity_provider = excluded.electricity_provider
	`
	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.conn.ExecContext(ctx, query, p.ID, p.Name, p.ElectricityProvider, createdAt); err != nil {
		return fmt.Errorf("saving user %q: %w", p.ID, err)
	}
	return nil
}
