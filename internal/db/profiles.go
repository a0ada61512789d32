package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/zeyinlabs/zeyin/internal/profile"
)

// ErrNotFound reports that no profile row exists for the id. Callers decide
// whether to auto-create; any other error is a real failure and must not
// trigger creation.
var ErrNotFound = errors.New("profile not found")

func GetProfile(id string) (*profile.Profile, error) {
	var p profile.Profile
	err := DB.QueryRow(
		"SELECT id, email, name, role FROM profiles WHERE id = ?", id,
	).Scan(&p.ID, &p.Email, &p.Name, &p.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

func UpsertProfile(p profile.Profile) error {
	if !p.Role.Valid() {
		p.Role = profile.DefaultRole
	}
	_, err := DB.Exec(
		`INSERT INTO profiles (id, email, name, role) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email = excluded.email, name = excluded.name, role = excluded.role`,
		p.ID, p.Email, p.Name, string(p.Role),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
