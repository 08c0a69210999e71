package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/leadline/internal/model"
)

// AdminStore is the administrator allow-list, keyed by email.
type AdminStore struct {
	db *sql.DB
}

func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

// IsAdmin reports whether email is on the allow-list. Matching ignores case.
func (s *AdminStore) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	var found string
	err := s.db.QueryRowContext(ctx, `SELECT email FROM admins WHERE email = ?`, email).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	return true, nil
}

// Add allow-lists email. Adding an existing entry is a no-op.
func (s *AdminStore) Add(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO admins (email) VALUES (?)`,
		strings.TrimSpace(email),
	)
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (s *AdminStore) Remove(ctx context.Context, email string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM admins WHERE email = ?`, strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	return expectRow(result)
}

func (s *AdminStore) List(ctx context.Context) ([]model.Admin, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, created_at FROM admins ORDER BY email ASC`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []model.Admin
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.Email, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}
