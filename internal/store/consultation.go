package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/leadline/internal/model"
)

type ConsultationStore struct {
	db *sql.DB
}

func NewConsultationStore(db *sql.DB) *ConsultationStore {
	return &ConsultationStore{db: db}
}

func scanConsultation(sc scanner) (*model.Consultation, error) {
	var c model.Consultation
	var agreed int
	var status sql.NullString
	err := sc.Scan(&c.ID, &c.Name, &c.PhoneNumber, &agreed, &status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.AgreedToPrivacyPolicy = agreed != 0
	c.Status = model.NormalizeStatus(status.String)
	return &c, nil
}

const consultationCols = `id, name, phone_number, agreed_to_privacy_policy, status, created_at`

// Create inserts a consultation request. The status column is left NULL.
func (s *ConsultationStore) Create(ctx context.Context, nc model.NewConsultation) (*model.Consultation, error) {
	var agreed int
	if nc.AgreedToPrivacyPolicy {
		agreed = 1
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO consultations (name, phone_number, agreed_to_privacy_policy) VALUES (?, ?, ?)`,
		nc.Name, nc.PhoneNumber, agreed,
	)
	if err != nil {
		return nil, fmt.Errorf("insert consultation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ConsultationStore) GetByID(ctx context.Context, id int64) (*model.Consultation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+consultationCols+` FROM consultations WHERE id = ?`, id)
	c, err := scanConsultation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get consultation: %w", err)
	}
	return c, nil
}

// List returns every consultation, newest first.
func (s *ConsultationStore) List(ctx context.Context) ([]model.Consultation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+consultationCols+` FROM consultations ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	defer rows.Close()

	var list []model.Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consultation: %w", err)
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

func (s *ConsultationStore) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE consultations SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update consultation status: %w", err)
	}
	return expectRow(result)
}

func (s *ConsultationStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM consultations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete consultation: %w", err)
	}
	return expectRow(result)
}

func expectRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
