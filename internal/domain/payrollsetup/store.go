package payrollsetup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) MasterComponents(ctx context.Context) ([]Component, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, component_type, COALESCE(default_amount, 0)
    FROM payroll_components
    ORDER BY component_type, name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ID, &c.Name, &c.ComponentType, &c.DefaultAmount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SavedLines(ctx context.Context, userID string) ([]Line, error) {
	var linesJSON []byte
	err := s.DB.QueryRow(ctx, "SELECT lines FROM payroll_setups WHERE user_id = $1", userID).Scan(&linesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		// No saved setup yet is the common case for new users.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []Line
	if err := json.Unmarshal(linesJSON, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal payroll lines: %w", err)
	}
	return lines, nil
}

func (s *Store) SaveLines(ctx context.Context, userID string, lines []Line) error {
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal payroll lines: %w", err)
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO payroll_setups (user_id, lines)
    VALUES ($1, $2)
    ON CONFLICT (user_id) DO UPDATE SET lines = EXCLUDED.lines, updated_at = now()
  `, userID, linesJSON)
	return err
}
