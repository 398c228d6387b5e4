package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrKPINotFound = errors.New("kpi not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]KPI, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(description,''), weightage, created_at, updated_at
    FROM kpis
    ORDER BY created_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KPI
	for rows.Next() {
		var kpi KPI
		if err := rows.Scan(&kpi.ID, &kpi.Name, &kpi.Description, &kpi.Weightage, &kpi.CreatedAt, &kpi.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, kpi)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (KPI, error) {
	var kpi KPI
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(description,''), weightage, created_at, updated_at
    FROM kpis
    WHERE id = $1
  `, id).Scan(&kpi.ID, &kpi.Name, &kpi.Description, &kpi.Weightage, &kpi.CreatedAt, &kpi.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return KPI{}, ErrKPINotFound
	}
	return kpi, err
}

func (s *Store) Create(ctx context.Context, name, description string, weightage float64) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO kpis (name, description, weightage)
    VALUES ($1, $2, $3)
    RETURNING id
  `, name, description, weightage).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, id, name, description string, weightage float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE kpis
    SET name = $1, description = $2, weightage = $3, updated_at = now()
    WHERE id = $4
  `, name, description, weightage, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKPINotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM kpis WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKPINotFound
	}
	return nil
}
