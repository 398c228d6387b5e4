package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"evaltrack/internal/domain/evaluation"
)

// ErrUserNotFound aliases the reporting sentinel so directory misses stay
// distinguishable from query failures across the package boundary.
var ErrUserNotFound = evaluation.ErrIdentityNotFound

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// ReportUsers returns the active users eligible for reports, minus the given
// roles. The role filter runs here, before any aggregation, so excluded
// users never reach a denominator.
func (s *Store) ReportUsers(ctx context.Context, excludeRoles []string) ([]evaluation.Identity, error) {
	query := `
    SELECT u.id, COALESCE(u.first_name,''), COALESCE(u.last_name,''), COALESCE(r.name,''), COALESCE(r.description,''), COALESCE(u.joining_date, 'epoch'::timestamptz)
    FROM users u
    LEFT JOIN roles r ON u.role_id = r.id
    WHERE u.is_active`
	args := []any{}
	if len(excludeRoles) > 0 {
		query += " AND COALESCE(r.name,'') != ALL($1)"
		args = append(args, excludeRoles)
	}
	query += " ORDER BY u.first_name, u.last_name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []evaluation.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, identity)
	}
	return out, rows.Err()
}

func (s *Store) ReportUser(ctx context.Context, userID string) (evaluation.Identity, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT u.id, COALESCE(u.first_name,''), COALESCE(u.last_name,''), COALESCE(r.name,''), COALESCE(r.description,''), COALESCE(u.joining_date, 'epoch'::timestamptz)
    FROM users u
    LEFT JOIN roles r ON u.role_id = r.id
    WHERE u.id = $1
  `, userID)
	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return evaluation.Identity{}, ErrUserNotFound
	}
	return identity, err
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, COALESCE(u.first_name,''), COALESCE(u.last_name,''), u.primary_email, u.role_id, COALESCE(r.name,''), u.joining_date, u.is_active, u.created_at
    FROM users u
    LEFT JOIN roles r ON u.role_id = r.id
    ORDER BY u.created_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.PrimaryEmail, &u.RoleID, &u.RoleName, &u.JoiningDate, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, COALESCE(description,'') FROM roles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ActiveByRole returns the active users holding one role, with their email.
// The reminder sweep uses it for both the evaluated staff and the evaluators
// it notifies.
func (s *Store) ActiveByRole(ctx context.Context, roleName string) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, COALESCE(u.first_name,''), COALESCE(u.last_name,''), u.primary_email, u.role_id, r.name, u.joining_date, u.is_active, u.created_at
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.is_active AND r.name = $1
  `, roleName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.PrimaryEmail, &u.RoleID, &u.RoleName, &u.JoiningDate, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanIdentity(row pgx.Row) (evaluation.Identity, error) {
	var id evaluation.Identity
	var first, last string
	err := row.Scan(&id.UserID, &first, &last, &id.RoleName, &id.RoleDescription, &id.JoiningDate)
	if err != nil {
		return evaluation.Identity{}, err
	}
	id.FullName = User{FirstName: first, LastName: last}.FullName()
	return id, nil
}
