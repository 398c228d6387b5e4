package evaluation

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

// Upsert inserts a weekly evaluation or replaces the existing record for the
// same (user, year, month, week). Resubmission for a period replaces it; the
// unique index keeps duplicates out of new data.
func (s *Store) Upsert(ctx context.Context, rec *EvaluationRecord) (string, error) {
	scoresJSON, err := json.Marshal(rec.Scores)
	if err != nil {
		return "", fmt.Errorf("marshal scores: %w", err)
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO evaluations (user_id, year, month, week_number, week_start, week_end, scores, total_score, total_weighted_rating)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    ON CONFLICT (user_id, year, month, week_number) DO UPDATE
    SET week_start = EXCLUDED.week_start,
        week_end = EXCLUDED.week_end,
        scores = EXCLUDED.scores,
        total_score = EXCLUDED.total_score,
        total_weighted_rating = EXCLUDED.total_weighted_rating,
        updated_at = now()
    RETURNING id
  `, rec.UserID, rec.Year, rec.Month, rec.WeekNumber, rec.WeekStart, rec.WeekEnd, scoresJSON, rec.TotalScore, rec.TotalWeightedRating).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, rec *EvaluationRecord) error {
	scoresJSON, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET scores = $1, total_score = $2, total_weighted_rating = $3, updated_at = now()
    WHERE id = $4
  `, scoresJSON, rec.TotalScore, rec.TotalWeightedRating, rec.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (EvaluationRecord, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, user_id, year, month, week_number, week_start, week_end, scores, total_score, total_weighted_rating, created_at, updated_at
    FROM evaluations
    WHERE id = $1
  `, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return EvaluationRecord{}, ErrRecordNotFound
	}
	return rec, err
}

// ListWindow fetches records for the given (year, month) pairs, optionally
// restricted to one user, ordered by week end. Precise windowing (date
// ranges, week filter) happens in the scope layer on top of this.
func (s *Store) ListWindow(ctx context.Context, userID string, ranges []MonthRange) ([]EvaluationRecord, error) {
	if len(ranges) == 0 {
		return nil, nil
	}

	// Encode each (year, month) pair as year*100+month for a single ANY match.
	keys := make([]int, 0, len(ranges))
	for _, r := range ranges {
		keys = append(keys, r.Year*100+r.Month)
	}

	query := `
    SELECT id, user_id, year, month, week_number, week_start, week_end, scores, total_score, total_weighted_rating, created_at, updated_at
    FROM evaluations
    WHERE year * 100 + month = ANY($1)`
	args := []any{keys}
	if userID != "" {
		query += " AND user_id = $2"
		args = append(args, userID)
	}
	query += " ORDER BY week_end"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EvaluationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteLatestWeek removes the most recent submitted week for a user and
// month, which is the common correction flow after a bad submission.
func (s *Store) DeleteLatestWeek(ctx context.Context, userID string, year, month int) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM evaluations
    WHERE id = (
      SELECT id FROM evaluations
      WHERE user_id = $1 AND year = $2 AND month = $3
      ORDER BY week_number DESC
      LIMIT 1
    )
  `, userID, year, month)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoWeekToDelete
	}
	return nil
}

// HasRecordForWeek backs the reminder sweep.
func (s *Store) HasRecordForWeek(ctx context.Context, userID string, year, month, week int) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM evaluations
    WHERE user_id = $1 AND year = $2 AND month = $3 AND week_number = $4
  `, userID, year, month, week).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (EvaluationRecord, error) {
	var rec EvaluationRecord
	var scoresJSON []byte
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Year, &rec.Month, &rec.WeekNumber, &rec.WeekStart, &rec.WeekEnd, &scoresJSON, &rec.TotalScore, &rec.TotalWeightedRating, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return EvaluationRecord{}, err
	}
	if len(scoresJSON) > 0 {
		if err := json.Unmarshal(scoresJSON, &rec.Scores); err != nil {
			return EvaluationRecord{}, fmt.Errorf("unmarshal scores: %w", err)
		}
	}
	return rec, nil
}
