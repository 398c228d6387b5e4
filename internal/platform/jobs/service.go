package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"evaltrack/internal/domain/auth"
	"evaltrack/internal/domain/evaluation"
	"evaltrack/internal/domain/identity"
	"evaltrack/internal/platform/config"
	"evaltrack/internal/platform/email"
)

const JobEvaluationReminder = "evaluation_reminder"

type Service struct {
	DB          *pgxpool.Pool
	Cfg         config.Config
	Mailer      email.Mailer
	Identities  *identity.Store
	Evaluations *evaluation.Store
	queue       chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, mailer email.Mailer, identities *identity.Store, evaluations *evaluation.Store) *Service {
	return &Service{
		DB:          db,
		Cfg:         cfg,
		Mailer:      mailer,
		Identities:  identities,
		Evaluations: evaluations,
		queue:       make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ReminderInterval > 0 {
		go s.scheduleReminders(ctx, s.Cfg.ReminderInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleReminders(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobEvaluationReminder, func(ctx context.Context) (any, error) {
				return s.sweepMissingEvaluations(ctx, time.Now().UTC())
			})
		}
	}
}

// sweepMissingEvaluations finds active staff with no submitted evaluation for
// the current calendar week and emails the active evaluators a digest. The
// week number is the day-of-month bucketed into four slots, matching how
// submissions assign weeks when none is given.
func (s *Service) sweepMissingEvaluations(ctx context.Context, now time.Time) (any, error) {
	year, month := now.Year(), int(now.Month())
	week := evaluation.WeekOf(now)

	staff, err := s.Identities.ActiveByRole(ctx, auth.RoleStaff)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}

	var missing []string
	for _, u := range staff {
		ok, err := s.Evaluations.HasRecordForWeek(ctx, u.ID, year, month, week)
		if err != nil {
			return nil, fmt.Errorf("check week record for %s: %w", u.ID, err)
		}
		if !ok {
			missing = append(missing, u.FullName())
		}
	}

	result := map[string]any{
		"year":    year,
		"month":   month,
		"week":    week,
		"missing": len(missing),
	}
	if len(missing) == 0 {
		return result, nil
	}

	evaluators, err := s.Identities.ActiveByRole(ctx, auth.RoleEvaluator)
	if err != nil {
		return nil, fmt.Errorf("list evaluators: %w", err)
	}

	subject := fmt.Sprintf("Pending evaluations for %04d-%02d week %d", year, month, week)
	body := fmt.Sprintf(
		"The following staff have no evaluation recorded for week %d of %04d-%02d:\n\n%s\n",
		week, year, month, strings.Join(missing, "\n"),
	)
	notified := 0
	for _, ev := range evaluators {
		if ev.PrimaryEmail == "" {
			continue
		}
		if err := s.Mailer.Send(ctx, s.Cfg.EmailFrom, ev.PrimaryEmail, subject, body); err != nil {
			slog.Warn("reminder email failed", "to", ev.PrimaryEmail, "err", err)
			continue
		}
		notified++
	}
	result["notified"] = notified
	return result, nil
}
