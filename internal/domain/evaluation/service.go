package evaluation

import (
	"context"
	"errors"
)

// StoreAPI is the persistence surface the service depends on.
type StoreAPI interface {
	Upsert(ctx context.Context, rec *EvaluationRecord) (string, error)
	Update(ctx context.Context, rec *EvaluationRecord) error
	GetByID(ctx context.Context, id string) (EvaluationRecord, error)
	ListWindow(ctx context.Context, userID string, ranges []MonthRange) ([]EvaluationRecord, error)
	DeleteLatestWeek(ctx context.Context, userID string, year, month int) error
	HasRecordForWeek(ctx context.Context, userID string, year, month, week int) (bool, error)
}

// IdentityDirectory supplies the user fields summary rows are joined with.
type IdentityDirectory interface {
	ReportUsers(ctx context.Context, excludeRoles []string) ([]Identity, error)
	ReportUser(ctx context.Context, userID string) (Identity, error)
}

type Service struct {
	store StoreAPI
	users IdentityDirectory
}

func NewService(store StoreAPI, users IdentityDirectory) *Service {
	return &Service{store: store, users: users}
}

// Submit persists a week's scores, recomputing every derived field first.
// Resubmission for the same (user, year, month, week) replaces the record.
func (s *Service) Submit(ctx context.Context, rec *EvaluationRecord) (string, error) {
	if rec.Year == 0 || rec.Month == 0 {
		rec.Year = rec.WeekEnd.Year()
		rec.Month = int(rec.WeekEnd.Month())
	}
	rec.Recompute()
	return s.store.Upsert(ctx, rec)
}

// Resubmit replaces the scores of an existing record by id.
func (s *Service) Resubmit(ctx context.Context, id string, scores []KPIScore) (EvaluationRecord, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return EvaluationRecord{}, err
	}
	rec.Scores = scores
	rec.Recompute()
	if err := s.store.Update(ctx, &rec); err != nil {
		return EvaluationRecord{}, err
	}
	return rec, nil
}

func (s *Service) DeleteLatestWeek(ctx context.Context, userID string, year, month int) error {
	return s.store.DeleteLatestWeek(ctx, userID, year, month)
}

// ListScoped returns the records matching the scope's window.
func (s *Service) ListScoped(ctx context.Context, scope Scope) ([]EvaluationRecord, error) {
	ranges := scope.Ranges()
	records, err := s.store.ListWindow(ctx, scope.UserID, ranges)
	if err != nil {
		return nil, err
	}
	var out []EvaluationRecord
	for _, rec := range records {
		if scope.Matches(rec, ranges) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// WeeklyReport produces one row per in-scope user for a single month, with
// the explicit week selection overriding the flat-four denominator.
func (s *Service) WeeklyReport(ctx context.Context, scope Scope) ([]SummaryRow, error) {
	return s.report(ctx, scope, nil, func(agg PeriodAggregate) int {
		return WeekDenominator(scope.Weeks, agg.ActiveMonths > 0)
	}, false)
}

// MonthlyReport produces one row per in-scope user across the selected
// months; each month with data contributes four units to the denominator.
func (s *Service) MonthlyReport(ctx context.Context, scope Scope) ([]SummaryRow, error) {
	return s.report(ctx, scope, nil, func(agg PeriodAggregate) int {
		return MonthDenominator(agg.ActiveMonths)
	}, false)
}

// TeamReport is the monthly report restricted to regular staff: the Super
// Admin role is excluded before aggregation and zero-activity rows are
// dropped by policy.
func (s *Service) TeamReport(ctx context.Context, scope Scope, excludeRoles []string) ([]SummaryRow, error) {
	return s.report(ctx, scope, excludeRoles, func(agg PeriodAggregate) int {
		return MonthDenominator(agg.ActiveMonths)
	}, true)
}

func (s *Service) report(ctx context.Context, scope Scope, excludeRoles []string, denominator func(PeriodAggregate) int, activityOnly bool) ([]SummaryRow, error) {
	identities, err := s.scopeIdentities(ctx, scope, excludeRoles)
	if err != nil {
		return nil, err
	}

	ranges := scope.Ranges()
	records, err := s.store.ListWindow(ctx, scope.UserID, ranges)
	if err != nil {
		return nil, err
	}
	byUser := groupByUser(scope, ranges, records)

	rows := make([]SummaryRow, 0, len(identities))
	for _, id := range identities {
		agg := AggregatePeriod(ranges, byUser[id.UserID])
		row := BuildSummary(id, agg, denominator(agg))
		if activityOnly && !row.HasActivity() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// IncrementRow is one user's yearly increment eligibility: the per-month
// averages and the cumulative increment over the year.
type IncrementRow struct {
	UserID          string    `json:"userId"`
	FullName        string    `json:"fullName"`
	RoleName        string    `json:"roleName"`
	RoleDescription string    `json:"roleDescription"`
	MonthlyAverages []float64 `json:"monthlyAverages"`
	TotalIncrement  float64   `json:"totalIncrement"`
}

// IncrementReport computes increment eligibility for a whole year: each
// month is classified on its own average and the increments are summed, with
// no-data months contributing zero.
func (s *Service) IncrementReport(ctx context.Context, year int) ([]IncrementRow, error) {
	identities, err := s.users.ReportUsers(ctx, nil)
	if err != nil {
		return nil, err
	}

	months := make([]int, 12)
	for i := range months {
		months[i] = i + 1
	}
	ranges := MonthRanges(year, months)

	records, err := s.store.ListWindow(ctx, "", ranges)
	if err != nil {
		return nil, err
	}
	byUser := groupByUser(Scope{Year: year, Months: months}, ranges, records)

	rows := make([]IncrementRow, 0, len(identities))
	for _, id := range identities {
		agg := AggregatePeriod(ranges, byUser[id.UserID])
		averages := make([]float64, 0, len(agg.Months))
		for _, month := range agg.Months {
			denom := 0
			if month.HasData() {
				denom = WeeksPerMonth
			}
			averages = append(averages, Average(month.TotalWeightedRating, denom))
		}
		rows = append(rows, IncrementRow{
			UserID:          id.UserID,
			FullName:        id.FullName,
			RoleName:        id.RoleName,
			RoleDescription: id.RoleDescription,
			MonthlyAverages: averages,
			TotalIncrement:  AnnualIncrement(averages),
		})
	}
	return rows, nil
}

// SelfDashboard is the staff member's own rolling six-month view ending at
// the given month, wrapping into the previous year when needed.
func (s *Service) SelfDashboard(ctx context.Context, userID string, year, month int) (SummaryRow, error) {
	ranges := RollingMonths(year, month, 6)

	records, err := s.store.ListWindow(ctx, userID, ranges)
	if err != nil {
		return SummaryRow{}, err
	}
	agg := AggregatePeriod(ranges, records)

	identity, err := s.lookupIdentity(ctx, userID)
	if err != nil {
		return SummaryRow{}, err
	}
	return BuildSummary(identity, agg, MonthDenominator(agg.ActiveMonths)), nil
}

func (s *Service) scopeIdentities(ctx context.Context, scope Scope, excludeRoles []string) ([]Identity, error) {
	if scope.UserID != "" {
		identity, err := s.lookupIdentity(ctx, scope.UserID)
		if err != nil {
			return nil, err
		}
		return []Identity{identity}, nil
	}
	return s.users.ReportUsers(ctx, excludeRoles)
}

// lookupIdentity is permissive about a genuine directory miss: an evaluation
// referencing a user the directory no longer knows still reports, with empty
// labels. Any other directory error propagates.
func (s *Service) lookupIdentity(ctx context.Context, userID string) (Identity, error) {
	identity, err := s.users.ReportUser(ctx, userID)
	if errors.Is(err, ErrIdentityNotFound) {
		return Identity{UserID: userID}, nil
	}
	if err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func groupByUser(scope Scope, ranges []MonthRange, records []EvaluationRecord) map[string][]EvaluationRecord {
	byUser := map[string][]EvaluationRecord{}
	for _, rec := range records {
		if !scope.Matches(rec, ranges) {
			continue
		}
		byUser[rec.UserID] = append(byUser[rec.UserID], rec)
	}
	return byUser
}

// IsNotFound reports whether err is one of the domain's not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrNoWeekToDelete)
}
