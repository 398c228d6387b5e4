package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	records []EvaluationRecord
	deleted []string
}

func (f *fakeStore) Upsert(_ context.Context, rec *EvaluationRecord) (string, error) {
	for i := range f.records {
		existing := &f.records[i]
		if existing.UserID == rec.UserID && existing.Year == rec.Year && existing.Month == rec.Month && existing.WeekNumber == rec.WeekNumber {
			rec.ID = existing.ID
			*existing = *rec
			return existing.ID, nil
		}
	}
	rec.ID = "rec-" + rec.UserID
	f.records = append(f.records, *rec)
	return rec.ID, nil
}

func (f *fakeStore) Update(_ context.Context, rec *EvaluationRecord) error {
	for i := range f.records {
		if f.records[i].ID == rec.ID {
			f.records[i] = *rec
			return nil
		}
	}
	return ErrRecordNotFound
}

func (f *fakeStore) GetByID(_ context.Context, id string) (EvaluationRecord, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return EvaluationRecord{}, ErrRecordNotFound
}

func (f *fakeStore) ListWindow(_ context.Context, userID string, ranges []MonthRange) ([]EvaluationRecord, error) {
	var out []EvaluationRecord
	for _, rec := range f.records {
		if userID != "" && rec.UserID != userID {
			continue
		}
		for _, r := range ranges {
			if rec.Year == r.Year && rec.Month == r.Month {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteLatestWeek(_ context.Context, userID string, year, month int) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeStore) HasRecordForWeek(_ context.Context, userID string, year, month, week int) (bool, error) {
	for _, rec := range f.records {
		if rec.UserID == userID && rec.Year == year && rec.Month == month && rec.WeekNumber == week {
			return true, nil
		}
	}
	return false, nil
}

type fakeDirectory struct {
	identities []Identity
	lookupErr  error
}

func (f *fakeDirectory) ReportUsers(_ context.Context, excludeRoles []string) ([]Identity, error) {
	var out []Identity
	for _, id := range f.identities {
		excluded := false
		for _, role := range excludeRoles {
			if id.RoleName == role {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ReportUser(_ context.Context, userID string) (Identity, error) {
	if f.lookupErr != nil {
		return Identity{}, f.lookupErr
	}
	for _, id := range f.identities {
		if id.UserID == userID {
			return id, nil
		}
	}
	return Identity{}, ErrIdentityNotFound
}

func newTestService(records []EvaluationRecord, identities []Identity) (*Service, *fakeStore) {
	store := &fakeStore{records: records}
	return NewService(store, &fakeDirectory{identities: identities}), store
}

func TestSubmitRecomputesBeforePersist(t *testing.T) {
	svc, store := newTestService(nil, nil)
	rec := EvaluationRecord{
		UserID:     "u1",
		WeekNumber: 1,
		WeekStart:  time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		WeekEnd:    time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC),
		Scores:     []KPIScore{{KPIID: "a", Score: 4, Weightage: 20, WeightedRating: 99}},
	}

	if _, err := svc.Submit(context.Background(), &rec); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	stored := store.records[0]
	if stored.Year != 2025 || stored.Month != 3 {
		t.Fatalf("expected year/month derived from weekEnd, got %d/%d", stored.Year, stored.Month)
	}
	if stored.Scores[0].WeightedRating != 0.8 {
		t.Fatalf("expected recomputed rating 0.8, got %v", stored.Scores[0].WeightedRating)
	}
}

func TestSubmitReplacesSamePeriod(t *testing.T) {
	svc, store := newTestService(nil, nil)
	first := weekRecord("u1", 2025, time.March, 1, []KPIScore{{KPIID: "a", Score: 2, Weightage: 100}})
	if _, err := svc.Submit(context.Background(), &first); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second := weekRecord("u1", 2025, time.March, 1, []KPIScore{{KPIID: "a", Score: 5, Weightage: 100}})
	if _, err := svc.Submit(context.Background(), &second); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected upsert to replace, got %d records", len(store.records))
	}
	if store.records[0].TotalScore != 5 {
		t.Fatalf("expected replaced score 5, got %d", store.records[0].TotalScore)
	}
}

func TestWeeklyReportEmptyScopeYieldsNoDataRows(t *testing.T) {
	identities := []Identity{{UserID: "u1", FullName: "Jane Doe", RoleName: "Staff"}}
	svc, _ := newTestService(nil, identities)

	rows, err := svc.WeeklyReport(context.Background(), Scope{Year: 2025, Months: []int{3}})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row per in-scope user, got %d", len(rows))
	}
	if rows[0].Performance != PerformanceNoData || rows[0].AvgWeightedRating != 0 {
		t.Fatalf("expected no-data row, got %+v", rows[0])
	}
}

func TestWeeklyReportWeekFilterOnEmptyScopeStaysNoData(t *testing.T) {
	// A week selection against a store with no matching records must not
	// turn the zero denominator into len(weeks) and rate the row Poor.
	identities := []Identity{{UserID: "u1", FullName: "Jane Doe", RoleName: "Staff"}}
	svc, _ := newTestService(nil, identities)

	rows, err := svc.WeeklyReport(context.Background(), Scope{Year: 2025, Months: []int{3}, Weeks: []int{1}})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0].Denominator != 0 {
		t.Fatalf("expected denominator 0 for empty week selection, got %d", rows[0].Denominator)
	}
	if rows[0].Performance != PerformanceNoData || rows[0].Action != ActionNone {
		t.Fatalf("expected %q/%q, got %q/%q", PerformanceNoData, ActionNone, rows[0].Performance, rows[0].Action)
	}
}

func TestMonthlyReportActiveMonthDenominator(t *testing.T) {
	identities := []Identity{{UserID: "u1", FullName: "Jane Doe"}}
	records := []EvaluationRecord{
		weekRecord("u1", 2025, time.January, 1, []KPIScore{{KPIID: "a", Score: 4, Weightage: 100}}),
		weekRecord("u1", 2025, time.March, 1, []KPIScore{{KPIID: "a", Score: 4, Weightage: 100}}),
	}
	svc, _ := newTestService(records, identities)

	rows, err := svc.MonthlyReport(context.Background(), Scope{Year: 2025, Months: []int{1, 2, 3}})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if rows[0].Denominator != 8 {
		t.Fatalf("expected denominator 8 for 2 active of 3 months, got %d", rows[0].Denominator)
	}
	if rows[0].ActiveMonths != 2 {
		t.Fatalf("expected 2 active months, got %d", rows[0].ActiveMonths)
	}
	if diff := rows[0].AvgWeightedRating - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected average 1.0, got %v", rows[0].AvgWeightedRating)
	}
}

func TestTeamReportExcludesRoleAndZeroActivity(t *testing.T) {
	identities := []Identity{
		{UserID: "u1", FullName: "Jane Doe", RoleName: "Staff"},
		{UserID: "u2", FullName: "Idle User", RoleName: "Staff"},
		{UserID: "u3", FullName: "Root", RoleName: "Super Admin"},
	}
	records := []EvaluationRecord{
		weekRecord("u1", 2025, time.March, 1, []KPIScore{{KPIID: "a", Score: 4, Weightage: 100}}),
		weekRecord("u3", 2025, time.March, 1, []KPIScore{{KPIID: "a", Score: 5, Weightage: 100}}),
	}
	svc, _ := newTestService(records, identities)

	rows, err := svc.TeamReport(context.Background(), Scope{Year: 2025, Months: []int{3}}, []string{"Super Admin"})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(rows))
	}
	if rows[0].UserID != "u1" {
		t.Fatalf("expected only u1, got %s", rows[0].UserID)
	}
}

func TestIncrementReportSumsPerMonth(t *testing.T) {
	identities := []Identity{{UserID: "u1", FullName: "Jane Doe"}}
	records := []EvaluationRecord{
		// February: one week, rating 2.5 -> increment 1.
		weekRecord("u1", 2025, time.February, 1, []KPIScore{
			{KPIID: "a", Score: 5, Weightage: 100},
			{KPIID: "b", Score: 5, Weightage: 100},
		}),
		// April: one week, rating 4.5 -> increment 2.
		weekRecord("u1", 2025, time.April, 1, []KPIScore{
			{KPIID: "a", Score: 5, Weightage: 100},
			{KPIID: "b", Score: 5, Weightage: 100},
			{KPIID: "c", Score: 5, Weightage: 100},
			{KPIID: "d", Score: 3, Weightage: 100},
		}),
	}
	svc, _ := newTestService(records, identities)

	rows, err := svc.IncrementReport(context.Background(), 2025)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	row := rows[0]
	if len(row.MonthlyAverages) != 12 {
		t.Fatalf("expected 12 monthly averages, got %d", len(row.MonthlyAverages))
	}
	if diff := row.MonthlyAverages[1] - 2.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected February average 2.5, got %v", row.MonthlyAverages[1])
	}
	if diff := row.MonthlyAverages[3] - 4.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected April average 4.5, got %v", row.MonthlyAverages[3])
	}
	if row.MonthlyAverages[0] != 0 {
		t.Fatalf("expected empty January average 0, got %v", row.MonthlyAverages[0])
	}
	if diff := row.TotalIncrement - 3.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected total increment 3, got %v", row.TotalIncrement)
	}
}

func TestSelfDashboardRollingWindowWrapsYear(t *testing.T) {
	identities := []Identity{{UserID: "u1", FullName: "Jane Doe", RoleName: "Staff"}}
	records := []EvaluationRecord{
		// November of the previous year is inside the Feb-2025 window.
		weekRecord("u1", 2024, time.November, 1, []KPIScore{{KPIID: "a", Score: 4, Weightage: 100}}),
		weekRecord("u1", 2025, time.January, 1, []KPIScore{{KPIID: "a", Score: 4, Weightage: 100}}),
	}
	svc, _ := newTestService(records, identities)

	row, err := svc.SelfDashboard(context.Background(), "u1", 2025, 2)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if row.ActiveMonths != 2 {
		t.Fatalf("expected 2 active months across the year boundary, got %d", row.ActiveMonths)
	}
	if row.Denominator != 8 {
		t.Fatalf("expected denominator 8, got %d", row.Denominator)
	}
	if diff := row.AvgWeightedRating - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected average 1.0, got %v", row.AvgWeightedRating)
	}
}

func TestSelfDashboardToleratesIdentityMiss(t *testing.T) {
	svc, _ := newTestService(nil, nil)
	row, err := svc.SelfDashboard(context.Background(), "ghost", 2025, 6)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if row.UserID != "ghost" || row.FullName != "" {
		t.Fatalf("expected permissive identity defaults, got %+v", row)
	}
	if row.Performance != PerformanceNoData {
		t.Fatalf("expected no-data tier, got %q", row.Performance)
	}
}

func TestSelfDashboardPropagatesDirectoryFailure(t *testing.T) {
	// A connectivity failure in the user directory is not a miss; it must
	// surface instead of quietly producing an unlabeled row.
	dirErr := errors.New("directory unavailable")
	store := &fakeStore{}
	svc := NewService(store, &fakeDirectory{lookupErr: dirErr})

	if _, err := svc.SelfDashboard(context.Background(), "u1", 2025, 6); !errors.Is(err, dirErr) {
		t.Fatalf("expected directory error to propagate, got %v", err)
	}
	if _, err := svc.WeeklyReport(context.Background(), Scope{UserID: "u1", Year: 2025, Months: []int{3}}); !errors.Is(err, dirErr) {
		t.Fatalf("expected scoped report to propagate directory error, got %v", err)
	}
}
