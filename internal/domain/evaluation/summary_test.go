package evaluation

import (
	"testing"
	"time"
)

func TestBuildSummaryZeroData(t *testing.T) {
	id := Identity{UserID: "u1", FullName: "Jane Doe", RoleName: "Staff"}
	agg := AggregatePeriod(MonthRanges(2025, []int{4}), nil)

	row := BuildSummary(id, agg, MonthDenominator(agg.ActiveMonths))
	if row.UserID != "u1" || row.FullName != "Jane Doe" {
		t.Fatalf("identity not joined: %+v", row)
	}
	if row.TotalScore != 0 || row.TotalWeightedRating != 0 || row.AvgWeightedRating != 0 {
		t.Fatalf("expected zero numerics, got %+v", row)
	}
	if row.Performance != PerformanceNoData || row.Action != ActionNone {
		t.Fatalf("expected no-data labels, got %q/%q", row.Performance, row.Action)
	}
	if row.HasActivity() {
		t.Fatal("zero-data row must report no activity")
	}
}

func TestBuildSummaryScenarioSingleWeekOfMarch(t *testing.T) {
	// One record for week 1 of March: KPI A score 5 weight 60, KPI B
	// score 3 weight 40. Week filter [1] overrides the denominator to 1.
	rec := EvaluationRecord{
		UserID:     "u1",
		Year:       2025,
		Month:      3,
		WeekNumber: 1,
		WeekStart:  time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		WeekEnd:    time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC),
		Scores: []KPIScore{
			{KPIID: "A", Score: 5, Weightage: 60},
			{KPIID: "B", Score: 3, Weightage: 40},
		},
	}
	rec.Recompute()

	if rec.TotalScore != 8 {
		t.Fatalf("expected total score 8, got %d", rec.TotalScore)
	}
	if diff := rec.TotalWeightedRating - 4.2; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected total weighted rating 4.2, got %v", rec.TotalWeightedRating)
	}

	agg := AggregatePeriod(MonthRanges(2025, []int{3}), []EvaluationRecord{rec})
	denom := WeekDenominator([]int{1}, agg.ActiveMonths > 0)
	if denom != 1 {
		t.Fatalf("expected week-filter denominator 1, got %d", denom)
	}

	row := BuildSummary(Identity{UserID: "u1"}, agg, denom)
	if diff := row.AvgWeightedRating - 4.2; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected average 4.2, got %v", row.AvgWeightedRating)
	}
	if row.Performance != PerformanceExcellent {
		t.Fatalf("expected Excellent, got %q", row.Performance)
	}
	if row.Action != ActionBonus {
		t.Fatalf("expected Bonus, got %q", row.Action)
	}
	if row.TotalWeightage != 100 {
		t.Fatalf("expected total weightage 100, got %v", row.TotalWeightage)
	}
}
