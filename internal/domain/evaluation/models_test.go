package evaluation

import (
	"math"
	"testing"
)

func TestRecomputeDerivesWeightedRatings(t *testing.T) {
	rec := EvaluationRecord{
		Scores: []KPIScore{
			{KPIID: "a", Score: 4, Weightage: 20, WeightedRating: 99}, // stale input ignored
			{KPIID: "b", Score: 3, Weightage: 40},
		},
	}
	rec.Recompute()

	if rec.Scores[0].WeightedRating != 0.8 {
		t.Fatalf("expected weighted rating 0.8, got %v", rec.Scores[0].WeightedRating)
	}
	if rec.Scores[1].WeightedRating != 1.2 {
		t.Fatalf("expected weighted rating 1.2, got %v", rec.Scores[1].WeightedRating)
	}
	if rec.TotalScore != 7 {
		t.Fatalf("expected total score 7, got %d", rec.TotalScore)
	}
	if math.Abs(rec.TotalWeightedRating-2.0) > 1e-9 {
		t.Fatalf("expected total weighted rating 2.0, got %v", rec.TotalWeightedRating)
	}
}

func TestRecomputeResetsStaleTotals(t *testing.T) {
	rec := EvaluationRecord{TotalScore: 50, TotalWeightedRating: 12}
	rec.Recompute()
	if rec.TotalScore != 0 || rec.TotalWeightedRating != 0 {
		t.Fatalf("expected totals reset for empty scores, got %d/%v", rec.TotalScore, rec.TotalWeightedRating)
	}
}
