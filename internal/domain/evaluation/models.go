package evaluation

import "time"

// KPIScore is one KPI's score inside a weekly evaluation. Weightage is
// captured at evaluation time; later catalog edits never reweight it.
type KPIScore struct {
	KPIID          string  `json:"kpiId"`
	KPIName        string  `json:"kpiName,omitempty"`
	Score          int     `json:"score"`
	Weightage      float64 `json:"weightage"`
	WeightedRating float64 `json:"weightedRating"`
}

type EvaluationRecord struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	Year                int        `json:"year"`
	Month               int        `json:"month"`
	WeekNumber          int        `json:"weekNumber"`
	WeekStart           time.Time  `json:"weekStart"`
	WeekEnd             time.Time  `json:"weekEnd"`
	Scores              []KPIScore `json:"scores"`
	TotalScore          int        `json:"totalScore"`
	TotalWeightedRating float64    `json:"totalWeightedRating"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Recompute derives every WeightedRating and both totals from Scores.
// Stored derived fields are never trusted from input.
func (r *EvaluationRecord) Recompute() {
	r.TotalScore = 0
	r.TotalWeightedRating = 0
	for i := range r.Scores {
		r.Scores[i].WeightedRating = float64(r.Scores[i].Score) * r.Scores[i].Weightage / 100
		r.TotalScore += r.Scores[i].Score
		r.TotalWeightedRating += r.Scores[i].WeightedRating
	}
}
