package catalog

import "time"

// KPI is one catalog entry. Weightage here is the current catalog value;
// submitted evaluations capture their own copy and are never reweighted when
// the catalog changes.
type KPI struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Weightage   float64   `json:"weightage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TotalWeightage sums the catalog weights. The convention is that they add
// up to 100, but nothing enforces it; the aggregation engine only consumes
// per-score weights.
func TotalWeightage(kpis []KPI) float64 {
	var total float64
	for _, kpi := range kpis {
		total += kpi.Weightage
	}
	return total
}
