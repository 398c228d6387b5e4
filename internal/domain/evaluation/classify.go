package evaluation

// Band is one row of the classification table: an inclusive upper bound on
// the averaged weighted rating plus the labels and increment tied to it.
type Band struct {
	UpperBound  float64 `json:"upperBound"`
	Performance string  `json:"performance"`
	Action      string  `json:"action"`
	Increment   float64 `json:"increment"`
}

// bands is evaluated in ascending order, first match wins. Upper bounds are
// inclusive at every tier; the source system mixed ">4" and "<=5" for the top
// band, which is the same interval either way.
var bands = []Band{
	{UpperBound: 1, Performance: PerformancePoor, Action: ActionUrgentMeeting, Increment: 0},
	{UpperBound: 2, Performance: PerformancePartial, Action: ActionHRMeeting, Increment: 0.5},
	{UpperBound: 3, Performance: PerformanceNormal, Action: ActionMotivate, Increment: 1},
	{UpperBound: 4, Performance: PerformanceGood, Action: ActionNothing, Increment: 1.5},
	{UpperBound: 5, Performance: PerformanceExcellent, Action: ActionBonus, Increment: 2},
}

// Rating is the classified outcome attached to a summary row.
type Rating struct {
	Performance string  `json:"performance"`
	Action      string  `json:"action"`
	Increment   float64 `json:"increment"`
}

// Classify maps an averaged weighted rating to its band. Inputs above the
// table clamp to the top band, negative inputs to the bottom one, so the
// function is total over any float.
func Classify(avg float64) Band {
	for _, band := range bands {
		if avg <= band.UpperBound {
			return band
		}
	}
	return bands[len(bands)-1]
}

// ClassifyRated is the denominator-aware entry point: no data means the
// neutral labels, never a tier computed from a defaulted-zero numerator.
func ClassifyRated(avg float64, denominator int) Rating {
	if denominator <= 0 {
		return Rating{Performance: PerformanceNoData, Action: ActionNone, Increment: 0}
	}
	band := Classify(avg)
	return Rating{Performance: band.Performance, Action: band.Action, Increment: band.Increment}
}

// IncrementFor returns the increment percentage for a single period's rating.
func IncrementFor(avg float64) float64 {
	return Classify(avg).Increment
}

// AnnualIncrement sums the per-month increments over a year of monthly
// averages. Months with a zero rating carry no data and contribute nothing,
// not IncrementFor(0).
func AnnualIncrement(monthlyAverages []float64) float64 {
	var total float64
	for _, avg := range monthlyAverages {
		if avg <= 0 {
			continue
		}
		total += IncrementFor(avg)
	}
	return total
}
