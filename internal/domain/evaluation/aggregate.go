package evaluation

import (
	"sort"
	"time"
)

// KPIAggregate is the per-KPI roll-up across one or more weeks. Weightage is
// the first value seen for the KPI; weights are assumed constant per KPI
// within a scope.
type KPIAggregate struct {
	KPIID          string    `json:"kpiId"`
	KPIName        string    `json:"kpiName,omitempty"`
	Score          int       `json:"score"`
	WeightedRating float64   `json:"weightedRating"`
	Weightage      float64   `json:"weightage"`
	WeekStart      time.Time `json:"weekStart"`
	WeekEnd        time.Time `json:"weekEnd"`
}

// MonthAggregate rolls the weeks of one calendar month together.
// WeekNumbers lists the weeks that actually had a submitted evaluation, so a
// skipped week is absent rather than counted as a zero.
type MonthAggregate struct {
	Year                int            `json:"year"`
	Month               int            `json:"month"`
	KPIs                []KPIAggregate `json:"scores"`
	TotalScore          int            `json:"totalScore"`
	TotalWeightedRating float64        `json:"totalWeightedRating"`
	TotalWeightage      float64        `json:"totalWeightage"`
	WeekNumbers         []int          `json:"weekNumbers"`
	WeekStart           time.Time      `json:"weekStart"`
	WeekEnd             time.Time      `json:"weekEnd"`
}

// HasData reports whether any evaluation contributed to the month.
func (m MonthAggregate) HasData() bool {
	return len(m.WeekNumbers) > 0
}

// PeriodAggregate rolls one or more months together. ActiveMonths counts only
// months with at least one evaluation record; it drives the denominator.
type PeriodAggregate struct {
	Months              []MonthAggregate `json:"months"`
	KPIs                []KPIAggregate   `json:"scores"`
	TotalScore          int              `json:"totalScore"`
	TotalWeightedRating float64          `json:"totalWeightedRating"`
	TotalWeightage      float64          `json:"totalWeightage"`
	ActiveMonths        int              `json:"activeMonthsCount"`
	WeekNumbers         []int            `json:"weekNumbers"`
	WeekStart           time.Time        `json:"weekStart"`
	WeekEnd             time.Time        `json:"weekEnd"`
}

// AggregateByKPI flattens the records' score lists and groups them by KPI,
// summing score and weighted rating and tracking the covered period. KPIs
// absent from a record contribute nothing; they are missing, not zero.
func AggregateByKPI(records []EvaluationRecord) []KPIAggregate {
	index := map[string]int{}
	var out []KPIAggregate
	for _, rec := range records {
		for _, score := range rec.Scores {
			pos, seen := index[score.KPIID]
			if !seen {
				index[score.KPIID] = len(out)
				out = append(out, KPIAggregate{
					KPIID:     score.KPIID,
					KPIName:   score.KPIName,
					Weightage: score.Weightage,
					WeekStart: rec.WeekStart,
					WeekEnd:   rec.WeekEnd,
				})
				pos = len(out) - 1
			}
			out[pos].Score += score.Score
			out[pos].WeightedRating += score.WeightedRating
			if rec.WeekStart.Before(out[pos].WeekStart) {
				out[pos].WeekStart = rec.WeekStart
			}
			if rec.WeekEnd.After(out[pos].WeekEnd) {
				out[pos].WeekEnd = rec.WeekEnd
			}
		}
	}
	return out
}

// AggregateMonth groups one month's records. Duplicate (user, week) rows are
// summed; the composite unique index prevents new duplicates but historical
// data may still carry them.
func AggregateMonth(year, month int, records []EvaluationRecord) MonthAggregate {
	agg := MonthAggregate{Year: year, Month: month, KPIs: AggregateByKPI(records)}

	weekSet := map[int]bool{}
	for _, rec := range records {
		agg.TotalScore += rec.TotalScore
		agg.TotalWeightedRating += rec.TotalWeightedRating
		weekSet[rec.WeekNumber] = true
		if agg.WeekStart.IsZero() || rec.WeekStart.Before(agg.WeekStart) {
			agg.WeekStart = rec.WeekStart
		}
		if rec.WeekEnd.After(agg.WeekEnd) {
			agg.WeekEnd = rec.WeekEnd
		}
	}
	for _, kpi := range agg.KPIs {
		agg.TotalWeightage += kpi.Weightage
	}
	agg.WeekNumbers = sortedWeekNumbers(weekSet)
	return agg
}

// AggregatePeriod buckets records into the given month ranges and rolls the
// months up. Months with zero records stay in the output with empty
// aggregates but do not count as active.
func AggregatePeriod(ranges []MonthRange, records []EvaluationRecord) PeriodAggregate {
	var period PeriodAggregate

	weekSet := map[int]bool{}
	var all []EvaluationRecord
	for _, r := range ranges {
		var bucket []EvaluationRecord
		for _, rec := range records {
			if !rec.WeekEnd.Before(r.Start) && !rec.WeekEnd.After(r.End) {
				bucket = append(bucket, rec)
			}
		}
		monthAgg := AggregateMonth(r.Year, r.Month, bucket)
		period.Months = append(period.Months, monthAgg)

		if monthAgg.HasData() {
			period.ActiveMonths++
		}
		period.TotalScore += monthAgg.TotalScore
		period.TotalWeightedRating += monthAgg.TotalWeightedRating
		for _, week := range monthAgg.WeekNumbers {
			weekSet[week] = true
		}
		if !monthAgg.WeekStart.IsZero() && (period.WeekStart.IsZero() || monthAgg.WeekStart.Before(period.WeekStart)) {
			period.WeekStart = monthAgg.WeekStart
		}
		if monthAgg.WeekEnd.After(period.WeekEnd) {
			period.WeekEnd = monthAgg.WeekEnd
		}
		all = append(all, bucket...)
	}

	period.KPIs = AggregateByKPI(all)
	for _, kpi := range period.KPIs {
		period.TotalWeightage += kpi.Weightage
	}
	period.WeekNumbers = sortedWeekNumbers(weekSet)
	return period
}

// WeekDenominator applies the weekly-report rule: an explicit week selection
// overrides the flat four-weeks-per-month assumption. A scope with no matching
// records keeps the zero denominator regardless of the selection, so empty
// rows stay unrated instead of averaging to zero.
func WeekDenominator(selectedWeeks []int, hasData bool) int {
	if !hasData {
		return 0
	}
	if len(selectedWeeks) > 0 {
		return len(selectedWeeks)
	}
	return WeeksPerMonth
}

// MonthDenominator contributes four units per month that has data; empty
// months add nothing, so mid-period joiners are not averaged down.
func MonthDenominator(activeMonths int) int {
	return activeMonths * WeeksPerMonth
}

// Average divides a summed weighted rating by the denominator, resolving a
// zero denominator to zero instead of dividing.
func Average(total float64, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return total / float64(denominator)
}

func sortedWeekNumbers(set map[int]bool) []int {
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for week := range set {
		out = append(out, week)
	}
	sort.Ints(out)
	return out
}
