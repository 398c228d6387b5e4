package evaluation

import "time"

// Identity carries the user fields a summary row is joined with. It is
// supplied by the identity directory; this package never reads users itself.
type Identity struct {
	UserID          string    `json:"userId"`
	FullName        string    `json:"fullName"`
	RoleName        string    `json:"roleName"`
	RoleDescription string    `json:"roleDescription"`
	JoiningDate     time.Time `json:"joiningDate"`
}

// SummaryRow is the final reporting row: identity fields joined with the
// aggregate, the averaged rating and the classified outcome. Every numeric
// field defaults to 0 and every label to "" when no data exists, so callers
// always get one row per in-scope user.
type SummaryRow struct {
	UserID              string         `json:"userId"`
	FullName            string         `json:"fullName"`
	RoleName            string         `json:"roleName"`
	RoleDescription     string         `json:"roleDescription"`
	Scores              []KPIAggregate `json:"scores"`
	WeekNumbers         []int          `json:"weekNumbers"`
	WeekStart           time.Time      `json:"weekStart"`
	WeekEnd             time.Time      `json:"weekEnd"`
	TotalScore          int            `json:"totalScore"`
	TotalWeightedRating float64        `json:"totalWeightedRating"`
	TotalWeightage      float64        `json:"totalWeightage"`
	Denominator         int            `json:"denominator"`
	ActiveMonths        int            `json:"activeMonthsCount"`
	AvgWeightedRating   float64        `json:"avgWeightedRating"`
	Performance         string         `json:"performance"`
	Action              string         `json:"action"`
	Increment           float64        `json:"increment"`
}

// BuildSummary joins an identity with a period aggregate under the given
// denominator.
func BuildSummary(id Identity, agg PeriodAggregate, denominator int) SummaryRow {
	avg := Average(agg.TotalWeightedRating, denominator)
	rating := ClassifyRated(avg, denominator)
	return SummaryRow{
		UserID:              id.UserID,
		FullName:            id.FullName,
		RoleName:            id.RoleName,
		RoleDescription:     id.RoleDescription,
		Scores:              agg.KPIs,
		WeekNumbers:         agg.WeekNumbers,
		WeekStart:           agg.WeekStart,
		WeekEnd:             agg.WeekEnd,
		TotalScore:          agg.TotalScore,
		TotalWeightedRating: agg.TotalWeightedRating,
		TotalWeightage:      agg.TotalWeightage,
		Denominator:         denominator,
		ActiveMonths:        agg.ActiveMonths,
		AvgWeightedRating:   avg,
		Performance:         rating.Performance,
		Action:              rating.Action,
		Increment:           rating.Increment,
	}
}

// HasActivity reports whether the row carries any evaluation data; the team
// view filters rows where this is false.
func (row SummaryRow) HasActivity() bool {
	return len(row.WeekNumbers) > 0
}
