package evaluation

const (
	PerformanceNoData    = "No Data"
	PerformancePoor      = "Poor"
	PerformancePartial   = "Partial"
	PerformanceNormal    = "Normal"
	PerformanceGood      = "Good"
	PerformanceExcellent = "Excellent"

	ActionNone          = "No Action"
	ActionUrgentMeeting = "Urgent Meeting"
	ActionHRMeeting     = "HR Meeting"
	ActionMotivate      = "Motivate"
	ActionNothing       = "Nothing"
	ActionBonus         = "Bonus"
)

type ReportType string

const (
	ReportWeekly  ReportType = "Weekly"
	ReportMonthly ReportType = "Monthly"
)

// WeeksPerMonth is the fixed month structure the denominator rules assume,
// regardless of the actual calendar.
const WeeksPerMonth = 4
