package evaluation

import (
	"strconv"
	"strings"
	"time"
)

// Scope is the caller-supplied selection of user, year and months/weeks that
// defines which evaluation records participate in an aggregation. It is built
// once at the boundary and passed into pure functions from there.
type Scope struct {
	UserID     string
	Year       int
	Months     []int
	Weeks      []int
	ReportType ReportType
}

type MonthRange struct {
	Year  int
	Month int
	Start time.Time
	End   time.Time
}

// NewMonthRange spans the whole calendar month. The end carries 23:59:59 so
// records landing on the last day are inside the range.
func NewMonthRange(year, month int) MonthRange {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	return MonthRange{Year: year, Month: month, Start: start, End: end}
}

// MonthRanges converts selected months into concrete date ranges. Values
// outside 1-12 are dropped silently so callers can pass loosely validated
// strings.
func MonthRanges(year int, months []int) []MonthRange {
	ranges := make([]MonthRange, 0, len(months))
	for _, month := range months {
		if month < 1 || month > 12 {
			continue
		}
		ranges = append(ranges, NewMonthRange(year, month))
	}
	return ranges
}

// Ranges resolves the scope's window. An empty month selection falls back to
// a single-month window, which is the weekly-overview case.
func (s Scope) Ranges() []MonthRange {
	if len(s.Months) == 0 {
		return nil
	}
	return MonthRanges(s.Year, s.Months)
}

// RollingMonths returns the `count` month ranges ending at (year, month),
// oldest first. Months wrap into the previous year via explicit (month, year)
// normalization rather than date arithmetic.
func RollingMonths(year, month, count int) []MonthRange {
	ranges := make([]MonthRange, 0, count)
	for offset := count - 1; offset >= 0; offset-- {
		shifted := month - 1 - offset
		normalized := ((shifted % 12) + 12) % 12
		yearShift := (shifted - normalized) / 12
		ranges = append(ranges, NewMonthRange(year+yearShift, normalized+1))
	}
	return ranges
}

// Matches reports whether a record falls inside the window: its weekEnd must
// land in any of the selected month ranges, and its week number must be in
// the week filter when one is present.
func (s Scope) Matches(rec EvaluationRecord, ranges []MonthRange) bool {
	inRange := false
	for _, r := range ranges {
		if !rec.WeekEnd.Before(r.Start) && !rec.WeekEnd.After(r.End) {
			inRange = true
			break
		}
	}
	if !inRange {
		return false
	}
	if len(s.Weeks) == 0 {
		return true
	}
	for _, week := range s.Weeks {
		if rec.WeekNumber == week {
			return true
		}
	}
	return false
}

// WeekOf buckets a date's day of month into the fixed four-week structure,
// clamping the fifth partial week into week four.
func WeekOf(t time.Time) int {
	week := (t.Day()-1)/7 + 1
	if week > WeeksPerMonth {
		week = WeeksPerMonth
	}
	return week
}

// ParseMonths parses a comma-separated month list, dropping anything that is
// not an integer in 1-12.
func ParseMonths(raw string) []int {
	return parseCSVInts(raw, 1, 12)
}

// ParseWeeks parses a comma-separated week-number list, dropping anything
// outside 1-4.
func ParseWeeks(raw string) []int {
	return parseCSVInts(raw, 1, WeeksPerMonth)
}

func parseCSVInts(raw string, min, max int) []int {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil || value < min || value > max {
			continue
		}
		out = append(out, value)
	}
	return out
}
