package evaluation

import (
	"testing"
	"time"
)

func TestMonthRangesDropInvalidMonths(t *testing.T) {
	ranges := MonthRanges(2025, []int{0, 1, 13, 6, -2})
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[0].Month != 1 || ranges[1].Month != 6 {
		t.Fatalf("unexpected months: %+v", ranges)
	}
}

func TestMonthRangeIncludesBoundaryDay(t *testing.T) {
	r := NewMonthRange(2025, 3)
	if r.Start != time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected start: %v", r.Start)
	}
	if r.End != time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC) {
		t.Fatalf("unexpected end: %v", r.End)
	}

	rec := EvaluationRecord{WeekNumber: 4, WeekEnd: time.Date(2025, time.March, 31, 12, 0, 0, 0, time.UTC)}
	scope := Scope{Year: 2025, Months: []int{3}}
	if !scope.Matches(rec, scope.Ranges()) {
		t.Fatal("record on last day of month must match the window")
	}
}

func TestMonthRangeFebruaryLeapYear(t *testing.T) {
	r := NewMonthRange(2024, 2)
	if r.End.Day() != 29 {
		t.Fatalf("expected leap February to end on the 29th, got %d", r.End.Day())
	}
}

func TestRollingMonthsWrapsIntoPreviousYear(t *testing.T) {
	ranges := RollingMonths(2025, 2, 6)
	if len(ranges) != 6 {
		t.Fatalf("expected 6 ranges, got %d", len(ranges))
	}
	if ranges[0].Year != 2024 || ranges[0].Month != 9 {
		t.Fatalf("expected window to start at 2024-09, got %d-%02d", ranges[0].Year, ranges[0].Month)
	}
	if ranges[5].Year != 2025 || ranges[5].Month != 2 {
		t.Fatalf("expected window to end at 2025-02, got %d-%02d", ranges[5].Year, ranges[5].Month)
	}
}

func TestRollingMonthsWithoutWrap(t *testing.T) {
	ranges := RollingMonths(2025, 10, 6)
	if ranges[0].Year != 2025 || ranges[0].Month != 5 {
		t.Fatalf("expected window to start at 2025-05, got %d-%02d", ranges[0].Year, ranges[0].Month)
	}
}

func TestScopeMatchesWeekFilter(t *testing.T) {
	scope := Scope{Year: 2025, Months: []int{3}, Weeks: []int{1, 3}}
	ranges := scope.Ranges()

	weekTwo := EvaluationRecord{WeekNumber: 2, WeekEnd: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)}
	if scope.Matches(weekTwo, ranges) {
		t.Fatal("week 2 must be filtered out")
	}

	weekThree := EvaluationRecord{WeekNumber: 3, WeekEnd: time.Date(2025, time.March, 21, 0, 0, 0, 0, time.UTC)}
	if !scope.Matches(weekThree, ranges) {
		t.Fatal("week 3 must match")
	}
}

func TestScopeEmptyWeekFilterIncludesAllWeeks(t *testing.T) {
	scope := Scope{Year: 2025, Months: []int{3}}
	ranges := scope.Ranges()
	for week := 1; week <= 4; week++ {
		rec := EvaluationRecord{WeekNumber: week, WeekEnd: time.Date(2025, time.March, 7*week, 0, 0, 0, 0, time.UTC)}
		if !scope.Matches(rec, ranges) {
			t.Fatalf("week %d should match with no filter", week)
		}
	}
}

func TestParseMonthsDropsGarbageSilently(t *testing.T) {
	months := ParseMonths("1, 2,abc,14,0,12")
	if len(months) != 3 {
		t.Fatalf("expected 3 valid months, got %v", months)
	}
	if months[0] != 1 || months[1] != 2 || months[2] != 12 {
		t.Fatalf("unexpected months: %v", months)
	}
}

func TestParseWeeksBounds(t *testing.T) {
	weeks := ParseWeeks("1,4,5,0")
	if len(weeks) != 2 || weeks[0] != 1 || weeks[1] != 4 {
		t.Fatalf("unexpected weeks: %v", weeks)
	}
}
