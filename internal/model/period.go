package model

import (
	"fmt"
	"strings"
	"time"
)

// Period is a reporting window size.
type Period string

// Reporting periods.
const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts day, week or month in any case.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", fmt.Errorf("invalid period %q: must be day, week or month", s)
}

// DateRange is an inclusive time window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Range returns the window for the period shifted by offset units from now.
// Weeks start on Monday. End is the last nanosecond of the window.
func (p Period) Range(now time.Time, offset int) DateRange {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var start, next time.Time
	switch p {
	case PeriodWeek:
		weekday := (int(today.Weekday()) + 6) % 7
		start = today.AddDate(0, 0, -weekday+7*offset)
		next = start.AddDate(0, 0, 7)
	case PeriodMonth:
		start = time.Date(y, m+time.Month(offset), 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	default:
		start = today.AddDate(0, 0, offset)
		next = start.AddDate(0, 0, 1)
	}

	return DateRange{Start: start, End: next.Add(-time.Nanosecond)}
}

// Label renders the window the way a header would show it.
func (p Period) Label(r DateRange) string {
	switch p {
	case PeriodWeek:
		return fmt.Sprintf("%s - %s", r.Start.Format("Jan 2, 2006"), r.End.Format("Jan 2, 2006"))
	case PeriodMonth:
		return r.Start.Format("January 2006")
	default:
		return r.Start.Format("Monday, January 2, 2006")
	}
}
