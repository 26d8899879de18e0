package summary

import "time"

// MonthBounds is a calendar month in UTC. Start is the first day at 00:00:00,
// End the last day at 23:59:59 and Next the first instant of the following
// month, which timestamp queries use as an exclusive upper bound so no part of
// the final second is lost.
type MonthBounds struct {
	Start time.Time
	End   time.Time
	Next  time.Time
}

// NewMonthBounds returns the UTC bounds of month/year. month must be 1..12.
func NewMonthBounds(month, year int) MonthBounds {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := start.AddDate(0, 1, 0)
	return MonthBounds{
		Start: start,
		End:   next.Add(-time.Second),
		Next:  next,
	}
}

// FirstDay returns the first calendar date of the month.
func (b MonthBounds) FirstDay() time.Time {
	return b.Start
}

// LastDay returns the last calendar date of the month at midnight.
func (b MonthBounds) LastDay() time.Time {
	return b.Next.AddDate(0, 0, -1)
}

// WeekdaysInMonth counts Monday to Friday dates. No holiday calendar applies.
func WeekdaysInMonth(month, year int) int {
	b := NewMonthBounds(month, year)
	count := 0
	for d := b.Start; d.Before(b.Next); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// PreviousPeriod returns the calendar month before the one containing now (UTC).
func PreviousPeriod(now time.Time) (month, year int) {
	first := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return int(prev.Month()), prev.Year()
}
