package core

import "time"

// Period identifies a budget month. Periods order lexicographically:
// year first, then month.
type Period struct {
	Year  int
	Month int // 1-12
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: int(now.Month())}
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// After reports whether p is strictly later than other.
func (p Period) After(other Period) bool {
	return other.Before(p)
}

// Contains reports whether t falls inside the calendar month, both
// boundary days inclusive.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// Days returns the number of calendar days in the month.
func (p Period) Days() int {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Start returns midnight UTC on the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on the last day of the month.
func (p Period) End() time.Time {
	return time.Date(p.Year, time.Month(p.Month), p.Days(), 0, 0, 0, 0, time.UTC)
}

// Valid reports whether the month component is in range.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12
}
