// Package calendar compares timestamps by local calendar date.
//
// Day relationships use the year, month and day-of-month of each timestamp
// in the process's local time zone. They are not elapsed-time windows: 23:59
// and 00:01 the following morning are on consecutive days.
package calendar

import "time"

// Relation is how a prior timestamp relates to "now" by calendar date
type Relation int

const (
	// Other covers gaps of two or more days and timestamps after now
	Other Relation = iota
	// SameDay means both timestamps share a calendar date
	SameDay
	// NextDay means now falls on the calendar date after the prior timestamp
	NextDay
)

// String returns a string representation of the relation.
func (r Relation) String() string {
	switch r {
	case SameDay:
		return "same_day"
	case NextDay:
		return "next_day"
	default:
		return "other"
	}
}

// IsSameCalendarDay reports whether a and b share year, month and day in local time.
func IsSameCalendarDay(a, b time.Time) bool {
	a, b = a.Local(), b.Local()
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsNextCalendarDay reports whether b's calendar day is exactly one day after a's.
func IsNextCalendarDay(a, b time.Time) bool {
	return IsSameCalendarDay(a.Local().AddDate(0, 0, 1), b)
}

// Relate classifies prior against now.
func Relate(prior, now time.Time) Relation {
	switch {
	case IsSameCalendarDay(prior, now):
		return SameDay
	case IsNextCalendarDay(prior, now):
		return NextDay
	default:
		return Other
	}
}

// IsToday reports whether t is set and falls on now's calendar day.
func IsToday(t *time.Time, now time.Time) bool {
	return t != nil && IsSameCalendarDay(*t, now)
}
