package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for loan dates at every boundary.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// Loan records one borrowing of a book by a user. A nil ReturnDate marks an open loan.
type Loan struct {
	ID         int64
	BookID     int64
	UserID     int64
	LoanDate   time.Time
	ReturnDate *time.Time
}

func (l Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// DurationDays returns the number of whole days between loan and return.
// Open loans report zero.
func (l Loan) DurationDays() int {
	if l.ReturnDate == nil {
		return 0
	}
	return int(l.ReturnDate.Sub(l.LoanDate) / day)
}

// Date builds a calendar date at UTC midnight.
func Date(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// Truncate drops the clock part of t, keeping its calendar date in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return Date(y, m, d)
}

// Period is a half-open range [From, To) of loan dates. A zero bound is unbounded.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !t.Before(p.To) {
		return false
	}
	return true
}

func (p Period) IsZero() bool {
	return p.From.IsZero() && p.To.IsZero()
}

// Year returns the period covering one calendar year.
func Year(year int) Period {
	return Period{From: Date(year, time.January, 1), To: Date(year+1, time.January, 1)}
}
