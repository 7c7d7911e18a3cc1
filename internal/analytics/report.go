package analytics

import (
	"time"

	"library-stats/internal/domain"
)

const defaultTopBorrowers = 3

// BookCount is a ranked book.
type BookCount struct {
	BookID int64  `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// AuthorCount is a ranked author.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// UserCount is a user with the number of loans attributed to them.
type UserCount struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Loans  int    `json:"loans"`
}

// Report is the complete result of one analysis run. Optional rankings are
// nil when there is no data to rank.
type Report struct {
	GeneratedAt time.Time  `json:"generated_at"`
	PeriodFrom  *time.Time `json:"period_from,omitempty"`
	PeriodTo    *time.Time `json:"period_to,omitempty"`

	TotalBooks     int           `json:"total_books"`
	AvailableBooks int           `json:"available_books"`
	BorrowedBooks  int           `json:"borrowed_books"`
	AverageRating  float64       `json:"average_rating"`
	Ratings        RatingSummary `json:"ratings"`

	TotalUsers   int         `json:"total_users"`
	TotalLoans   int         `json:"total_loans"`
	OpenLoans    int         `json:"open_loans"`
	LoansPerUser []UserCount `json:"loans_per_user"`

	AverageLoanDuration DurationStats `json:"average_loan_duration"`
	LoanRate            LoanRate      `json:"loan_rate"`

	MostBorrowedBook   *BookCount   `json:"most_borrowed_book"`
	MostBorrowedAuthor *AuthorCount `json:"most_borrowed_author"`
	MostBooksAuthor    *AuthorCount `json:"most_books_author"`
	TopBorrowers       []UserCount  `json:"top_borrowers"`

	ExclusiveAuthors  []UserAuthors   `json:"exclusive_authors"`
	SimultaneousLoans OverlapResult   `json:"simultaneous_loans"`
	UserOverlaps      []UserOverlap   `json:"user_overlaps"`
	PagesVsDuration   []PagesDuration `json:"pages_vs_duration"`

	Warnings []Warning `json:"warnings"`
}

type options struct {
	topBorrowers int
	period       domain.Period
}

// Option customizes an analysis run.
type Option func(*options)

// WithTopBorrowers sets how many borrowers the report ranks.
func WithTopBorrowers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.topBorrowers = n
		}
	}
}

// WithPeriod restricts duration and loan rate statistics to loans made in p.
func WithPeriod(p domain.Period) Option {
	return func(o *options) {
		o.period = p
	}
}
