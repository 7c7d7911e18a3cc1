// Package analytics computes descriptive loan statistics over a record snapshot.
//
// Analyze is a pure function of its snapshot and the analysis instant: it
// neither reads the clock nor touches storage, and degenerate input is
// reported through Report.Warnings instead of errors.
package analytics

import (
	"time"

	"library-stats/internal/domain"
)

// Analyze builds the report for snapshot as of now.
func Analyze(snapshot Snapshot, now time.Time, opts ...Option) Report {
	o := options{topBorrowers: defaultTopBorrowers}
	for _, opt := range opts {
		opt(&o)
	}

	in := ingest(snapshot)

	report := Report{
		GeneratedAt:  now,
		TotalBooks:   len(in.books),
		TotalUsers:   len(in.users),
		TotalLoans:   len(in.loans),
		LoansPerUser: []UserCount{},
		TopBorrowers: []UserCount{},
		Warnings:     in.warnings,
	}
	if !o.period.From.IsZero() {
		from := o.period.From
		report.PeriodFrom = &from
	}
	if !o.period.To.IsZero() {
		to := o.period.To
		report.PeriodTo = &to
	}

	for _, book := range in.books {
		switch book.Status {
		case domain.BookStatusAvailable:
			report.AvailableBooks++
		case domain.BookStatusBorrowed:
			report.BorrowedBooks++
		}
	}
	report.Ratings = Ratings(in.books)
	report.AverageRating = report.Ratings.Mean

	for _, loan := range in.loans {
		if loan.IsOpen() {
			report.OpenLoans++
		}
	}

	byUser := Rank(in.loans, func(l domain.Loan) (int64, bool) { return l.UserID, true })
	loanCounts := make(map[int64]int, len(byUser))
	for _, c := range byUser {
		loanCounts[c.Key] = c.Count
	}
	for _, user := range in.users {
		report.LoansPerUser = append(report.LoansPerUser, UserCount{UserID: user.ID, Name: user.Name, Loans: loanCounts[user.ID]})
	}
	for _, c := range byUser.Top(o.topBorrowers) {
		report.TopBorrowers = append(report.TopBorrowers, UserCount{UserID: c.Key, Name: in.userByID[c.Key].Name, Loans: c.Count})
	}

	report.AverageLoanDuration = LoanDurations(in.intervals, o.period)
	report.LoanRate = LoansPerUser(in.loans, len(in.users), o.period)

	if top, ok := Rank(in.loans, func(l domain.Loan) (int64, bool) { return l.BookID, true }).First(); ok {
		book := in.bookByID[top.Key]
		report.MostBorrowedBook = &BookCount{BookID: book.ID, Title: book.Title, Author: book.Author, Count: top.Count}
	}
	if top, ok := Rank(in.loans, func(l domain.Loan) (string, bool) { return in.bookByID[l.BookID].Author, true }).First(); ok {
		report.MostBorrowedAuthor = &AuthorCount{Author: top.Key, Count: top.Count}
	}
	if top, ok := Rank(in.books, func(b domain.Book) (string, bool) { return b.Author, true }).First(); ok {
		report.MostBooksAuthor = &AuthorCount{Author: top.Key, Count: top.Count}
	}

	report.ExclusiveAuthors = ExclusiveAuthors(in.users, BuildAuthorIndex(in.loans, in.bookByID))
	report.SimultaneousLoans, report.UserOverlaps = GlobalPeak(in.users, in.loansByUser(in.intervals), now)
	report.PagesVsDuration = PagesVsDuration(in.intervals, in.bookByID)

	return report
}
