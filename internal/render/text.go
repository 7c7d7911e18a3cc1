// Package render formats analytics reports for terminals.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"library-stats/internal/analytics"
	"library-stats/internal/domain"
)

// Text writes the human readable report to w.
func Text(w io.Writer, r analytics.Report) error {
	var b bytes.Buffer

	fmt.Fprintln(&b, "--- Library Descriptive Statistics ---")
	fmt.Fprintf(&b, "As of: %s\n", r.GeneratedAt.Format(domain.DateLayout))
	if r.PeriodFrom != nil || r.PeriodTo != nil {
		fmt.Fprintf(&b, "Period: %s\n", period(r))
	}

	fmt.Fprintf(&b, "\nTotal Books: %d\n", r.TotalBooks)
	fmt.Fprintf(&b, "Available Books: %d\n", r.AvailableBooks)
	fmt.Fprintf(&b, "Borrowed Books: %d\n", r.BorrowedBooks)
	fmt.Fprintf(&b, "Average Goodreads Rating: %.2f\n", r.AverageRating)
	if r.Ratings.Count > 0 {
		fmt.Fprintf(&b, "Rating Range: %.2f - %.2f\n", r.Ratings.Min, r.Ratings.Max)
	}
	fmt.Fprintf(&b, "Total Users: %d\n", r.TotalUsers)
	fmt.Fprintf(&b, "Total Loans: %d (%d open)\n", r.TotalLoans, r.OpenLoans)

	fmt.Fprintln(&b, "\nLoans per User:")
	for _, u := range r.LoansPerUser {
		fmt.Fprintf(&b, "  - %s: %d loans\n", u.Name, u.Loans)
	}

	fmt.Fprintf(&b, "\nAverage Loan Duration: %.2f days (%d returned loans)\n", r.AverageLoanDuration.MeanDays, r.AverageLoanDuration.Count)
	fmt.Fprintf(&b, "Loan Rate: %.2f per user (%.2f per active user)\n", r.LoanRate.PerUser, r.LoanRate.PerActiveUser)

	fmt.Fprintln(&b, "\nMost Borrowed Book:")
	if r.MostBorrowedBook != nil {
		fmt.Fprintf(&b, "  %s by %s (%d times borrowed)\n", r.MostBorrowedBook.Title, r.MostBorrowedBook.Author, r.MostBorrowedBook.Count)
	} else {
		fmt.Fprintln(&b, "  No data available.")
	}

	fmt.Fprintln(&b, "\nMost Borrowed Author:")
	if r.MostBorrowedAuthor != nil {
		fmt.Fprintf(&b, "  %s (%d times borrowed)\n", r.MostBorrowedAuthor.Author, r.MostBorrowedAuthor.Count)
	} else {
		fmt.Fprintln(&b, "  No data available.")
	}

	fmt.Fprintln(&b, "\nAuthor With Most Books:")
	if r.MostBooksAuthor != nil {
		fmt.Fprintf(&b, "  %s (%d books)\n", r.MostBooksAuthor.Author, r.MostBooksAuthor.Count)
	} else {
		fmt.Fprintln(&b, "  No data available.")
	}

	fmt.Fprintln(&b, "\nTop Borrowers:")
	if len(r.TopBorrowers) == 0 {
		fmt.Fprintln(&b, "  No data available.")
	}
	for i, u := range r.TopBorrowers {
		fmt.Fprintf(&b, "  %d. %s (%d loans)\n", i+1, u.Name, u.Loans)
	}

	fmt.Fprintln(&b, "\nAuthors Borrowed Exclusively:")
	for _, ua := range r.ExclusiveAuthors {
		fmt.Fprintf(&b, "User: %s\n", ua.Name)
		if len(ua.Authors) == 0 {
			fmt.Fprintln(&b, "  No exclusive authors.")
			continue
		}
		for _, author := range ua.Authors {
			fmt.Fprintf(&b, "  - %s\n", author)
		}
	}

	fmt.Fprintln(&b, "\nMost Simultaneous Unreturned Loans:")
	if sl := r.SimultaneousLoans; sl.Found {
		fmt.Fprintf(&b, "User: %s (%d simultaneous unreturned loans)\n", sl.UserName, sl.PeakSimultaneous)
		if len(sl.TiedUserIDs) > 1 {
			fmt.Fprintf(&b, "Tied users: %s\n", joinIDs(sl.TiedUserIDs))
		}
		fmt.Fprintln(&b, "Loans open during this period:")
		for _, start := range sl.ActiveLoanStarts {
			fmt.Fprintf(&b, "  - %s\n", start.Format(domain.DateLayout))
		}
	} else {
		fmt.Fprintln(&b, "No unreturned loans found.")
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(&b, "\nWarnings:")
		for _, warning := range r.Warnings {
			fmt.Fprintf(&b, "  ! %s\n", warning.Error())
		}
	}

	_, err := w.Write(b.Bytes())
	return err
}

func period(r analytics.Report) string {
	from, to := "start", "now"
	if r.PeriodFrom != nil {
		from = r.PeriodFrom.Format(domain.DateLayout)
	}
	if r.PeriodTo != nil {
		to = r.PeriodTo.Format(domain.DateLayout)
	}
	return from + " to " + to
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
