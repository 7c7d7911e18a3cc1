package analytics

import (
	"cmp"
	"fmt"
	"slices"

	"library-stats/internal/domain"
)

// Snapshot is the point-in-time set of records one analysis run works on.
type Snapshot struct {
	Books []domain.Book
	Users []domain.User
	Loans []domain.Loan
}

// ingested holds the validated, ID-ordered copy of a snapshot.
type ingested struct {
	books     []domain.Book
	bookByID  map[int64]domain.Book
	users     []domain.User
	userByID  map[int64]domain.User
	loans     []domain.Loan // references resolved
	intervals []domain.Loan // references resolved and return >= loan date
	warnings  []Warning
}

func ingest(snapshot Snapshot) ingested {
	in := ingested{
		books:    slices.Clone(snapshot.Books),
		bookByID: make(map[int64]domain.Book, len(snapshot.Books)),
		users:    sortedUsers(snapshot.Users),
		userByID: make(map[int64]domain.User, len(snapshot.Users)),
		warnings: []Warning{},
	}
	slices.SortStableFunc(in.books, func(a, b domain.Book) int { return cmp.Compare(a.ID, b.ID) })

	for _, book := range in.books {
		in.bookByID[book.ID] = book
	}
	for _, user := range in.users {
		in.userByID[user.ID] = user
	}

	if len(snapshot.Books) == 0 {
		in.warnings = append(in.warnings, Warning{Kind: WarningEmptyDataset, Message: "snapshot contains no books"})
	}
	if len(snapshot.Users) == 0 {
		in.warnings = append(in.warnings, Warning{Kind: WarningEmptyDataset, Message: "snapshot contains no users"})
	}
	if len(snapshot.Loans) == 0 {
		in.warnings = append(in.warnings, Warning{Kind: WarningEmptyDataset, Message: "snapshot contains no loans"})
	}

	loans := slices.Clone(snapshot.Loans)
	slices.SortStableFunc(loans, func(a, b domain.Loan) int { return cmp.Compare(a.ID, b.ID) })

	for _, loan := range loans {
		_, bookOK := in.bookByID[loan.BookID]
		_, userOK := in.userByID[loan.UserID]
		if !bookOK || !userOK {
			in.warnings = append(in.warnings, Warning{
				Kind:    WarningDanglingReference,
				LoanID:  loan.ID,
				Message: danglingMessage(loan, bookOK, userOK),
			})
			continue
		}
		in.loans = append(in.loans, loan)

		if loan.ReturnDate != nil && loan.ReturnDate.Before(loan.LoanDate) {
			in.warnings = append(in.warnings, Warning{
				Kind:   WarningInvalidInterval,
				LoanID: loan.ID,
				Message: fmt.Sprintf("loan %d returned %s before it was made %s", loan.ID,
					loan.ReturnDate.Format(domain.DateLayout), loan.LoanDate.Format(domain.DateLayout)),
			})
			continue
		}
		in.intervals = append(in.intervals, loan)
	}
	return in
}

func danglingMessage(loan domain.Loan, bookOK, userOK bool) string {
	switch {
	case !bookOK && !userOK:
		return fmt.Sprintf("loan %d references missing book %d and missing user %d", loan.ID, loan.BookID, loan.UserID)
	case !bookOK:
		return fmt.Sprintf("loan %d references missing book %d", loan.ID, loan.BookID)
	default:
		return fmt.Sprintf("loan %d references missing user %d", loan.ID, loan.UserID)
	}
}

func (in ingested) loansByUser(loans []domain.Loan) map[int64][]domain.Loan {
	out := make(map[int64][]domain.Loan, len(in.users))
	for _, loan := range loans {
		out[loan.UserID] = append(out[loan.UserID], loan)
	}
	return out
}
