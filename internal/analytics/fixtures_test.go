package analytics

import (
	"time"

	"library-stats/internal/domain"
)

var analysisNow = domain.Date(2024, time.June, 30)

func returnedOn(t time.Time) *time.Time {
	return &t
}

func daysBefore(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

func givenLibrary() Snapshot {
	return Snapshot{
		Books: []domain.Book{
			{ID: 1, Title: "Book 1", Author: "Author 1", Status: domain.BookStatusBorrowed, Pages: 100, Rating: 4.0},
			{ID: 2, Title: "Book 2", Author: "Author 2", Status: domain.BookStatusAvailable, Pages: 200, Rating: 3.0},
			{ID: 3, Title: "Book 3", Author: "Author 1", Status: domain.BookStatusBorrowed, Pages: 300, Rating: 5.0},
			{ID: 4, Title: "Book 4", Author: "Author 3", Status: domain.BookStatusAvailable, Pages: 400, Rating: 2.5},
		},
		Users: []domain.User{
			{ID: 2, Name: "User 2"},
			{ID: 1, Name: "User 1"},
			{ID: 3, Name: "User 3"},
		},
		Loans: []domain.Loan{
			{ID: 1, BookID: 1, UserID: 1, LoanDate: domain.Date(2024, time.January, 1), ReturnDate: returnedOn(domain.Date(2024, time.January, 11))},
			{ID: 2, BookID: 2, UserID: 1, LoanDate: domain.Date(2024, time.February, 1), ReturnDate: returnedOn(domain.Date(2024, time.February, 21))},
			{ID: 3, BookID: 1, UserID: 2, LoanDate: domain.Date(2024, time.March, 1)},
			{ID: 4, BookID: 3, UserID: 2, LoanDate: domain.Date(2024, time.April, 1)},
			{ID: 5, BookID: 4, UserID: 1, LoanDate: domain.Date(2024, time.May, 1)},
		},
	}
}
