package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-stats/internal/domain"
	"library-stats/internal/repository"
)

func openTestRepositories(t *testing.T) (repository.Set, *sql.DB) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := NewRepositories(db)
	require.NoError(t, repos.Init(context.Background()))
	return repos, db
}

func TestBookRepository_CreateGetListUpdate(t *testing.T) {
	ctx := context.Background()
	repos, _ := openTestRepositories(t)

	book := &domain.Book{Title: "Book 1", Author: "Author 3", PublishedDate: "1999-03-31", Pages: 250, Rating: 3.75}
	id, err := repos.Books.Create(ctx, book)
	require.NoError(t, err)
	assert.Equal(t, id, book.ID)
	assert.Equal(t, domain.BookStatusAvailable, book.Status)

	_, err = repos.Books.Create(ctx, &domain.Book{Title: "Book 2", Author: "Author 1", PublishedDate: "2001-03-31", Status: domain.BookStatusBorrowed})
	require.NoError(t, err)

	require.NoError(t, repos.Books.UpdateStatus(ctx, id, domain.BookStatusBorrowed))

	got, err := repos.Books.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.Book{ID: id, Title: "Book 1", Author: "Author 3", PublishedDate: "1999-03-31", Status: domain.BookStatusBorrowed, Pages: 250, Rating: 3.75}, *got)

	books, err := repos.Books.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Less(t, books[0].ID, books[1].ID)

	_, err = repos.Books.Get(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repos.Books.UpdateStatus(ctx, 999, domain.BookStatusAvailable), repository.ErrNotFound)
}

func TestUserRepository_CreateGetList(t *testing.T) {
	ctx := context.Background()
	repos, _ := openTestRepositories(t)

	for _, name := range []string{"User 1", "User 2"} {
		_, err := repos.Users.Create(ctx, &domain.User{Name: name})
		require.NoError(t, err)
	}

	users, err := repos.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "User 1", users[0].Name)

	got, err := repos.Users.Get(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, users[1], *got)

	_, err = repos.Users.Get(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLoanRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repos, _ := openTestRepositories(t)

	book := &domain.Book{Title: "Book", Author: "Author", PublishedDate: "2000-03-31"}
	_, err := repos.Books.Create(ctx, book)
	require.NoError(t, err)
	alice := &domain.User{Name: "Alice"}
	bob := &domain.User{Name: "Bob"}
	_, err = repos.Users.Create(ctx, alice)
	require.NoError(t, err)
	_, err = repos.Users.Create(ctx, bob)
	require.NoError(t, err)

	returned := domain.Date(2024, time.January, 11)
	loans := []*domain.Loan{
		{BookID: book.ID, UserID: alice.ID, LoanDate: domain.Date(2023, time.December, 31)},
		{BookID: book.ID, UserID: alice.ID, LoanDate: domain.Date(2024, time.January, 1), ReturnDate: &returned},
		{BookID: book.ID, UserID: bob.ID, LoanDate: domain.Date(2024, time.June, 1)},
		{BookID: book.ID, UserID: bob.ID, LoanDate: domain.Date(2025, time.January, 1)},
	}
	for _, loan := range loans {
		_, err := repos.Loans.Create(ctx, loan)
		require.NoError(t, err)
	}

	all, err := repos.Loans.List(ctx, repository.LoanFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.NotNil(t, all[1].ReturnDate)
	assert.Equal(t, returned, *all[1].ReturnDate)
	assert.Nil(t, all[0].ReturnDate)

	year := domain.Year(2024)
	inYear, err := repos.Loans.List(ctx, repository.LoanFilter{Period: &year})
	require.NoError(t, err)
	assert.Equal(t, []int64{loans[1].ID, loans[2].ID}, loanIDs(inYear))

	bobInYear, err := repos.Loans.List(ctx, repository.LoanFilter{UserID: &bob.ID, Period: &year})
	require.NoError(t, err)
	assert.Equal(t, []int64{loans[2].ID}, loanIDs(bobInYear))
}

func TestLoanRepository_RejectsDanglingReferences(t *testing.T) {
	ctx := context.Background()
	repos, _ := openTestRepositories(t)

	_, err := repos.Loans.Create(ctx, &domain.Loan{BookID: 1, UserID: 1, LoanDate: domain.Date(2024, time.January, 1)})
	assert.Error(t, err)
}

func TestSet_ResetAndRecordStore(t *testing.T) {
	ctx := context.Background()
	repos, _ := openTestRepositories(t)

	book := &domain.Book{Title: "Book", Author: "Author", PublishedDate: "2000-03-31"}
	_, err := repos.Books.Create(ctx, book)
	require.NoError(t, err)
	user := &domain.User{Name: "User"}
	_, err = repos.Users.Create(ctx, user)
	require.NoError(t, err)
	_, err = repos.Loans.Create(ctx, &domain.Loan{BookID: book.ID, UserID: user.ID, LoanDate: domain.Date(2024, time.January, 1)})
	require.NoError(t, err)

	store := repos.RecordStore()
	gotBook, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book", gotBook.Title)
	gotUser, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "User", gotUser.Name)

	require.NoError(t, repos.Reset(ctx))

	books, err := store.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	loans, err := store.ListLoans(ctx, repository.LoanFilter{})
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func loanIDs(loans []domain.Loan) []int64 {
	ids := make([]int64, len(loans))
	for i, loan := range loans {
		ids[i] = loan.ID
	}
	return ids
}
