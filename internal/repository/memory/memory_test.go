package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-stats/internal/domain"
	"library-stats/internal/repository"
)

func TestStore_AssignsAndKeepsIDs(t *testing.T) {
	ctx := context.Background()
	repos := New()

	id, err := repos.Books.Create(ctx, &domain.Book{ID: 10, Title: "Ten"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)

	next := &domain.Book{Title: "Eleven"}
	id, err = repos.Books.Create(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, domain.BookStatusAvailable, next.Status)

	books, err := repos.RecordStore().ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Ten", books[0].Title)
}

func TestStore_LoanFilterAndNotFound(t *testing.T) {
	ctx := context.Background()
	repos := New()

	user := int64(2)
	for _, loan := range []domain.Loan{
		{UserID: 1, LoanDate: domain.Date(2024, time.March, 1)},
		{UserID: 2, LoanDate: domain.Date(2024, time.March, 2)},
		{UserID: 2, LoanDate: domain.Date(2023, time.March, 2)},
	} {
		_, err := repos.Loans.Create(ctx, &loan)
		require.NoError(t, err)
	}

	year := domain.Year(2024)
	loans, err := repos.RecordStore().ListLoans(ctx, repository.LoanFilter{UserID: &user, Period: &year})
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, int64(2), loans[0].ID)

	_, err = repos.RecordStore().GetUser(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repos.Books.UpdateStatus(ctx, 1, domain.BookStatusBorrowed), repository.ErrNotFound)

	require.NoError(t, repos.Reset(ctx))
	loans, err = repos.Loans.List(ctx, repository.LoanFilter{})
	require.NoError(t, err)
	assert.Empty(t, loans)
}
