package repository

import (
	"context"

	"library-stats/internal/domain"
)

// RecordStore is the read-only view the analytics layer loads snapshots from.
type RecordStore interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListLoans(ctx context.Context, filter LoanFilter) ([]domain.Loan, error)
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type recordStore struct {
	books BookRepository
	users UserRepository
	loans LoanRepository
}

// NewRecordStore combines the entity repositories into a RecordStore.
func NewRecordStore(books BookRepository, users UserRepository, loans LoanRepository) RecordStore {
	return &recordStore{books: books, users: users, loans: loans}
}

func (s *recordStore) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.books.List(ctx)
}

func (s *recordStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *recordStore) ListLoans(ctx context.Context, filter LoanFilter) ([]domain.Loan, error) {
	return s.loans.List(ctx, filter)
}

func (s *recordStore) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	return s.books.Get(ctx, id)
}

func (s *recordStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.Get(ctx, id)
}
