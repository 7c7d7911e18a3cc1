package repository

import (
	"context"
	"errors"
	"fmt"

	"library-stats/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// LoanFilter narrows a loan listing. Nil fields do not filter.
type LoanFilter struct {
	UserID *int64
	Period *domain.Period
}

// BookRepository exposes persistence operations for catalog books.
type BookRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, book *domain.Book) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookStatus) error
	Get(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context) ([]domain.Book, error)
	DeleteAll(ctx context.Context) error
}

// UserRepository exposes persistence operations for library members.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	DeleteAll(ctx context.Context) error
}

// LoanRepository exposes persistence operations for loans.
type LoanRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, loan *domain.Loan) (int64, error)
	List(ctx context.Context, filter LoanFilter) ([]domain.Loan, error)
	DeleteAll(ctx context.Context) error
}

// Set bundles the repositories of one backend.
type Set struct {
	Books BookRepository
	Users UserRepository
	Loans LoanRepository
}

// Init prepares every repository, parents before loans.
func (s Set) Init(ctx context.Context) error {
	if err := s.Books.Init(ctx); err != nil {
		return fmt.Errorf("init book repository: %w", err)
	}
	if err := s.Users.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	if err := s.Loans.Init(ctx); err != nil {
		return fmt.Errorf("init loan repository: %w", err)
	}
	return nil
}

// Reset removes all records, loans first.
func (s Set) Reset(ctx context.Context) error {
	if err := s.Loans.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.Books.DeleteAll(ctx); err != nil {
		return err
	}
	return s.Users.DeleteAll(ctx)
}

func (s Set) RecordStore() RecordStore {
	return NewRecordStore(s.Books, s.Users, s.Loans)
}
