// Package memory keeps library records in process memory. It backs tests and
// dry runs of the reporting CLI.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"library-stats/internal/domain"
	"library-stats/internal/repository"
)

type store struct {
	mu     sync.RWMutex
	books  map[int64]domain.Book
	users  map[int64]domain.User
	loans  map[int64]domain.Loan
	nextID map[string]int64
}

// New returns an empty in-memory repository set.
func New() repository.Set {
	s := &store{
		books:  make(map[int64]domain.Book),
		users:  make(map[int64]domain.User),
		loans:  make(map[int64]domain.Loan),
		nextID: make(map[string]int64),
	}
	return repository.Set{
		Books: &bookRepository{s},
		Users: &userRepository{s},
		Loans: &loanRepository{s},
	}
}

// assignID must be called with the write lock held.
func (s *store) assignID(kind string, requested int64) int64 {
	if requested > 0 {
		if requested > s.nextID[kind] {
			s.nextID[kind] = requested
		}
		return requested
	}
	s.nextID[kind]++
	return s.nextID[kind]
}

func sortedValues[V any](m map[int64]V, id func(V) int64) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b V) int { return cmp.Compare(id(a), id(b)) })
	return out
}

type bookRepository struct{ s *store }

func (r *bookRepository) Init(context.Context) error { return nil }

func (r *bookRepository) Create(_ context.Context, book *domain.Book) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if book.Status == "" {
		book.Status = domain.BookStatusAvailable
	}
	book.ID = r.s.assignID("book", book.ID)
	r.s.books[book.ID] = *book
	return book.ID, nil
}

func (r *bookRepository) UpdateStatus(_ context.Context, id int64, status domain.BookStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	book, ok := r.s.books[id]
	if !ok {
		return fmt.Errorf("book %d: %w", id, repository.ErrNotFound)
	}
	book.Status = status
	r.s.books[id] = book
	return nil
}

func (r *bookRepository) Get(_ context.Context, id int64) (*domain.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	book, ok := r.s.books[id]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", id, repository.ErrNotFound)
	}
	return &book, nil
}

func (r *bookRepository) List(context.Context) ([]domain.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.books, func(b domain.Book) int64 { return b.ID }), nil
}

func (r *bookRepository) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clear(r.s.books)
	return nil
}

type userRepository struct{ s *store }

func (r *userRepository) Init(context.Context) error { return nil }

func (r *userRepository) Create(_ context.Context, user *domain.User) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.ID = r.s.assignID("user", user.ID)
	r.s.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepository) Get(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
	}
	return &user, nil
}

func (r *userRepository) List(context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.users, func(u domain.User) int64 { return u.ID }), nil
}

func (r *userRepository) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clear(r.s.users)
	return nil
}

// loanRepository does not check references so that snapshots with dangling
// loans can be reproduced in memory.
type loanRepository struct{ s *store }

func (r *loanRepository) Init(context.Context) error { return nil }

func (r *loanRepository) Create(_ context.Context, loan *domain.Loan) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	loan.ID = r.s.assignID("loan", loan.ID)
	stored := *loan
	if loan.ReturnDate != nil {
		returned := *loan.ReturnDate
		stored.ReturnDate = &returned
	}
	r.s.loans[loan.ID] = stored
	return loan.ID, nil
}

func (r *loanRepository) List(_ context.Context, filter repository.LoanFilter) ([]domain.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var loans []domain.Loan
	for _, loan := range sortedValues(r.s.loans, func(l domain.Loan) int64 { return l.ID }) {
		if filter.UserID != nil && loan.UserID != *filter.UserID {
			continue
		}
		if filter.Period != nil && !filter.Period.Contains(loan.LoanDate) {
			continue
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

func (r *loanRepository) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clear(r.s.loans)
	return nil
}
