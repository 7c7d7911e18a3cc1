package service

import (
	"context"
	"errors"

	"library-stats/internal/domain"
	"library-stats/internal/repository"
)

// ErrInvalidID is returned for non-positive record identifiers.
var ErrInvalidID = errors.New("invalid id")

// CatalogService serves record listings to the web front end.
type CatalogService interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListLoans(ctx context.Context, filter repository.LoanFilter) ([]domain.Loan, error)
}

type catalogService struct {
	records repository.RecordStore
}

func NewCatalogService(records repository.RecordStore) CatalogService {
	return &catalogService{records: records}
}

func (s *catalogService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.records.ListBooks(ctx)
}

func (s *catalogService) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return s.records.GetBook(ctx, id)
}

func (s *catalogService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.records.ListUsers(ctx)
}

func (s *catalogService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return s.records.GetUser(ctx, id)
}

func (s *catalogService) ListLoans(ctx context.Context, filter repository.LoanFilter) ([]domain.Loan, error) {
	if filter.UserID != nil && *filter.UserID <= 0 {
		return nil, ErrInvalidID
	}
	return s.records.ListLoans(ctx, filter)
}
