// Package seed populates a record store with a random but reproducible library.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"library-stats/internal/analytics"
	"library-stats/internal/domain"
	"library-stats/internal/repository"
)

const (
	ratingMean   = 3.5
	ratingStdDev = 1.0
	authorPool   = 10
	maxLoanAge   = 365
	maxLoanDays  = 30
)

type Config struct {
	Books    int
	Users    int
	MinLoans int
	MaxLoans int
	Logger   *logrus.Logger
}

// Summary counts the records a seeding run created.
type Summary struct {
	Books int `json:"books"`
	Users int `json:"users"`
	Loans int `json:"loans"`
	Open  int `json:"open"`
}

type Seeder struct {
	mu    sync.Mutex
	repos repository.Set
	cfg   Config
	rng   *rand.Rand
}

func New(repos repository.Set, cfg Config, rng *rand.Rand) *Seeder {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.MaxLoans < cfg.MinLoans {
		cfg.MaxLoans = cfg.MinLoans
	}
	return &Seeder{repos: repos, cfg: cfg, rng: rng}
}

// NewRand returns a generator seeded with seed, or with the clock when seed is zero.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
}

// Seed wipes the store and fills it with books, users and loans dated
// relative to today.
func (s *Seeder) Seed(ctx context.Context, today time.Time) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today = domain.Truncate(today)
	var summary Summary

	if err := s.repos.Reset(ctx); err != nil {
		return summary, fmt.Errorf("reset store: %w", err)
	}

	books := make([]domain.Book, 0, s.cfg.Books)
	for i := 0; i < s.cfg.Books; i++ {
		book := domain.Book{
			Title:         fmt.Sprintf("Book %d", i+1),
			Author:        fmt.Sprintf("Author %d", s.between(1, authorPool)),
			PublishedDate: fmt.Sprintf("%d-03-31", s.between(1900, 2023)),
			Status:        domain.BookStatusAvailable,
			Pages:         s.between(80, 1000),
			Rating:        s.rating(),
		}
		if _, err := s.repos.Books.Create(ctx, &book); err != nil {
			return summary, fmt.Errorf("seed book: %w", err)
		}
		books = append(books, book)
	}
	summary.Books = len(books)

	users := make([]domain.User, 0, s.cfg.Users)
	for i := 0; i < s.cfg.Users; i++ {
		user := domain.User{Name: fmt.Sprintf("User %d", i+1)}
		if _, err := s.repos.Users.Create(ctx, &user); err != nil {
			return summary, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)

	for _, user := range users {
		count := min(s.between(s.cfg.MinLoans, s.cfg.MaxLoans), len(books))
		for _, idx := range s.rng.Perm(len(books))[:count] {
			book := books[idx]
			loan := domain.Loan{
				BookID:   book.ID,
				UserID:   user.ID,
				LoanDate: today.AddDate(0, 0, -s.between(1, maxLoanAge)),
			}
			status := domain.BookStatusBorrowed
			if s.rng.IntN(2) == 0 {
				returned := loan.LoanDate.AddDate(0, 0, s.between(1, maxLoanDays))
				loan.ReturnDate = &returned
				status = domain.BookStatusAvailable
			} else {
				summary.Open++
			}

			if _, err := s.repos.Loans.Create(ctx, &loan); err != nil {
				return summary, fmt.Errorf("seed loan: %w", err)
			}
			if err := s.repos.Books.UpdateStatus(ctx, book.ID, status); err != nil {
				return summary, fmt.Errorf("seed book status: %w", err)
			}
			summary.Loans++
		}
	}

	s.cfg.Logger.WithFields(logrus.Fields{
		"books": summary.Books,
		"users": summary.Users,
		"loans": summary.Loans,
		"open":  summary.Open,
	}).Info("library seeded")
	return summary, nil
}

// between returns a uniform integer in [lo, hi].
func (s *Seeder) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo+1)
}

func (s *Seeder) rating() float64 {
	r := s.rng.NormFloat64()*ratingStdDev + ratingMean
	return analytics.Round2(math.Max(0, math.Min(5, r)))
}
