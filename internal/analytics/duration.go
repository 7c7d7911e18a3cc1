package analytics

import (
	"cmp"
	"math"
	"slices"

	"library-stats/internal/domain"
)

// DurationStats summarizes closed loans.
type DurationStats struct {
	Count    int     `json:"count"`
	MeanDays float64 `json:"mean_days"`
}

// LoanDurations averages the duration of closed loans whose loan date lies in period.
func LoanDurations(loans []domain.Loan, period domain.Period) DurationStats {
	var (
		count int
		total int
	)
	for _, loan := range loans {
		if loan.IsOpen() || !period.Contains(loan.LoanDate) {
			continue
		}
		count++
		total += loan.DurationDays()
	}
	if count == 0 {
		return DurationStats{}
	}
	return DurationStats{Count: count, MeanDays: Round2(float64(total) / float64(count))}
}

// LoanRate relates the number of loans in a period to the user base.
type LoanRate struct {
	Loans         int     `json:"loans"`
	Users         int     `json:"users"`
	ActiveUsers   int     `json:"active_users"`
	PerUser       float64 `json:"per_user"`
	PerActiveUser float64 `json:"per_active_user"`
}

// LoansPerUser divides the loans made in period by the total user count and by
// the number of distinct users who borrowed in that period.
func LoansPerUser(loans []domain.Loan, userCount int, period domain.Period) LoanRate {
	rate := LoanRate{Users: userCount}
	active := make(map[int64]struct{})
	for _, loan := range loans {
		if !period.Contains(loan.LoanDate) {
			continue
		}
		rate.Loans++
		active[loan.UserID] = struct{}{}
	}
	rate.ActiveUsers = len(active)
	rate.PerUser = ratio(rate.Loans, rate.Users)
	rate.PerActiveUser = ratio(rate.Loans, rate.ActiveUsers)
	return rate
}

// PagesDuration is one point of the pages versus borrowing duration series.
type PagesDuration struct {
	LoanID int64 `json:"loan_id"`
	Pages  int   `json:"pages"`
	Days   int   `json:"days"`
}

// PagesVsDuration pairs the page count of each returned book with how long it was kept.
func PagesVsDuration(loans []domain.Loan, books map[int64]domain.Book) []PagesDuration {
	points := []PagesDuration{}
	for _, loan := range loans {
		book, ok := books[loan.BookID]
		if !ok || loan.IsOpen() {
			continue
		}
		points = append(points, PagesDuration{LoanID: loan.ID, Pages: book.Pages, Days: loan.DurationDays()})
	}
	slices.SortFunc(points, func(a, b PagesDuration) int { return cmp.Compare(a.LoanID, b.LoanID) })
	return points
}

// RatingSummary describes the distribution of catalog ratings.
type RatingSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

func Ratings(books []domain.Book) RatingSummary {
	if len(books) == 0 {
		return RatingSummary{}
	}
	summary := RatingSummary{Count: len(books), Min: math.Inf(1), Max: math.Inf(-1)}
	var total float64
	for _, book := range books {
		total += book.Rating
		summary.Min = math.Min(summary.Min, book.Rating)
		summary.Max = math.Max(summary.Max, book.Rating)
	}
	summary.Mean = Round2(total / float64(len(books)))
	return summary
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return Round2(float64(n) / float64(d))
}
