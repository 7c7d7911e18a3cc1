package analytics

import (
	"cmp"
	"slices"
	"time"

	"library-stats/internal/domain"
)

// Window is the half-open time range [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// UserOverlap describes how many open loans of one user overlapped at most.
type UserOverlap struct {
	UserID           int64       `json:"user_id"`
	OpenLoanCount    int         `json:"open_loan_count"`
	PeakSimultaneous int         `json:"peak_simultaneous"`
	PeakStartDates   []time.Time `json:"peak_start_dates"`
	ActiveLoanStarts []time.Time `json:"active_loan_starts"`
	PeakWindow       *Window     `json:"peak_window,omitempty"`
}

// OverlapResult names the user holding the most simultaneously open loans.
// Found is false when no user has an open loan.
type OverlapResult struct {
	Found            bool        `json:"found"`
	UserID           int64       `json:"user_id,omitempty"`
	UserName         string      `json:"user_name,omitempty"`
	PeakSimultaneous int         `json:"peak_simultaneous"`
	PeakStartDates   []time.Time `json:"peak_start_dates"`
	ActiveLoanStarts []time.Time `json:"active_loan_starts"`
	PeakWindow       *Window     `json:"peak_window,omitempty"`
	TiedUserIDs      []int64     `json:"tied_user_ids"`
}

type sweepEvent struct {
	at    time.Time
	delta int
}

// UserPeak sweeps the open loans of a single user. Every open loan is the
// interval [LoanDate, now); loans starting at or after now are empty and never
// overlap anything. Closed loans are ignored.
func UserPeak(userID int64, loans []domain.Loan, now time.Time) UserOverlap {
	result := UserOverlap{
		UserID:           userID,
		PeakStartDates:   []time.Time{},
		ActiveLoanStarts: []time.Time{},
	}

	var (
		events []sweepEvent
		starts []time.Time
	)
	for _, loan := range loans {
		if !loan.IsOpen() {
			continue
		}
		result.OpenLoanCount++
		if !loan.LoanDate.Before(now) {
			continue
		}
		starts = append(starts, loan.LoanDate)
		events = append(events,
			sweepEvent{at: loan.LoanDate, delta: 1},
			sweepEvent{at: now, delta: -1},
		)
	}
	if len(events) == 0 {
		return result
	}

	// ends sort before starts at the same instant: intervals are half-open
	slices.SortStableFunc(events, func(a, b sweepEvent) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return cmp.Compare(a.delta, b.delta)
	})

	running := 0
	peakIdx := -1
	for i, ev := range events {
		running += ev.delta
		if i+1 < len(events) && events[i+1].at.Equal(ev.at) {
			continue
		}
		switch {
		case running > result.PeakSimultaneous:
			result.PeakSimultaneous = running
			result.PeakStartDates = []time.Time{ev.at}
			peakIdx = i
		case running > 0 && running == result.PeakSimultaneous:
			result.PeakStartDates = append(result.PeakStartDates, ev.at)
		}
	}
	if peakIdx < 0 || peakIdx+1 >= len(events) {
		return result
	}

	window := Window{From: events[peakIdx].at, To: events[peakIdx+1].at}
	result.PeakWindow = &window

	slices.SortFunc(starts, func(a, b time.Time) int { return a.Compare(b) })
	for _, start := range starts {
		if !start.After(window.From) {
			result.ActiveLoanStarts = append(result.ActiveLoanStarts, start)
		}
	}
	return result
}

// GlobalPeak runs UserPeak for every user in ascending user ID order and
// selects the user with the highest peak. On a tie the lowest user ID wins
// and all tied users are listed in TiedUserIDs.
func GlobalPeak(users []domain.User, loansByUser map[int64][]domain.Loan, now time.Time) (OverlapResult, []UserOverlap) {
	result := OverlapResult{
		PeakStartDates:   []time.Time{},
		ActiveLoanStarts: []time.Time{},
		TiedUserIDs:      []int64{},
	}

	sorted := sortedUsers(users)
	perUser := make([]UserOverlap, 0, len(sorted))
	var winner *domain.User
	var best UserOverlap
	for i := range sorted {
		overlap := UserPeak(sorted[i].ID, loansByUser[sorted[i].ID], now)
		perUser = append(perUser, overlap)

		switch {
		case overlap.PeakSimultaneous == 0:
		case overlap.PeakSimultaneous > best.PeakSimultaneous:
			winner = &sorted[i]
			best = overlap
			result.TiedUserIDs = []int64{sorted[i].ID}
		case overlap.PeakSimultaneous == best.PeakSimultaneous:
			result.TiedUserIDs = append(result.TiedUserIDs, sorted[i].ID)
		}
	}

	if winner == nil {
		return result, perUser
	}

	result.Found = true
	result.UserID = winner.ID
	result.UserName = winner.Name
	result.PeakSimultaneous = best.PeakSimultaneous
	result.PeakStartDates = best.PeakStartDates
	result.ActiveLoanStarts = best.ActiveLoanStarts
	result.PeakWindow = best.PeakWindow
	return result, perUser
}
