package analytics

import (
	"cmp"
	"slices"

	"library-stats/internal/domain"
)

// AuthorIndex maps an author to the set of users who ever borrowed one of their books.
type AuthorIndex map[string]map[int64]struct{}

// BuildAuthorIndex indexes borrowers by author in a single pass over the loans.
// Returned and open loans count alike; loans whose book is unknown are ignored.
func BuildAuthorIndex(loans []domain.Loan, books map[int64]domain.Book) AuthorIndex {
	index := make(AuthorIndex)
	for _, loan := range loans {
		book, ok := books[loan.BookID]
		if !ok {
			continue
		}
		borrowers, ok := index[book.Author]
		if !ok {
			borrowers = make(map[int64]struct{})
			index[book.Author] = borrowers
		}
		borrowers[loan.UserID] = struct{}{}
	}
	return index
}

// ExclusiveTo lists, sorted, the authors whose only borrower is userID.
func (idx AuthorIndex) ExclusiveTo(userID int64) []string {
	authors := []string{}
	for author, borrowers := range idx {
		if len(borrowers) != 1 {
			continue
		}
		if _, ok := borrowers[userID]; ok {
			authors = append(authors, author)
		}
	}
	slices.Sort(authors)
	return authors
}

// byUser inverts the single-borrower entries of the index.
func (idx AuthorIndex) byUser() map[int64][]string {
	out := make(map[int64][]string)
	for author, borrowers := range idx {
		if len(borrowers) != 1 {
			continue
		}
		for userID := range borrowers {
			out[userID] = append(out[userID], author)
		}
	}
	return out
}

// UserAuthors lists the authors borrowed exclusively by one user.
type UserAuthors struct {
	UserID  int64    `json:"user_id"`
	Name    string   `json:"name"`
	Authors []string `json:"authors"`
}

// ExclusiveAuthors returns one entry per user, in ascending user ID order.
// Users without exclusive authors get an empty list.
func ExclusiveAuthors(users []domain.User, idx AuthorIndex) []UserAuthors {
	exclusive := idx.byUser()

	sorted := sortedUsers(users)
	out := make([]UserAuthors, 0, len(sorted))
	for _, user := range sorted {
		authors := exclusive[user.ID]
		if authors == nil {
			authors = []string{}
		}
		slices.Sort(authors)
		out = append(out, UserAuthors{UserID: user.ID, Name: user.Name, Authors: authors})
	}
	return out
}

func sortedUsers(users []domain.User) []domain.User {
	sorted := slices.Clone(users)
	slices.SortStableFunc(sorted, func(a, b domain.User) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}
