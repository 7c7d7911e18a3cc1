package domain

type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusBorrowed  BookStatus = "borrowed"
)

// Book represents a catalog entry of the library.
type Book struct {
	ID            int64
	Title         string
	Author        string
	PublishedDate string
	Status        BookStatus
	Pages         int
	Rating        float64
}
