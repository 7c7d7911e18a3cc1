package domain

// User represents a library member who borrows books.
type User struct {
	ID   int64
	Name string
}
