package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"library-stats/internal/domain"
	"library-stats/internal/repository"
)

const createBooksTable = `
CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	published_date TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'available',
	pages INTEGER NOT NULL DEFAULT 0,
	goodread_rating REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_books_author ON books(author);
`

const tableBooks = "books"

var bookColumns = []any{"id", "title", "author", "published_date", "status", "pages", "goodread_rating"}

type bookRow struct {
	ID            int64   `db:"id"`
	Title         string  `db:"title"`
	Author        string  `db:"author"`
	PublishedDate string  `db:"published_date"`
	Status        string  `db:"status"`
	Pages         int     `db:"pages"`
	Rating        float64 `db:"goodread_rating"`
}

func (r bookRow) toDomain() domain.Book {
	return domain.Book{
		ID:            r.ID,
		Title:         r.Title,
		Author:        r.Author,
		PublishedDate: r.PublishedDate,
		Status:        domain.BookStatus(r.Status),
		Pages:         r.Pages,
		Rating:        r.Rating,
	}
}

type BookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sql.DB) repository.BookRepository {
	return &BookRepository{db: wrap(db)}
}

func (r *BookRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBooksTable); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

func (r *BookRepository) Create(ctx context.Context, book *domain.Book) (int64, error) {
	if book.Status == "" {
		book.Status = domain.BookStatusAvailable
	}

	query, args, err := dialect.Insert(tableBooks).Rows(goqu.Record{
		"title":           book.Title,
		"author":          book.Author,
		"published_date":  book.PublishedDate,
		"status":          string(book.Status),
		"pages":           book.Pages,
		"goodread_rating": book.Rating,
	}).Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert book: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("book last insert id: %w", err)
	}
	book.ID = id
	return id, nil
}

func (r *BookRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookStatus) error {
	query, args, err := dialect.Update(tableBooks).
		Set(goqu.Record{"status": string(status)}).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build update book status: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update book status: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("book status rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("book %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *BookRepository) Get(ctx context.Context, id int64) (*domain.Book, error) {
	query, args, err := dialect.From(tableBooks).Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select book: %w", err)
	}

	var row bookRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	book := row.toDomain()
	return &book, nil
}

func (r *BookRepository) List(ctx context.Context) ([]domain.Book, error) {
	query, args, err := dialect.From(tableBooks).Select(bookColumns...).
		Order(goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list books: %w", err)
	}

	var rows []bookRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}

	books := make([]domain.Book, len(rows))
	for i := range rows {
		books[i] = rows[i].toDomain()
	}
	return books, nil
}

func (r *BookRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("delete books: %w", err)
	}
	return nil
}
