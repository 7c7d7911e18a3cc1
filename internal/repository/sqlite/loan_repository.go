package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"library-stats/internal/domain"
	"library-stats/internal/repository"
)

const createLoansTable = `
CREATE TABLE IF NOT EXISTS loans (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	loan_date TEXT NOT NULL,
	return_date TEXT NULL,
	FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_loans_user_id ON loans(user_id);
CREATE INDEX IF NOT EXISTS idx_loans_loan_date ON loans(loan_date);
`

const (
	tableLoans    = "loans"
	colUserID     = "user_id"
	colLoanDate   = "loan_date"
	colReturnDate = "return_date"
)

// dates are stored as YYYY-MM-DD text so lexical order is chronological
type loanRow struct {
	ID         int64          `db:"id"`
	BookID     int64          `db:"book_id"`
	UserID     int64          `db:"user_id"`
	LoanDate   string         `db:"loan_date"`
	ReturnDate sql.NullString `db:"return_date"`
}

func (r loanRow) toDomain() (domain.Loan, error) {
	loanDate, err := domain.ParseDate(r.LoanDate)
	if err != nil {
		return domain.Loan{}, fmt.Errorf("loan %d: %w", r.ID, err)
	}
	loan := domain.Loan{
		ID:       r.ID,
		BookID:   r.BookID,
		UserID:   r.UserID,
		LoanDate: loanDate,
	}
	if r.ReturnDate.Valid {
		returnDate, err := domain.ParseDate(r.ReturnDate.String)
		if err != nil {
			return domain.Loan{}, fmt.Errorf("loan %d: %w", r.ID, err)
		}
		loan.ReturnDate = &returnDate
	}
	return loan, nil
}

type LoanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sql.DB) repository.LoanRepository {
	return &LoanRepository{db: wrap(db)}
}

func (r *LoanRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createLoansTable); err != nil {
		return fmt.Errorf("create loans table: %w", err)
	}
	return nil
}

func (r *LoanRepository) Create(ctx context.Context, loan *domain.Loan) (int64, error) {
	record := goqu.Record{
		"book_id":     loan.BookID,
		colUserID:     loan.UserID,
		colLoanDate:   loan.LoanDate.Format(domain.DateLayout),
		colReturnDate: nil,
	}
	if loan.ReturnDate != nil {
		record[colReturnDate] = loan.ReturnDate.Format(domain.DateLayout)
	}

	query, args, err := dialect.Insert(tableLoans).Rows(record).Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert loan: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert loan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("loan last insert id: %w", err)
	}
	loan.ID = id
	return id, nil
}

func (r *LoanRepository) List(ctx context.Context, filter repository.LoanFilter) ([]domain.Loan, error) {
	ds := dialect.From(tableLoans).
		Select("id", "book_id", colUserID, colLoanDate, colReturnDate).
		Order(goqu.C("id").Asc())
	if where := loanConditions(filter); len(where) > 0 {
		ds = ds.Where(where...)
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list loans: %w", err)
	}

	var rows []loanRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}

	loans := make([]domain.Loan, 0, len(rows))
	for _, row := range rows {
		loan, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

func loanConditions(filter repository.LoanFilter) []exp.Expression {
	var where []exp.Expression
	if filter.UserID != nil {
		where = append(where, goqu.C(colUserID).Eq(*filter.UserID))
	}
	if filter.Period != nil {
		if !filter.Period.From.IsZero() {
			where = append(where, goqu.C(colLoanDate).Gte(filter.Period.From.Format(domain.DateLayout)))
		}
		if !filter.Period.To.IsZero() {
			where = append(where, goqu.C(colLoanDate).Lt(filter.Period.To.Format(domain.DateLayout)))
		}
	}
	return where
}

func (r *LoanRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM loans`); err != nil {
		return fmt.Errorf("delete loans: %w", err)
	}
	return nil
}
