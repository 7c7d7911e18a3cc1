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

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);
`

const tableUsers = "users"

type userRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: wrap(db)}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	query, args, err := dialect.Insert(tableUsers).
		Rows(goqu.Record{"name": user.Name}).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert user: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT id, name FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &domain.User{ID: row.ID, Name: row.Name}, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name FROM users ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = domain.User{ID: row.ID, Name: row.Name}
	}
	return users, nil
}

func (r *UserRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}
