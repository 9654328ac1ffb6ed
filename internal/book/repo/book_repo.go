package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/book/entity"
)

var ErrNotFound = errors.New("book not found")

const bookColumns = `id, title, author, genre, published_date, description, created_by, created_at, updated_at`

// Repo is the repository implementation for books backed by PostgreSQL.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a new Repo with an existing *sqlx.DB connection.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts b and fills its timestamps.
func (r *Repo) Create(ctx context.Context, b *entity.Book) error {
	const q = `INSERT INTO books (id, title, author, genre, published_date, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, q, b.ID, b.Title, b.Author, b.Genre, b.PublishedDate, b.Description, b.CreatedBy)
	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns a book or ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	var b entity.Book
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		return nil, notFoundOr(err)
	}
	return &b, nil
}

// Update applies the non-nil fields of p and returns the stored row.
func (r *Repo) Update(ctx context.Context, id string, p entity.Patch) (*entity.Book, error) {
	const q = `UPDATE books SET
		title = COALESCE($2, title),
		author = COALESCE($3, author),
		genre = COALESCE($4, genre),
		published_date = COALESCE($5, published_date),
		description = COALESCE($6, description),
		updated_at = NOW()
		WHERE id = $1 RETURNING ` + bookColumns
	var b entity.Book
	if err := r.db.GetContext(ctx, &b, q, id, p.Title, p.Author, p.Genre, p.PublishedDate, p.Description); err != nil {
		return nil, notFoundOr(err)
	}
	return &b, nil
}

// Delete removes the book and returns the row as it was.
func (r *Repo) Delete(ctx context.Context, id string) (*entity.Book, error) {
	const q = `DELETE FROM books WHERE id = $1 RETURNING ` + bookColumns
	var b entity.Book
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		return nil, notFoundOr(err)
	}
	return &b, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
