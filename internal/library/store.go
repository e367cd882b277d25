// Package library stores the book catalog and answers searches against it.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotInitialized is returned when the catalog tables do not exist yet.
var ErrNotInitialized = errors.New("library database not initialized: run 'librarygrid import' first")

// Book is one catalog record and the grid cell of the shelf holding it.
type Book struct {
	ID     int64  `json:"id"`
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// Store is a pooled SQLite catalog. It is safe for concurrent use by
// request handlers; no handler holds a connection beyond its own query.
type Store struct {
	db *sql.DB
}

// Open opens the database at path. Use ":memory:" for a private in-memory
// database (useful for testing).
func Open(path string) (*Store, error) {
	dsn := path
	memory := path == ":memory:"
	if !memory {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if memory {
		// every connection to :memory: would be a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(4)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates all tables and indexes.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Search returns up to limit books whose title or author contains q,
// ordered by title. LIKE folds ASCII case only.
func (s *Store) Search(ctx context.Context, q string, limit int) ([]Book, error) {
	query := `
		SELECT id, isbn, title, author, shelf_x, shelf_y
		FROM books
		WHERE title LIKE ? ESCAPE '\'
		   OR author LIKE ? ESCAPE '\'
		ORDER BY title COLLATE NOCASE, id
		LIMIT ?
	`

	pattern := "%" + escapeLike(q) + "%"
	rows, err := s.db.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, wrapErr("search books", err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.X, &b.Y); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("search books", err)
	}
	return books, nil
}

// Upsert inserts b or replaces the record with the same ISBN.
func (s *Store) Upsert(ctx context.Context, b *Book) error {
	return upsert(ctx, s.db, b)
}

// Count returns the number of books in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, wrapErr("count books", err)
	}
	return n, nil
}

// Ping verifies a connection can be made.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func upsert(ctx context.Context, db rowQuerier, b *Book) error {
	query := `
		INSERT INTO books (isbn, title, author, shelf_x, shelf_y, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(isbn) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			shelf_x = excluded.shelf_x,
			shelf_y = excluded.shelf_y,
			updated_at = excluded.updated_at
		RETURNING id
	`

	err := db.QueryRowContext(ctx, query, b.ISBN, b.Title, b.Author, b.X, b.Y, time.Now().UTC().Format(time.RFC3339)).Scan(&b.ID)
	if err != nil {
		return wrapErr("upsert book "+b.ISBN, err)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func wrapErr(op string, err error) error {
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("failed to %s: %w", op, ErrNotInitialized)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
