// internal/catalog/implementation.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookstore/internal/pagination"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidBook  = errors.New("invalid book")
	ErrInvalidStock = errors.New("stock cannot be negative")
)

// service implements the Service interface.
type service struct {
	db *sql.DB
}

// NewService creates a new catalog service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// AddBook creates a new book in the catalog.
func (s *service) AddBook(ctx context.Context, in NewBookInput) (*Book, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidBook)
	}
	if strings.TrimSpace(in.Author) == "" {
		return nil, fmt.Errorf("%w: author is required", ErrInvalidBook)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidBook)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrInvalidBook)
	}

	now := time.Now().UTC()
	book := &Book{
		ID:        uuid.New(),
		Title:     in.Title,
		Author:    in.Author,
		Price:     in.Price,
		Category:  in.Category,
		Stock:     in.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author, price, category, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, book.ID, book.Title, book.Author, book.Price, book.Category, book.Stock, book.CreatedAt, book.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}

	return book, nil
}

// GetBook retrieves a book by its ID.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	book := &Book{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, price, category, stock, created_at, updated_at
		FROM books
		WHERE id = $1
	`, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Price,
		&book.Category,
		&book.Stock,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("query book: %w", err)
	}

	return book, nil
}

// ListBooks returns the full catalog, paged.
func (s *service) ListBooks(ctx context.Context, page pagination.Request) (*pagination.Page[Book], error) {
	return s.listPage(ctx, "", nil, page)
}

// ListByCategory returns books in the given category, paged.
func (s *service) ListByCategory(ctx context.Context, category string, page pagination.Request) (*pagination.Page[Book], error) {
	return s.listPage(ctx, "WHERE category = $1", []interface{}{category}, page)
}

// Search matches the query against title or author, paged.
func (s *service) Search(ctx context.Context, query string, page pagination.Request) (*pagination.Page[Book], error) {
	pattern := "%" + query + "%"
	return s.listPage(ctx, "WHERE title ILIKE $1 OR author ILIKE $1", []interface{}{pattern}, page)
}

func (s *service) listPage(ctx context.Context, where string, args []interface{}, page pagination.Request) (*pagination.Page[Book], error) {
	countQuery := "SELECT COUNT(*) FROM books"
	if where != "" {
		countQuery += " " + where
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	listQuery := "SELECT id, title, author, price, category, stock, created_at, updated_at FROM books"
	if where != "" {
		listQuery += " " + where
	}
	// Sort column and direction come from the pagination whitelist, limit and
	// offset are plain ints.
	listQuery += fmt.Sprintf(" ORDER BY %s LIMIT %d OFFSET %d", page.OrderBy(), page.Size, page.Offset())

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var book Book
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Price,
			&book.Category,
			&book.Stock,
			&book.CreatedAt,
			&book.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return pagination.NewPage(books, page, total), nil
}

// UpdateStock sets a book's stock to an absolute value.
func (s *service) UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*Book, error) {
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET stock = $1, updated_at = NOW() WHERE id = $2
	`, stock, id)
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	if affected == 0 {
		return nil, ErrBookNotFound
	}

	return s.GetBook(ctx, id)
}

// DeleteBook removes a book from the catalog.
func (s *service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if affected == 0 {
		return ErrBookNotFound
	}

	return nil
}
