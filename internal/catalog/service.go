// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"

	"bookstore/internal/pagination"
)

// Service defines the interface for the catalog service.
type Service interface {
	AddBook(ctx context.Context, in NewBookInput) (*Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	ListBooks(ctx context.Context, page pagination.Request) (*pagination.Page[Book], error)
	ListByCategory(ctx context.Context, category string, page pagination.Request) (*pagination.Page[Book], error)
	Search(ctx context.Context, query string, page pagination.Request) (*pagination.Page[Book], error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) (*Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}
