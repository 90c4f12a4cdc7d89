// internal/catalog/domain.go
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Book is a catalog entry. Stock is live inventory; it never goes negative.
type Book struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     float64   `json:"price"`
	Category  string    `json:"category,omitempty"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBookInput carries the fields accepted when an admin adds a book.
type NewBookInput struct {
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Stock    int     `json:"stock"`
}
