// internal/cart/domain.go
package cart

import (
	"github.com/google/uuid"
)

// Cart is the read model for a user's single active cart. Items keep their
// insertion order and carry live catalog title/price for display; nothing in
// a cart is a purchase snapshot.
type Cart struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Items  []Item    `json:"items"`
}

// Item is one book-quantity line within a cart.
type Item struct {
	BookID    uuid.UUID `json:"book_id"`
	Title     string    `json:"title"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}
