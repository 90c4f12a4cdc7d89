// internal/order/domain.go
package order

import (
	"time"

	"github.com/google/uuid"
)

// Order is an immutable purchase record. Items are point-in-time snapshots;
// later catalog edits never alter them.
type Order struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	Items      []Item    `json:"items"`
}

// Item is one line of an order, capturing book identity and the unit price
// at purchase time.
type Item struct {
	BookID    uuid.UUID `json:"book_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}
