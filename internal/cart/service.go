// internal/cart/service.go
package cart

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the cart manager.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*Cart, error)
	UpdateItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, userID, bookID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}
