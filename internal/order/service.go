// internal/order/service.go
package order

import (
	"context"

	"github.com/google/uuid"

	"bookstore/internal/pagination"
)

// Service defines the interface for the order workflow.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (*pagination.Page[Order], error)
}
