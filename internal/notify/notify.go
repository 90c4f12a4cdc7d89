// internal/notify/notify.go
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Confirmation carries the order facts a confirmation message needs.
type Confirmation struct {
	OrderID    uuid.UUID
	Username   string
	TotalPrice float64
}

// Notifier delivers order confirmations. Implementations must be safe for
// concurrent use; delivery failures are the caller's to log, not to retry.
type Notifier interface {
	OrderConfirmation(ctx context.Context, to string, c Confirmation) error
}

// LogNotifier writes confirmations to the log instead of sending anything.
// It is the default sink when no email sender is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) OrderConfirmation(ctx context.Context, to string, c Confirmation) error {
	n.log.Info().
		Str("recipient", to).
		Str("order_id", c.OrderID.String()).
		Float64("total", c.TotalPrice).
		Msg("order confirmation (log only)")
	return nil
}
