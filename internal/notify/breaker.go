// internal/notify/breaker.go
package notify

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerNotifier wraps another notifier with a circuit breaker so a dead
// mail provider stops consuming goroutines and timeouts. Notifications are
// fire-and-forget, so short-circuited sends are simply lost.
type BreakerNotifier struct {
	inner   Notifier
	breaker *gobreaker.CircuitBreaker
}

func WithBreaker(inner Notifier) *BreakerNotifier {
	return &BreakerNotifier{
		inner: inner,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "notifier",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (b *BreakerNotifier) OrderConfirmation(ctx context.Context, to string, c Confirmation) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.inner.OrderConfirmation(ctx, to, c)
	})
	return err
}
