// internal/order/implementation.go
package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookstore/internal/catalog"
	"bookstore/internal/notify"
	"bookstore/internal/pagination"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("not enough stock")
)

const notifyTimeout = 10 * time.Second

// service implements the Service interface.
type service struct {
	db       *sql.DB
	notifier notify.Notifier
	log      zerolog.Logger
	tracer   trace.Tracer
}

// NewService creates a new order service instance.
func NewService(db *sql.DB, notifier notify.Notifier, log zerolog.Logger) Service {
	return &service{
		db:       db,
		notifier: notifier,
		log:      log,
		tracer:   otel.Tracer("bookstore/order"),
	}
}

type cartLine struct {
	bookID   uuid.UUID
	quantity int
}

// Create converts the user's cart into an immutable order. Stock re-check,
// decrement, order insert and cart clearing form one transaction; the
// confirmation email is dispatched after commit and never rolls it back.
func (s *service) Create(ctx context.Context, userID uuid.UUID) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.create",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	lines, err := s.loadCartLines(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var (
		username string
		email    string
	)
	err = tx.QueryRowContext(ctx, `SELECT username, email FROM users WHERE id = $1`, userID).
		Scan(&username, &email)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	ord := &Order{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Items:     make([]Item, 0, len(lines)),
	}

	for _, line := range lines {
		var (
			title  string
			author string
			price  float64
			stock  int
		)
		err := tx.QueryRowContext(ctx, `
			SELECT title, author, price, stock FROM books WHERE id = $1
		`, line.bookID).Scan(&title, &author, &price, &stock)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, catalog.ErrBookNotFound
			}
			return nil, fmt.Errorf("query book: %w", err)
		}

		// Authoritative stock check, immediately before commit.
		if stock < line.quantity {
			return nil, fmt.Errorf("%w for book %q", ErrInsufficientStock, title)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE books SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1
		`, line.quantity, line.bookID)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("%w for book %q", ErrInsufficientStock, title)
		}

		ord.Items = append(ord.Items, Item{
			BookID:    line.bookID,
			Title:     title,
			Author:    author,
			UnitPrice: price,
			Quantity:  line.quantity,
		})
		ord.TotalPrice += price * float64(line.quantity)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_price, created_at)
		VALUES ($1, $2, $3, $4)
	`, ord.ID, ord.UserID, ord.TotalPrice, ord.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range ord.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, book_id, title, author, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, ord.ID, item.BookID, item.Title, item.Author, item.UnitPrice, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(
		attribute.String("order.id", ord.ID.String()),
		attribute.Int("order.items", len(ord.Items)),
		attribute.Float64("order.total", ord.TotalPrice),
	)

	if email != "" {
		go s.sendConfirmation(email, username, ord)
	}

	return ord, nil
}

func (s *service) loadCartLines(ctx context.Context, tx *sql.Tx, userID uuid.UUID) ([]cartLine, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT ci.book_id, ci.quantity
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = $1
		ORDER BY ci.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	var lines []cartLine
	for rows.Next() {
		var line cartLine
		if err := rows.Scan(&line.bookID, &line.quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return lines, nil
}

// sendConfirmation runs outside the order transaction. A failed notification
// is logged and dropped, never surfaced to the caller.
func (s *service) sendConfirmation(email, username string, ord *Order) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	err := s.notifier.OrderConfirmation(ctx, email, notify.Confirmation{
		OrderID:    ord.ID,
		Username:   username,
		TotalPrice: ord.TotalPrice,
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("order_id", ord.ID.String()).
			Str("recipient", email).
			Msg("order confirmation failed")
		return
	}

	s.log.Info().
		Str("order_id", ord.ID.String()).
		Str("recipient", email).
		Msg("order confirmation sent")
}

// ListByUser returns the caller's order history, paged and sorted.
func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (*pagination.Page[Order], error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, total_price, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY %s LIMIT %d OFFSET %d
	`, page.OrderBy(), page.Size, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []Order
		ids    []uuid.UUID
		index  = map[uuid.UUID]int{}
	)
	for rows.Next() {
		var ord Order
		if err := rows.Scan(&ord.ID, &ord.UserID, &ord.TotalPrice, &ord.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		ord.Items = []Item{}
		index[ord.ID] = len(orders)
		orders = append(orders, ord)
		ids = append(ids, ord.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(ids) > 0 {
		if err := s.attachItems(ctx, orders, index, ids); err != nil {
			return nil, err
		}
	}

	return pagination.NewPage(orders, page, total), nil
}

func (s *service) attachItems(ctx context.Context, orders []Order, index map[uuid.UUID]int, ids []uuid.UUID) error {
	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, book_id, title, author, unit_price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(idStrings))
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uuid.UUID
			item    Item
		)
		if err := rows.Scan(&orderID, &item.BookID, &item.Title, &item.Author, &item.UnitPrice, &item.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}

	return nil
}
