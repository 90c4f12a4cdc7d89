// internal/cart/implementation.go
package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bookstore/internal/catalog"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrItemNotInCart     = errors.New("book not in cart")
)

// querier is the subset of *sql.DB and *sql.Tx the cart queries need.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// service implements the Service interface.
type service struct {
	db *sql.DB
}

// NewService creates a new cart service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	cartID, err := s.ensureCart(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.readCart(ctx, cartID, userID)
}

// AddItem appends a line item or merges quantities when the book is already
// in the cart. The stock check here is advisory; order placement re-checks.
func (s *service) AddItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	cartID, err := s.ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	title, stock, err := s.bookStock(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if stock < quantity {
		return nil, fmt.Errorf("%w for book %q", ErrInsufficientStock, title)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (cart_id, book_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, book_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, cartID, bookID, quantity)
	if err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.readCart(ctx, cartID, userID)
}

// UpdateItem replaces a line's quantity with an absolute value.
func (s *service) UpdateItem(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	cartID, err := s.ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	title, stock, err := s.bookStock(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if stock < quantity {
		return nil, fmt.Errorf("%w for book %q", ErrInsufficientStock, title)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND book_id = $3
	`, quantity, cartID, bookID)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	if affected == 0 {
		return nil, ErrItemNotInCart
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.readCart(ctx, cartID, userID)
}

// RemoveItem deletes the matching line if present. Removing an absent book is
// not an error.
func (s *service) RemoveItem(ctx context.Context, userID, bookID uuid.UUID) (*Cart, error) {
	cartID, err := s.ensureCart(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND book_id = $2
	`, cartID, bookID)
	if err != nil {
		return nil, fmt.Errorf("delete cart item: %w", err)
	}

	return s.readCart(ctx, cartID, userID)
}

// Clear empties all line items.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cartID, err := s.ensureCart(ctx, s.db, userID)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

// ensureCart resolves the user's cart id, creating the cart on first access.
func (s *service) ensureCart(ctx context.Context, q querier, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("query cart: %w", err)
	}

	// Lose the insert race gracefully: another request may create the cart
	// between the select and the insert.
	_, err = q.ExecContext(ctx, `
		INSERT INTO carts (id, user_id) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create cart: %w", err)
	}

	if err := q.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("query cart: %w", err)
	}
	return id, nil
}

func (s *service) bookStock(ctx context.Context, q querier, bookID uuid.UUID) (string, int, error) {
	var (
		title string
		stock int
	)
	err := q.QueryRowContext(ctx, `SELECT title, stock FROM books WHERE id = $1`, bookID).Scan(&title, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, catalog.ErrBookNotFound
		}
		return "", 0, fmt.Errorf("query book: %w", err)
	}
	return title, stock, nil
}

func (s *service) readCart(ctx context.Context, cartID, userID uuid.UUID) (*Cart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ci.book_id, b.title, b.price, ci.quantity
		FROM cart_items ci
		JOIN books b ON b.id = ci.book_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	c := &Cart{ID: cartID, UserID: userID, Items: []Item{}}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.BookID, &item.Title, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return c, nil
}
