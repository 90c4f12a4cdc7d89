// internal/order/implementation_test.go
package order

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/catalog"
	"bookstore/internal/notify"
	"bookstore/internal/pagination"
)

type sentConfirmation struct {
	to string
	c  notify.Confirmation
}

type recordingNotifier struct {
	sent chan sentConfirmation
	err  error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan sentConfirmation, 1)}
}

func (n *recordingNotifier) OrderConfirmation(_ context.Context, to string, c notify.Confirmation) error {
	if n.err != nil {
		return n.err
	}
	n.sent <- sentConfirmation{to: to, c: c}
	return nil
}

func newTestService(t *testing.T) (Service, sqlmock.Sqlmock, *recordingNotifier) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	notifier := newRecordingNotifier()
	return NewService(db, notifier, zerolog.Nop()), mock, notifier
}

func TestCreateEmptyCart(t *testing.T) {
	svc, mock, _ := newTestService(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT ci.book_id, ci.quantity").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "quantity"}))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), userID)
	require.ErrorIs(t, err, ErrEmptyCart)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInsufficientStock(t *testing.T) {
	svc, mock, _ := newTestService(t)
	userID := uuid.New()
	bookID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT ci.book_id, ci.quantity").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "quantity"}).AddRow(bookID.String(), 3))
	mock.ExpectQuery("SELECT username, email FROM users").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow("alice", "alice@example.com"))
	mock.ExpectQuery("SELECT title, author, price, stock FROM books").
		WithArgs(bookID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"title", "author", "price", "stock"}).
			AddRow("Dune", "Herbert", 9.99, 1))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), userID)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Dune")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStockRace(t *testing.T) {
	svc, mock, _ := newTestService(t)
	userID := uuid.New()
	bookID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT ci.book_id, ci.quantity").
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "quantity"}).AddRow(bookID.String(), 2))
	mock.ExpectQuery("SELECT username, email FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow("alice", ""))
	mock.ExpectQuery("SELECT title, author, price, stock FROM books").
		WillReturnRows(sqlmock.NewRows([]string{"title", "author", "price", "stock"}).
			AddRow("Dune", "Herbert", 9.99, 2))
	// A concurrent order drained the stock between the read and the update.
	mock.ExpectExec("UPDATE books SET stock = stock -").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), userID)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookRemoved(t *testing.T) {
	svc, mock, _ := newTestService(t)
	userID := uuid.New()
	bookID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT ci.book_id, ci.quantity").
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "quantity"}).AddRow(bookID.String(), 1))
	mock.ExpectQuery("SELECT username, email FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow("alice", ""))
	mock.ExpectQuery("SELECT title, author, price, stock FROM books").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), userID)
	require.ErrorIs(t, err, catalog.ErrBookNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	svc, mock, notifier := newTestService(t)
	userID := uuid.New()
	book1 := uuid.New()
	book2 := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT ci.book_id, ci.quantity").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "quantity"}).
			AddRow(book1.String(), 2).
			AddRow(book2.String(), 1))
	mock.ExpectQuery("SELECT username, email FROM users").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow("alice", "alice@example.com"))

	mock.ExpectQuery("SELECT title, author, price, stock FROM books").
		WithArgs(book1.String()).
		WillReturnRows(sqlmock.NewRows([]string{"title", "author", "price", "stock"}).
			AddRow("Dune", "Herbert", 10.0, 5))
	mock.ExpectExec("UPDATE books SET stock = stock -").
		WithArgs(2, book1.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("SELECT title, author, price, stock FROM books").
		WithArgs(book2.String()).
		WillReturnRows(sqlmock.NewRows([]string{"title", "author", "price", "stock"}).
			AddRow("Beloved", "Morrison", 5.5, 3))
	mock.ExpectExec("UPDATE books SET stock = stock -").
		WithArgs(1, book2.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), userID.String(), 25.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(sqlmock.AnyArg(), book1.String(), "Dune", "Herbert", 10.0, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(sqlmock.AnyArg(), book2.String(), "Beloved", "Morrison", 5.5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ord, err := svc.Create(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, userID, ord.UserID)
	assert.InDelta(t, 25.5, ord.TotalPrice, 1e-9)
	require.Len(t, ord.Items, 2)
	assert.Equal(t, "Dune", ord.Items[0].Title)
	assert.Equal(t, "Morrison", ord.Items[1].Author)

	select {
	case sent := <-notifier.sent:
		assert.Equal(t, "alice@example.com", sent.to)
		assert.Equal(t, ord.ID, sent.c.OrderID)
		assert.Equal(t, "alice", sent.c.Username)
		assert.InDelta(t, 25.5, sent.c.TotalPrice, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation was not dispatched")
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNoEmailSkipsNotification(t *testing.T) {
	svc, mock, notifier := newTestService(t)
	userID := uuid.New()
	bookID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT ci.book_id, ci.quantity").
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "quantity"}).AddRow(bookID.String(), 1))
	mock.ExpectQuery("SELECT username, email FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow("alice", ""))
	mock.ExpectQuery("SELECT title, author, price, stock FROM books").
		WillReturnRows(sqlmock.NewRows([]string{"title", "author", "price", "stock"}).
			AddRow("Dune", "Herbert", 9.99, 5))
	mock.ExpectExec("UPDATE books SET stock = stock -").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := svc.Create(context.Background(), userID)
	require.NoError(t, err)

	select {
	case <-notifier.sent:
		t.Fatal("no confirmation expected without an email address")
	case <-time.After(100 * time.Millisecond):
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser(t *testing.T) {
	svc, mock, _ := newTestService(t)
	userID := uuid.New()
	order1 := uuid.New()
	order2 := uuid.New()
	bookID := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT id, user_id, total_price, created_at").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_price", "created_at"}).
			AddRow(order2.String(), userID.String(), 5.5, time.Now().UTC()).
			AddRow(order1.String(), userID.String(), 25.5, time.Now().UTC().Add(-time.Hour)))
	mock.ExpectQuery("SELECT order_id, book_id, title, author, unit_price, quantity").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "book_id", "title", "author", "unit_price", "quantity"}).
			AddRow(order1.String(), bookID.String(), "Dune", "Herbert", 10.0, 2).
			AddRow(order2.String(), bookID.String(), "Beloved", "Morrison", 5.5, 1))

	page, err := svc.ListByUser(context.Background(), userID, pagination.Request{
		Page: 0, Size: 10, SortColumn: "created_at", Direction: "DESC",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), page.TotalElements)
	require.Len(t, page.Content, 2)
	assert.Equal(t, order2, page.Content[0].ID)
	require.Len(t, page.Content[0].Items, 1)
	assert.Equal(t, "Beloved", page.Content[0].Items[0].Title)
	require.Len(t, page.Content[1].Items, 1)
	assert.Equal(t, "Dune", page.Content[1].Items[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUserEmpty(t *testing.T) {
	svc, mock, _ := newTestService(t)
	userID := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT id, user_id, total_price, created_at").
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_price", "created_at"}))

	page, err := svc.ListByUser(context.Background(), userID, pagination.Request{
		Page: 0, Size: 10, SortColumn: "created_at", Direction: "DESC",
	})
	require.NoError(t, err)

	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
	require.NoError(t, mock.ExpectationsWereMet())
}
