// internal/order/handler_test.go
package order

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/auth"
	"bookstore/internal/pagination"
)

type fakeService struct {
	createFn func(ctx context.Context, userID uuid.UUID) (*Order, error)
	listFn   func(ctx context.Context, userID uuid.UUID, page pagination.Request) (*pagination.Page[Order], error)
}

func (f *fakeService) Create(ctx context.Context, userID uuid.UUID) (*Order, error) {
	return f.createFn(ctx, userID)
}

func (f *fakeService) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (*pagination.Page[Order], error) {
	return f.listFn(ctx, userID, page)
}

type fakeAuthService struct {
	principal *auth.Principal
}

func (f *fakeAuthService) Register(context.Context, string, string, string) (*auth.User, error) {
	panic("not used")
}

func (f *fakeAuthService) Login(context.Context, string, string) (string, error) {
	panic("not used")
}

func (f *fakeAuthService) ResolvePrincipal(context.Context, string) (*auth.Principal, error) {
	return f.principal, nil
}

var testPrincipal = &auth.Principal{ID: uuid.New(), Username: "alice", Role: auth.RoleUser}

func doRequest(t *testing.T, svc Service, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Use(auth.Authenticate(&fakeAuthService{principal: testPrincipal}))
	r.Post("/api/orders", h.Create)
	r.Get("/api/orders", h.ListOrders)

	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateHandler(t *testing.T) {
	svc := &fakeService{
		createFn: func(_ context.Context, userID uuid.UUID) (*Order, error) {
			assert.Equal(t, testPrincipal.ID, userID)
			return &Order{
				ID:         uuid.New(),
				UserID:     userID,
				TotalPrice: 25.5,
				CreatedAt:  time.Now().UTC(),
				Items: []Item{
					{BookID: uuid.New(), Title: "Dune", Author: "Herbert", UnitPrice: 10.0, Quantity: 2},
				},
			}, nil
		},
	}

	rec := doRequest(t, svc, "POST", "/api/orders")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_price":25.5`)
	assert.Contains(t, rec.Body.String(), "Dune")
}

func TestCreateHandlerEmptyCart(t *testing.T) {
	svc := &fakeService{
		createFn: func(context.Context, uuid.UUID) (*Order, error) {
			return nil, ErrEmptyCart
		},
	}

	rec := doRequest(t, svc, "POST", "/api/orders")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty_cart")
}

func TestCreateHandlerInsufficientStock(t *testing.T) {
	svc := &fakeService{
		createFn: func(context.Context, uuid.UUID) (*Order, error) {
			return nil, ErrInsufficientStock
		},
	}

	rec := doRequest(t, svc, "POST", "/api/orders")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient_stock")
}

func TestListOrdersHandler(t *testing.T) {
	svc := &fakeService{
		listFn: func(_ context.Context, userID uuid.UUID, page pagination.Request) (*pagination.Page[Order], error) {
			assert.Equal(t, testPrincipal.ID, userID)
			assert.Equal(t, "created_at", page.SortColumn)
			assert.Equal(t, "DESC", page.Direction)
			return pagination.NewPage([]Order{
				{ID: uuid.New(), UserID: userID, TotalPrice: 5.5, CreatedAt: time.Now().UTC(), Items: []Item{}},
			}, page, 1), nil
		},
	}

	rec := doRequest(t, svc, "GET", "/api/orders")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_elements":1`)
}

func TestListOrdersHandlerBadSort(t *testing.T) {
	svc := &fakeService{}

	rec := doRequest(t, svc, "GET", "/api/orders?sortBy=email")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}
