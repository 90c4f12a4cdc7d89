// internal/order/handler.go
package order

import (
	"errors"
	"net/http"

	"bookstore/internal/auth"
	"bookstore/internal/catalog"
	"bookstore/internal/httputil"
	"bookstore/internal/pagination"
)

var orderSortFields = map[string]string{
	"created_at":  "created_at",
	"total_price": "total_price",
}

var orderSortDefaults = pagination.Defaults{SortBy: "created_at", Direction: "desc"}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	ord, err := h.service.Create(r.Context(), principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			httputil.RespondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
		case errors.Is(err, ErrInsufficientStock):
			httputil.RespondError(w, http.StatusBadRequest, "insufficient_stock", err.Error())
		case errors.Is(err, catalog.ErrBookNotFound):
			httputil.RespondError(w, http.StatusBadRequest, "book_not_found", "book no longer in catalog")
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to place order")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ord)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	page, err := pagination.Parse(r, orderSortDefaults, orderSortFields)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.service.ListByUser(r.Context(), principal.ID, page)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
