// internal/cart/handler.go
package cart

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"bookstore/internal/auth"
	"bookstore/internal/catalog"
	"bookstore/internal/httputil"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	c, err := h.service.GetCart(r.Context(), principal.ID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, h.service.AddItem)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	h.mutateItem(w, r, h.service.UpdateItem)
}

func (h *Handler) mutateItem(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*Cart, error)) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	bookID, err := uuid.Parse(r.URL.Query().Get("bookId"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid bookId")
		return
	}

	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid quantity")
		return
	}

	c, err := op(r.Context(), principal.ID, bookID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidQuantity):
			httputil.RespondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		case errors.Is(err, catalog.ErrBookNotFound):
			httputil.RespondError(w, http.StatusBadRequest, "book_not_found", "book not found")
		case errors.Is(err, ErrInsufficientStock):
			httputil.RespondError(w, http.StatusBadRequest, "insufficient_stock", err.Error())
		case errors.Is(err, ErrItemNotInCart):
			httputil.RespondError(w, http.StatusBadRequest, "item_not_in_cart", "book not in cart")
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	bookID, err := uuid.Parse(r.URL.Query().Get("bookId"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid bookId")
		return
	}

	c, err := h.service.RemoveItem(r.Context(), principal.ID, bookID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	if err := h.service.Clear(r.Context(), principal.ID); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
