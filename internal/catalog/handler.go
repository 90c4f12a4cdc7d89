// internal/catalog/handler.go
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookstore/internal/httputil"
	"bookstore/internal/pagination"
)

var bookSortFields = map[string]string{
	"title":      "title",
	"author":     "author",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
}

var bookSortDefaults = pagination.Defaults{SortBy: "title", Direction: "asc"}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r, bookSortDefaults, bookSortFields)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.service.ListBooks(r.Context(), page)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to list books")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "missing category")
		return
	}

	page, err := pagination.Parse(r, bookSortDefaults, bookSortFields)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.service.ListByCategory(r.Context(), category, page)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to list books")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("search")
	if query == "" {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "missing search query")
		return
	}

	page, err := pagination.Parse(r, bookSortDefaults, bookSortFields)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.service.Search(r.Context(), query, page)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "search failed")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	var in NewBookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	book, err := h.service.AddBook(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrInvalidBook) {
			httputil.RespondError(w, http.StatusBadRequest, "invalid_book", err.Error())
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to add book")
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, book)
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid book ID")
		return
	}

	if err := h.service.DeleteBook(r.Context(), id); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			httputil.RespondError(w, http.StatusNotFound, "not_found", "book not found")
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to delete book")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid book ID")
		return
	}

	stock, err := strconv.Atoi(r.URL.Query().Get("stock"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid stock value")
		return
	}

	book, err := h.service.UpdateStock(r.Context(), id, stock)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStock):
			httputil.RespondError(w, http.StatusBadRequest, "invalid_stock", "stock cannot be negative")
		case errors.Is(err, ErrBookNotFound):
			httputil.RespondError(w, http.StatusNotFound, "not_found", "book not found")
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to update stock")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, book)
}
