// internal/auth/handler.go
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookstore/internal/httputil"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateUser):
			httputil.RespondError(w, http.StatusBadRequest, "duplicate_user", "user already exists")
		case errors.Is(err, ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		case errors.Is(err, ErrRateLimited):
			httputil.RespondError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "registration failed")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httputil.RespondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		case errors.Is(err, ErrRateLimited):
			httputil.RespondError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "internal_error", "login failed")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"token": token})
}
