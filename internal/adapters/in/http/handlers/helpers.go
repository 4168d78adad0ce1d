// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	httpout "milkmaster/internal/adapters/out/http"
	"milkmaster/internal/application/usecase"
	checkoutdom "milkmaster/internal/domain/checkout"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	var vErr *checkoutdom.ValidationError
	var stockErr *usecase.StockConflictError

	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Message})
	case errors.Is(err, checkoutdom.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":        stockErr.Error(),
			"invalidItems": stockErr.Items,
		})
	case errors.Is(err, usecase.ErrSubmissionInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order submission already in progress"})
	case errors.Is(err, checkoutdom.ErrVerificationTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "card verification is not in a state that allows this action"})
	case errors.Is(err, httpout.ErrServerUnreachable), errors.Is(err, httpout.ErrInvalidResponse):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
