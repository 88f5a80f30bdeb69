package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts a domain error into an HTTP status code.
func handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, cart.ErrCheckoutInProgress) {
		respondError(w, http.StatusConflict, "cart_locked", domain.UserMessage(err))
		return
	}

	var status int
	var code string

	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
		code = "invalid_argument"
	case domain.KindNotFound:
		status = http.StatusNotFound
		code = "not_found"
	case domain.KindNetwork:
		status = http.StatusBadGateway
		code = "upstream_unavailable"
	case domain.KindPayment:
		status = http.StatusPaymentRequired
		code = "payment_error"
	case domain.KindPersistence:
		status = http.StatusInternalServerError
		code = "storage_error"
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, status, code, domain.UserMessage(err))
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
