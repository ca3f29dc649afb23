package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/happiness/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps derivation failures to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrEmptyWindow):
		return http.StatusServiceUnavailable
	case errors.Is(err, contracts.ErrDivisionByZero),
		errors.Is(err, contracts.ErrInvalidInsight),
		errors.Is(err, contracts.ErrInvalidSnapshot):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
