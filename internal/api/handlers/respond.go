// Package handlers provides HTTP handlers for the pharmacy API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
)

// FieldError describes a single invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorBody{Message: message})
}

func respondValidation(w http.ResponseWriter, fields []FieldError) {
	respondJSON(w, http.StatusBadRequest, errorBody{Message: "validation failed", Errors: fields})
}

// respondStoreError maps storage failures onto the response taxonomy.
// Not-found surfaces as 404; anything else is an opaque 500 so backend
// details never leak to clients.
func respondStoreError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	if errors.Is(err, pharmacy.ErrNotFound) {
		respondError(w, http.StatusNotFound, "resource not found")
		return
	}
	logger.Error("storage operation failed", zap.String("op", op), zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
