package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rngapp/rng-api/internal/apperror"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the single error shape used across the API.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("Failed to encode JSON response")
		}
	}
}

// writeError maps an error from the service layer onto the wire. AppError
// messages pass through with their taxonomy status; anything else is logged
// and collapsed to a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}
		writeJSON(w, status, ErrorResponse{Error: appErr.Message})
		return
	}

	log.Error().Err(err).Msg("Unhandled error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
}
