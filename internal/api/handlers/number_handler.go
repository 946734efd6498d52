package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rngapp/rng-api/internal/auth"
	"github.com/rngapp/rng-api/internal/models"
	"github.com/rngapp/rng-api/internal/services"
	"github.com/rs/zerolog/log"
)

// NumberHandler handles HTTP requests for number generation, stats and history.
type NumberHandler struct {
	service services.NumberServiceProvider
	lucra   services.LucraServiceProvider
}

// NewNumberHandler creates a new NumberHandler.
func NewNumberHandler(service services.NumberServiceProvider, lucra services.LucraServiceProvider) *NumberHandler {
	return &NumberHandler{service: service, lucra: lucra}
}

// RngResponse is the body returned by a generation call.
type RngResponse struct {
	Number    int       `json:"number"`
	CreatedAt time.Time `json:"created_at"`
}

// Generate draws and persists one number for the authenticated user, then
// links it to an open matchup slot when the user has a Lucra binding.
func (h *NumberHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	record, err := h.service.Generate(userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to generate number")
		writeError(w, err)
		return
	}

	// The number row is already persisted; a failed link or outcome report
	// surfaces to the caller rather than being swallowed, so the external
	// side can retry.
	if err := h.lucra.LinkNumber(r.Context(), userID, record.ID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("number_id", record.ID).
			Msg("Failed to link number to matchup")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RngResponse{Number: record.Value, CreatedAt: record.CreatedAt})
}

// Stats returns the authenticated user's aggregate counters.
func (h *NumberHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	stats, err := h.service.Stats(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// History returns one page of the authenticated user's numbers, newest first,
// with an absolute next-page link while more pages remain.
func (h *NumberHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	// Untrusted input: anything non-positive or unparseable falls back to
	// the default instead of erroring.
	limit := toPositiveInt(r.URL.Query().Get("limit"), services.DefaultPageSize)
	if limit > services.MaxPageSize {
		limit = services.MaxPageSize
	}
	page := toPositiveInt(r.URL.Query().Get("page"), 1)

	numbers, totalPages, err := h.service.List(userID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	var next *string
	if page < totalPages {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		url := fmt.Sprintf("%s://%s%s?limit=%d&page=%d", scheme, r.Host, r.URL.Path, limit, page+1)
		next = &url
	}

	writeJSON(w, http.StatusOK, models.NumberPage{
		Numbers:    numbers,
		Page:       page,
		TotalPages: totalPages,
		Next:       next,
	})
}

// toPositiveInt parses value as a positive integer, falling back to the
// default on anything invalid, non-positive or overflowing.
func toPositiveInt(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
