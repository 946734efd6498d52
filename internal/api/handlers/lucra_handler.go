package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rngapp/rng-api/internal/apperror"
	"github.com/rngapp/rng-api/internal/auth"
	"github.com/rngapp/rng-api/internal/lucra"
	"github.com/rngapp/rng-api/internal/services"
	"github.com/rs/zerolog/log"
)

// LucraHandler handles HTTP requests for Lucra webhook configuration, event
// intake and the user's Lucra binding.
type LucraHandler struct {
	service  services.LucraServiceProvider
	bindings services.BindingServiceProvider
}

// NewLucraHandler creates a new LucraHandler.
func NewLucraHandler(service services.LucraServiceProvider, bindings services.BindingServiceProvider) *LucraHandler {
	return &LucraHandler{service: service, bindings: bindings}
}

// CreateWebhookConfig forwards a webhook subscription to the Lucra API.
func (h *LucraHandler) CreateWebhookConfig(w http.ResponseWriter, r *http.Request) {
	var cfg lucra.WebhookConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, apperror.InvalidInput("Invalid request body"))
		return
	}

	result, err := h.service.CreateWebhookConfig(r.Context(), cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create webhook configuration")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MatchupEvent ingests one webhook event from Lucra.
func (h *LucraHandler) MatchupEvent(w http.ResponseWriter, r *http.Request) {
	var event lucra.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, apperror.InvalidInput("Invalid webhook payload"))
		return
	}
	if event.ID == "" || event.Event == "" {
		writeError(w, apperror.InvalidInput("Invalid webhook payload"))
		return
	}

	if err := h.service.HandleEvent(r.Context(), event); err != nil {
		log.Error().Err(err).Str("matchup_id", event.ID).Str("event", event.Event).
			Msg("Failed to process matchup event")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Matchup event processed successfully"})
}

// CreateMatchup fetches a matchup from the Lucra API and materializes its
// participation slots.
func (h *LucraHandler) CreateMatchup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		MatchupID string `json:"matchupId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.MatchupID == "" {
		writeError(w, apperror.InvalidInput("Matchup ID is required"))
		return
	}

	if err := h.service.Materialize(r.Context(), payload.MatchupID); err != nil {
		log.Error().Err(err).Str("matchup_id", payload.MatchupID).Msg("Failed to materialize matchup")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Matchup created successfully"})
}

// GetUserBinding returns the authenticated user's Lucra binding.
func (h *LucraHandler) GetUserBinding(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	binding, err := h.bindings.Find(userID, services.BindingTypeLucra)
	if err != nil {
		writeError(w, err)
		return
	}
	if binding == nil {
		writeError(w, apperror.NotFound("Lucra user binding not found"))
		return
	}
	writeJSON(w, http.StatusOK, binding)
}

// UpsertUserBinding creates or updates the authenticated user's Lucra binding.
func (h *LucraHandler) UpsertUserBinding(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var payload struct {
		ExternalID string `json:"externalId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperror.InvalidInput("Invalid request body"))
		return
	}
	if payload.ExternalID == "" {
		writeError(w, apperror.InvalidInput("External ID is required"))
		return
	}

	binding, err := h.bindings.Upsert(userID, payload.ExternalID, services.BindingTypeLucra)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, binding)
}
