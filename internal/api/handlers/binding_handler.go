package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rngapp/rng-api/internal/apperror"
	"github.com/rngapp/rng-api/internal/auth"
	"github.com/rngapp/rng-api/internal/services"
)

// BindingHandler handles HTTP requests for external-identity bindings.
type BindingHandler struct {
	service services.BindingServiceProvider
}

// NewBindingHandler creates a new BindingHandler.
func NewBindingHandler(service services.BindingServiceProvider) *BindingHandler {
	return &BindingHandler{service: service}
}

// bindingPayload decodes loosely so non-string values can be rejected with
// the contract's message instead of a generic decode error.
type bindingPayload struct {
	ExternalID any `json:"externalId"`
	Type       any `json:"type"`
}

func (p bindingPayload) strings() (externalID, bindingType string, err error) {
	if p.ExternalID == nil || p.Type == nil {
		return "", "", apperror.InvalidInput("External ID and type are required")
	}
	externalID, okID := p.ExternalID.(string)
	bindingType, okType := p.Type.(string)
	if !okID || !okType {
		return "", "", apperror.InvalidInput("External ID and type must be strings")
	}
	return externalID, bindingType, nil
}

// Upsert creates or updates the authenticated user's binding for a type.
func (h *BindingHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var payload bindingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperror.InvalidInput("Invalid request body"))
		return
	}
	externalID, bindingType, err := payload.strings()
	if err != nil {
		writeError(w, err)
		return
	}

	binding, err := h.service.Upsert(userID, externalID, bindingType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, binding)
}

// List returns all of the authenticated user's bindings, newest first.
func (h *BindingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	bindings, err := h.service.List(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bindings)
}

// Delete removes the authenticated user's binding for the path type.
func (h *BindingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	bindingType := chi.URLParam(r, "type")

	if err := h.service.Delete(userID, bindingType); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Binding deleted successfully"})
}
