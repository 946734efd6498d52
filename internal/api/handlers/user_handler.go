package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rngapp/rng-api/internal/apperror"
	"github.com/rngapp/rng-api/internal/auth"
	"github.com/rngapp/rng-api/internal/services"
)

// UserHandler handles HTTP requests for profile management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// ProfilePayload defines the structure for profile updates.
type ProfilePayload struct {
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	ZipCode  *string `json:"zipCode"`
	Birthday *string `json:"birthday"`
}

// UpdateProfile updates the authenticated user's profile and returns the new
// projection.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var payload ProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperror.InvalidInput("Invalid request body"))
		return
	}
	if payload.FullName == "" || payload.Email == "" {
		writeError(w, apperror.InvalidInput("Full name and email are required"))
		return
	}

	user, err := h.service.UpdateProfile(userID, services.ProfileInput{
		FullName: payload.FullName,
		Email:    payload.Email,
		Address:  payload.Address,
		City:     payload.City,
		State:    payload.State,
		ZipCode:  payload.ZipCode,
		Birthday: payload.Birthday,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
