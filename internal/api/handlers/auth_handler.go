package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rngapp/rng-api/internal/apperror"
	"github.com/rngapp/rng-api/internal/services"
)

// AuthHandler handles HTTP requests for login and signup.
type AuthHandler struct {
	service services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupPayload defines the structure for registration requests.
type SignupPayload struct {
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	ZipCode  *string `json:"zipCode"`
	Birthday *string `json:"birthday"`
}

// Login authenticates by email and password and returns the user projection.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperror.InvalidInput("Invalid request body"))
		return
	}
	if payload.Email == "" || payload.Password == "" {
		writeError(w, apperror.InvalidInput("Email and password are required"))
		return
	}

	user, err := h.service.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Signup registers a new user and returns its numeric id.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperror.InvalidInput("Invalid request body"))
		return
	}
	if payload.FullName == "" || payload.Email == "" || payload.Password == "" {
		writeError(w, apperror.InvalidInput("Full name, email, and password are required"))
		return
	}

	id, err := h.service.CreateUser(services.SignupInput{
		FullName: payload.FullName,
		Email:    payload.Email,
		Password: payload.Password,
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
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}
