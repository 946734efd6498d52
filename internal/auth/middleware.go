// Package auth resolves the request identity from the rng-user-id header.
// The id is trusted as-is per request; there are no sessions or tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rngapp/rng-api/internal/apperror"
	"github.com/rngapp/rng-api/internal/services"
	"github.com/rs/zerolog/log"
)

// HeaderUserID is the header carrying the caller's user id.
const HeaderUserID = "rng-user-id"

type contextKey string

const userIDKey = contextKey("userID")

// UserID returns the authenticated user id attached by RequireUser.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// RequireUser creates a middleware that rejects requests without a resolvable
// user identity: 401 when the header is absent, 400 when it is not an
// integer, 404 when no such user exists.
func RequireUser(users services.UserServiceProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(HeaderUserID)
			if header == "" {
				respondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			userID, err := strconv.ParseInt(header, 10, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid user ID")
				return
			}

			if _, err := users.GetUserByID(userID); err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					respondError(w, http.StatusNotFound, "User not found")
					return
				}
				log.Error().Err(err).Int64("user_id", userID).Msg("Failed to resolve user identity")
				respondError(w, http.StatusInternalServerError, "Internal error")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
