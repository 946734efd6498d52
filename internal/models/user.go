package models

import "time"

// User represents a registered account. The JSON shape is the public
// projection returned by login, signup and profile updates.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Address      *string   `json:"address"`
	City         *string   `json:"city"`
	State        *string   `json:"state"`
	ZipCode      *string   `json:"zipCode"`
	Birthday     *string   `json:"birthday"`
	CreatedAt    time.Time `json:"-"`
}
