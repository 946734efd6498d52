package models

import "time"

// UserBinding links an internal user to an identity in an external system.
// At most one binding per (user, type).
type UserBinding struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	ExternalID string    `json:"externalId"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
