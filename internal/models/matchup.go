package models

import "time"

// MatchupRecord is one user's slot in one group of a Lucra matchup.
// UserID holds the external Lucra user id. A slot is filled once NumberID
// is set; the record is closed once CompletedAt is set.
type MatchupRecord struct {
	ID          int64      `json:"id"`
	MatchupID   string     `json:"matchupId"`
	GroupID     string     `json:"groupId"`
	UserID      string     `json:"userId"`
	NumberID    *int64     `json:"numberId"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// MatchupOutcome is the computed result of a fully-filled matchup.
type MatchupOutcome struct {
	MatchupID      string `json:"matchupId"`
	WinningGroupID string `json:"winningGroupId,omitempty"`
	IsTie          bool   `json:"isTie"`
}
