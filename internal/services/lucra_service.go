package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rngapp/rng-api/internal/apperror"
	"github.com/rngapp/rng-api/internal/lucra"
	"github.com/rngapp/rng-api/internal/models"
	"github.com/rs/zerolog/log"
)

// BindingTypeLucra is the binding type that links an internal user to their
// Lucra identity.
const BindingTypeLucra = "lucra"

// LucraServiceProvider defines the interface for matchup tracking and outcome
// computation driven by Lucra webhooks.
type LucraServiceProvider interface {
	CreateWebhookConfig(ctx context.Context, cfg lucra.WebhookConfig) (json.RawMessage, error)
	HandleEvent(ctx context.Context, event lucra.WebhookEvent) error
	Materialize(ctx context.Context, matchupID string) error
	LinkNumber(ctx context.Context, userID, numberID int64) error
}

// LucraService tracks matchup participation slots and computes outcomes once
// every slot is filled. Lucra is the source of truth for matchup membership;
// local records are replaced wholesale on every Created/Joined event.
type LucraService struct {
	db       *sql.DB
	client   *lucra.Client
	bindings BindingServiceProvider
}

// NewLucraService creates a new LucraService.
func NewLucraService(db *sql.DB, client *lucra.Client, bindings BindingServiceProvider) *LucraService {
	return &LucraService{db: db, client: client, bindings: bindings}
}

// CreateWebhookConfig registers a webhook subscription with the Lucra API.
func (s *LucraService) CreateWebhookConfig(ctx context.Context, cfg lucra.WebhookConfig) (json.RawMessage, error) {
	return s.client.CreateWebhookConfig(ctx, cfg)
}

// HandleEvent processes one webhook event. The raw payload is appended to the
// audit log before any state changes.
func (s *LucraService) HandleEvent(ctx context.Context, event lucra.WebhookEvent) error {
	if err := s.recordWebhook(event); err != nil {
		return err
	}

	switch event.Event {
	case lucra.EventGameCreated, lucra.EventGameJoined:
		return s.materializeGroups(event.ID, event.Groups)
	case lucra.EventGameCanceled:
		_, err := s.db.Exec("DELETE FROM lucra_matchups WHERE matchup_id = ?", event.ID)
		return err
	case lucra.EventGameCompleted:
		// Completed externally: close every record without computing an
		// outcome, so a later number link cannot double-complete.
		_, err := s.db.Exec(
			"UPDATE lucra_matchups SET completed_at = ? WHERE matchup_id = ?",
			time.Now().UTC(), event.ID,
		)
		return err
	default:
		log.Warn().Str("event", event.Event).Str("matchup_id", event.ID).Msg("Ignoring unknown Lucra event")
		return nil
	}
}

// Materialize fetches the matchup detail from the Lucra API and rebuilds its
// participation records.
func (s *LucraService) Materialize(ctx context.Context, matchupID string) error {
	matchup, err := s.client.GetMatchup(ctx, matchupID)
	if err != nil {
		return err
	}
	return s.materializeGroups(matchup.ID, matchup.Groups)
}

// materializeGroups replaces all participation records for a matchup with one
// record per (group, user) pair. Every Lucra user must already be bound to an
// internal account.
func (s *LucraService) materializeGroups(matchupID string, groups []lucra.Group) error {
	type slot struct {
		groupID string
		userID  string
	}
	var slots []slot
	var externalIDs []string
	for _, g := range groups {
		for _, u := range g.Users {
			slots = append(slots, slot{groupID: g.GroupID, userID: u.UserID})
			externalIDs = append(externalIDs, u.UserID)
		}
	}

	bound, err := s.boundExternalIDs(externalIDs)
	if err != nil {
		return err
	}
	for _, sl := range slots {
		if !bound[sl.userID] {
			return apperror.InvalidInput(fmt.Sprintf("Missing user bindings for Lucra user %s", sl.userID))
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM lucra_matchups WHERE matchup_id = ?", matchupID); err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO lucra_matchups (matchup_id, group_id, user_id) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, sl := range slots {
		if _, err := stmt.Exec(matchupID, sl.groupID, sl.userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// boundExternalIDs reports which of the given Lucra user ids have a binding.
func (s *LucraService) boundExternalIDs(externalIDs []string) (map[string]bool, error) {
	bound := make(map[string]bool, len(externalIDs))
	if len(externalIDs) == 0 {
		return bound, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(externalIDs)), ", ")
	query := "SELECT external_id FROM user_bindings WHERE type = ? AND external_id IN (" + placeholders + ")"
	args := make([]any, 0, len(externalIDs)+1)
	args = append(args, BindingTypeLucra)
	for _, id := range externalIDs {
		args = append(args, id)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		bound[id] = true
	}
	return bound, rows.Err()
}

// LinkNumber attaches a freshly generated number to the user's oldest open
// matchup slot, then attempts completion of that matchup. Users without a
// Lucra binding, or with no open slot, are a no-op: not every number is
// matchup-related.
func (s *LucraService) LinkNumber(ctx context.Context, userID, numberID int64) error {
	binding, err := s.bindings.Find(userID, BindingTypeLucra)
	if err != nil {
		return err
	}
	if binding == nil {
		return nil
	}

	// Single conditional UPDATE: find-and-stamp cannot race against a
	// concurrent generation for the same user.
	var matchupID string
	err = s.db.QueryRow(
		`UPDATE lucra_matchups SET number_id = ?
		 WHERE id = (
			SELECT id FROM lucra_matchups
			WHERE user_id = ? AND completed_at IS NULL AND number_id IS NULL
			ORDER BY created_at ASC, id ASC
			LIMIT 1
		 )
		 RETURNING matchup_id`,
		numberID, binding.ExternalID,
	).Scan(&matchupID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	return s.tryComplete(ctx, matchupID)
}

// tryComplete computes and reports the outcome for a matchup if every
// uncompleted slot has a linked number. The matchup is only marked completed
// after Lucra acknowledges the outcome; a failed report is returned to the
// caller so the link can be retried via redelivery.
func (s *LucraService) tryComplete(ctx context.Context, matchupID string) error {
	rows, err := s.db.Query(
		`SELECT m.group_id, m.number_id, COALESCE(n.value, 0)
		 FROM lucra_matchups m
		 LEFT JOIN numbers n ON n.id = m.number_id
		 WHERE m.matchup_id = ? AND m.completed_at IS NULL`,
		matchupID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	groupSums := map[string]int{}
	count := 0
	for rows.Next() {
		var groupID string
		var numberID sql.NullInt64
		var value int
		if err := rows.Scan(&groupID, &numberID, &value); err != nil {
			return err
		}
		if !numberID.Valid {
			// Not every slot is filled yet; completion will be retried on
			// the next linked number.
			return nil
		}
		groupSums[groupID] += value
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if count == 0 {
		log.Warn().Str("matchup_id", matchupID).Msg("No participation records found for matchup, skipping completion")
		return nil
	}

	outcome := computeOutcome(matchupID, groupSums)
	if err := s.client.ReportOutcome(ctx, lucra.Outcome{
		MatchupID:      outcome.MatchupID,
		WinningGroupID: outcome.WinningGroupID,
		IsTie:          outcome.IsTie,
	}); err != nil {
		return err
	}

	_, err = s.db.Exec(
		"UPDATE lucra_matchups SET completed_at = ? WHERE matchup_id = ?",
		time.Now().UTC(), matchupID,
	)
	if err != nil {
		return err
	}

	log.Info().
		Str("matchup_id", matchupID).
		Str("winning_group_id", outcome.WinningGroupID).
		Bool("is_tie", outcome.IsTie).
		Msg("Matchup completed")
	return nil
}

// computeOutcome picks the group with the highest summed value. Two or more
// groups sharing the maximum is a tie with no winner.
func computeOutcome(matchupID string, groupSums map[string]int) models.MatchupOutcome {
	best := 0
	winning := ""
	tied := false
	first := true
	for groupID, sum := range groupSums {
		switch {
		case first || sum > best:
			best, winning, tied, first = sum, groupID, false, false
		case sum == best:
			tied = true
		}
	}
	if tied {
		return models.MatchupOutcome{MatchupID: matchupID, IsTie: true}
	}
	return models.MatchupOutcome{MatchupID: matchupID, WinningGroupID: winning}
}

// recordWebhook appends the payload to the audit log. Rows are never updated
// or deleted.
func (s *LucraService) recordWebhook(event lucra.WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO lucra_webhooks (id, payload) VALUES (?, ?)",
		uuid.New().String(), string(payload),
	)
	return err
}
