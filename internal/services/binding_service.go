package services

import (
	"database/sql"
	"strings"

	"github.com/rngapp/rng-api/internal/apperror"
	"github.com/rngapp/rng-api/internal/models"
)

// BindingServiceProvider defines the interface for external-identity bindings.
type BindingServiceProvider interface {
	Upsert(userID int64, externalID, bindingType string) (models.UserBinding, error)
	List(userID int64) ([]models.UserBinding, error)
	Find(userID int64, bindingType string) (*models.UserBinding, error)
	Delete(userID int64, bindingType string) error
}

// BindingService provides business logic for user bindings. Binding types are
// case-insensitive: they are stored lowercased, so one external identity per
// type per user.
type BindingService struct {
	db *sql.DB
}

// NewBindingService creates a new BindingService.
func NewBindingService(db *sql.DB) *BindingService {
	return &BindingService{db: db}
}

const bindingColumns = "id, user_id, external_id, type, created_at, updated_at"

// Upsert creates the binding for (userID, type) or updates its external id in
// place. The write is a single ON CONFLICT statement so two concurrent calls
// cannot race past each other; a residual constraint failure surfaces as a
// conflict.
func (s *BindingService) Upsert(userID int64, externalID, bindingType string) (models.UserBinding, error) {
	externalID = strings.TrimSpace(externalID)
	bindingType = strings.ToLower(strings.TrimSpace(bindingType))
	if externalID == "" || bindingType == "" {
		return models.UserBinding{}, apperror.InvalidInput("External ID and type are required")
	}

	var b models.UserBinding
	err := s.db.QueryRow(
		`INSERT INTO user_bindings (user_id, external_id, type)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id, type) DO UPDATE
		 SET external_id = excluded.external_id, updated_at = CURRENT_TIMESTAMP
		 RETURNING `+bindingColumns,
		userID, externalID, bindingType,
	).Scan(&b.ID, &b.UserID, &b.ExternalID, &b.Type, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.UserBinding{}, apperror.Conflict("Binding already exists for this user and type")
		}
		return models.UserBinding{}, err
	}
	return b, nil
}

// List returns all of a user's bindings, newest-created first.
func (s *BindingService) List(userID int64) ([]models.UserBinding, error) {
	rows, err := s.db.Query(
		"SELECT "+bindingColumns+" FROM user_bindings WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bindings := []models.UserBinding{}
	for rows.Next() {
		var b models.UserBinding
		if err := rows.Scan(&b.ID, &b.UserID, &b.ExternalID, &b.Type, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

// Find returns the binding for (userID, type), or nil when none exists.
func (s *BindingService) Find(userID int64, bindingType string) (*models.UserBinding, error) {
	var b models.UserBinding
	err := s.db.QueryRow(
		"SELECT "+bindingColumns+" FROM user_bindings WHERE user_id = ? AND type = ?",
		userID, strings.ToLower(strings.TrimSpace(bindingType)),
	).Scan(&b.ID, &b.UserID, &b.ExternalID, &b.Type, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes the binding for (userID, type).
func (s *BindingService) Delete(userID int64, bindingType string) error {
	res, err := s.db.Exec(
		"DELETE FROM user_bindings WHERE user_id = ? AND type = ?",
		userID, strings.ToLower(strings.TrimSpace(bindingType)),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NotFound("Binding not found")
	}
	return nil
}
