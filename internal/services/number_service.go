package services

import (
	"database/sql"
	"math/rand"
	"time"

	"github.com/rngapp/rng-api/internal/models"
)

const (
	// Generated values are uniform over [1, maxNumber].
	maxNumber = 10000

	DefaultPageSize = 25
	MaxPageSize     = 100
)

// NumberServiceProvider defines the interface for number generation and history.
type NumberServiceProvider interface {
	Generate(userID int64) (models.NumberRecord, error)
	Stats(userID int64) (models.Stats, error)
	List(userID int64, page, limit int) ([]models.NumberRecord, int, error)
}

// NumberService provides business logic for generated numbers.
type NumberService struct {
	db *sql.DB
}

// NewNumberService creates a new NumberService.
func NewNumberService(db *sql.DB) *NumberService {
	return &NumberService{db: db}
}

// Generate draws a pseudo-random number for the user and persists it.
// Repeats across records are expected; there is no uniqueness constraint.
func (s *NumberService) Generate(userID int64) (models.NumberRecord, error) {
	record := models.NumberRecord{
		UserID:    userID,
		Value:     rand.Intn(maxNumber) + 1,
		CreatedAt: time.Now().UTC(),
	}

	res, err := s.db.Exec(
		"INSERT INTO numbers (user_id, value, created_at) VALUES (?, ?, ?)",
		record.UserID, record.Value, record.CreatedAt,
	)
	if err != nil {
		return models.NumberRecord{}, err
	}
	record.ID, err = res.LastInsertId()
	if err != nil {
		return models.NumberRecord{}, err
	}
	return record, nil
}

// Stats returns the aggregate counters for a user's history. BestNumber is 0
// when the user has generated nothing yet.
func (s *NumberService) Stats(userID int64) (models.Stats, error) {
	var stats models.Stats
	err := s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(MAX(value), 0) FROM numbers WHERE user_id = ?", userID,
	).Scan(&stats.TotalNumbersGenerated, &stats.BestNumber)
	if err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

// List returns one page of a user's numbers ordered most-recent-first (by id,
// the monotonic proxy for insertion order) plus the total page count, which is
// at least 1 even for an empty history.
func (s *NumberService) List(userID int64, page, limit int) ([]models.NumberRecord, int, error) {
	offset := (page - 1) * limit

	rows, err := s.db.Query(
		"SELECT id, value, created_at FROM numbers WHERE user_id = ? ORDER BY id DESC LIMIT ? OFFSET ?",
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	numbers := []models.NumberRecord{}
	for rows.Next() {
		var n models.NumberRecord
		if err := rows.Scan(&n.ID, &n.Value, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		n.UserID = userID
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM numbers WHERE user_id = ?", userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return numbers, totalPages, nil
}
