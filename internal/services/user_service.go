package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rngapp/rng-api/internal/apperror"
	"github.com/rngapp/rng-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// SignupInput carries the full profile captured at registration.
type SignupInput struct {
	FullName string
	Email    string
	Password string
	Address  *string
	City     *string
	State    *string
	ZipCode  *string
	Birthday *string
}

// ProfileInput carries the mutable profile fields.
type ProfileInput struct {
	FullName string
	Email    string
	Address  *string
	City     *string
	State    *string
	ZipCode  *string
	Birthday *string
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id int64) (models.User, error)
	CreateUser(input SignupInput) (int64, error)
	UpdateProfile(id int64, input ProfileInput) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userProjection = "id, full_name, email, address, city, state, zip_code, birthday"

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.FullName, &user.Email,
		&user.Address, &user.City, &user.State, &user.ZipCode, &user.Birthday)
	return user, err
}

// GetUserByID retrieves the public projection of a single user.
func (s *UserService) GetUserByID(id int64) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userProjection+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperror.NotFound("User not found")
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser registers a new account and returns its id. The password is
// stored as a bcrypt hash, never in the clear.
func (s *UserService) CreateUser(input SignupInput) (int64, error) {
	var existing int64
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", input.Email).Scan(&existing)
	if err == nil {
		return 0, apperror.InvalidInput("You already have an account")
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO users (full_name, email, password_hash, address, city, state, zip_code, birthday)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		input.FullName, input.Email, string(hashed),
		input.Address, input.City, input.State, input.ZipCode, input.Birthday,
	)
	if err != nil {
		// The unique index on email is the authority; the pre-check above
		// only exists to produce the friendlier message without a race window
		// mattering here.
		if isUniqueViolation(err) {
			return 0, apperror.InvalidInput("You already have an account")
		}
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProfile updates a user's profile fields and returns the new projection.
func (s *UserService) UpdateProfile(id int64, input ProfileInput) (models.User, error) {
	var holder int64
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", input.Email).Scan(&holder)
	if err == nil && holder != id {
		return models.User{}, apperror.InvalidInput("Email already in use by another account")
	}
	if err != nil && err != sql.ErrNoRows {
		return models.User{}, err
	}

	_, err = s.db.Exec(
		`UPDATE users SET full_name = ?, email = ?, address = ?, city = ?, state = ?, zip_code = ?, birthday = ?
		 WHERE id = ?`,
		input.FullName, input.Email, input.Address, input.City, input.State, input.ZipCode, input.Birthday, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperror.InvalidInput("Email already in use by another account")
		}
		return models.User{}, err
	}
	return s.GetUserByID(id)
}

// AuthenticateUser verifies a user's credentials and returns the projection.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow(
		"SELECT "+userProjection+", password_hash FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.FullName, &user.Email,
		&user.Address, &user.City, &user.State, &user.ZipCode, &user.Birthday,
		&user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperror.Unauthorized("Invalid credentials")
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, apperror.Unauthorized("Invalid credentials")
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
