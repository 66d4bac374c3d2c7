package repository

import (
	"database/sql"
	"errors"
	"time"

	"vigil/core/models"

	"github.com/mattn/go-sqlite3"
)

// UserRepository handles persistence of user accounts in SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user. Returns ErrDuplicateEmail if the email is taken.
func (r *UserRepository) Create(u *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, failed_login_count, created_at)
		VALUES (?, ?, ?, 0, ?)
	`

	result, err := r.db.Exec(query, u.Email, u.PasswordHash, u.FullName, u.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id

	return nil
}

// GetByEmail retrieves a user by email. Returns ErrNotFound if missing.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.get(`WHERE email = ?`, email)
}

// GetByID retrieves a user by id. Returns ErrNotFound if missing.
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	return r.get(`WHERE id = ?`, id)
}

func (r *UserRepository) get(where string, arg any) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, failed_login_count, locked_until, created_at
		FROM users ` + where

	u := &models.User{}
	var fullName sql.NullString
	var lockedUntil sql.NullTime

	err := r.db.QueryRow(query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&fullName,
		&u.FailedLoginCount,
		&lockedUntil,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if fullName.Valid {
		u.FullName = fullName.String
	}
	if lockedUntil.Valid {
		t := lockedUntil.Time
		u.LockedUntil = &t
	}

	return u, nil
}

// RecordFailedAttempt increments the failed login counter inside a single
// transaction so concurrent attempts for the same account cannot lose
// updates. When the counter reaches max the account is locked and the
// counter resets; the transition is reported exactly once.
func (r *UserRepository) RecordFailedAttempt(id int64, max int, lockFor time.Duration) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE users SET failed_login_count = failed_login_count + 1 WHERE id = ?`, id); err != nil {
		return false, err
	}

	var count int
	if err := tx.QueryRow(`SELECT failed_login_count FROM users WHERE id = ?`, id).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}

	locked := false
	if count >= max {
		until := time.Now().UTC().Add(lockFor)
		if _, err := tx.Exec(`UPDATE users SET failed_login_count = 0, locked_until = ? WHERE id = ?`, until, id); err != nil {
			return false, err
		}
		locked = true
	}

	return locked, tx.Commit()
}

// ResetFailedAttempts clears the counter and any lock after a successful login.
func (r *UserRepository) ResetFailedAttempts(id int64) error {
	_, err := r.db.Exec(`UPDATE users SET failed_login_count = 0, locked_until = NULL WHERE id = ?`, id)
	return err
}

// Count returns the total number of registered users.
func (r *UserRepository) Count() (int64, error) {
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
