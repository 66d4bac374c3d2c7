// Package repository provides the data access layer for Vigil.
//
// Every entity has a SQLite-backed repository and a bounded in-memory
// fallback. Store selects between them once, at construction.
package repository

import (
	"errors"
	"time"

	"vigil/core/models"
)

// RingCapacity bounds the in-memory history kept per entity in degraded mode.
const RingCapacity = 1000

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when registering an email that exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

// MetricStore persists metric samples.
type MetricStore interface {
	Create(m *models.MetricSample) error
	// History returns up to limit samples in chronological order.
	History(limit int) ([]*models.MetricSample, error)
	Count() (int64, error)
	DeleteOlderThan(days int) (int64, error)
}

// ThreatStore persists threat scores.
type ThreatStore interface {
	Create(s *models.ThreatScore) error
	History(limit int) ([]*models.ThreatScore, error)
	Count() (int64, error)
	DeleteOlderThan(days int) (int64, error)
}

// EventStore persists system events.
type EventStore interface {
	Create(e *models.SystemEvent) error
	// Recent returns up to limit events in chronological order, optionally
	// filtered by event type ("" means all types).
	Recent(eventType string, limit int) ([]*models.SystemEvent, error)
	Count() (int64, error)
	DeleteOlderThan(days int) (int64, error)
}

// UserStore persists user accounts and their lockout state.
type UserStore interface {
	Create(u *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id int64) (*models.User, error)
	// RecordFailedAttempt atomically increments the user's failed login
	// counter. When the counter reaches max the account is locked until
	// now+lockFor, the counter resets to zero, and locked is true. The
	// lock transition is reported exactly once.
	RecordFailedAttempt(id int64, max int, lockFor time.Duration) (locked bool, err error)
	// ResetFailedAttempts clears the counter and any lock after a
	// successful login.
	ResetFailedAttempts(id int64) error
	Count() (int64, error)
}
