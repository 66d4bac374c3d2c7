package service

import (
	"fmt"
	"log"
	"math"
	"time"

	"vigil/core/models"
	"vigil/core/repository"
)

// ThreatService unifies resource-based and identity-based risk signals: it
// derives threat scores from metric samples and tracks failed logins up to
// the lockout threshold.
type ThreatService struct {
	users  repository.UserStore
	events repository.EventStore

	maxFailedLogins int
	lockoutWindow   time.Duration
}

// NewThreatService creates a threat service.
func NewThreatService(users repository.UserStore, events repository.EventStore, maxFailedLogins int, lockoutWindow time.Duration) *ThreatService {
	return &ThreatService{
		users:           users,
		events:          events,
		maxFailedLogins: maxFailedLogins,
		lockoutWindow:   lockoutWindow,
	}
}

// ScoreValue computes the composite risk score for a pair of utilization
// readings: round((cpu+memory)/2), clamped to [0,100].
func ScoreValue(cpuPercent, memoryPercent float64) int {
	score := int(math.Round((cpuPercent + memoryPercent) / 2))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// LevelFor maps a score to its threat level band.
func LevelFor(score int) string {
	switch {
	case score >= 80:
		return models.ThreatHigh
	case score >= 50:
		return models.ThreatMedium
	default:
		return models.ThreatLow
	}
}

// Score derives a threat score from a metric sample.
func (t *ThreatService) Score(sample models.MetricSample) models.ThreatScore {
	score := ScoreValue(sample.CPUPercent, sample.MemoryPercent)
	return models.ThreatScore{
		Score:     score,
		Level:     LevelFor(score),
		Timestamp: time.Now().UTC(),
	}
}

// RecordFailedLogin registers a failed attempt for the user. When the
// attempt crosses the lockout threshold the account is locked for the
// configured window and a single auth_lockout event is recorded.
func (t *ThreatService) RecordFailedLogin(userID int64) error {
	locked, err := t.users.RecordFailedAttempt(userID, t.maxFailedLogins, t.lockoutWindow)
	if err != nil {
		return err
	}
	if !locked {
		return nil
	}

	log.Printf("User %d locked out after %d failed logins", userID, t.maxFailedLogins)
	event := &models.SystemEvent{
		EventType:   "auth_lockout",
		Description: fmt.Sprintf("User %d locked for %v after %d failed login attempts", userID, t.lockoutWindow, t.maxFailedLogins),
		Severity:    models.SeverityWarning,
		Timestamp:   time.Now().UTC(),
	}
	if err := t.events.Create(event); err != nil {
		// The lockout itself already took effect; losing the event is
		// logged, not propagated into the login path.
		log.Printf("Failed to store auth_lockout event: %v", err)
	}
	return nil
}

// RecordSuccessfulLogin clears the user's failed-attempt counter.
func (t *ThreatService) RecordSuccessfulLogin(userID int64) error {
	return t.users.ResetFailedAttempts(userID)
}
