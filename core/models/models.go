// Package models defines domain models for Vigil.
package models

import "time"

// Metric status values.
const (
	StatusHealthy = "healthy"
	StatusWarning = "warning"
)

// Threat levels, derived from the score bands.
const (
	ThreatLow    = "low"    // score < 50
	ThreatMedium = "medium" // 50 <= score < 80
	ThreatHigh   = "high"   // score >= 80
)

// Event severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// MetricSample represents a single host resource utilization reading.
// Samples are immutable once written.
type MetricSample struct {
	ID            int64     `json:"id"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	DiskPercent   float64   `json:"disk_percent"`
	Status        string    `json:"status"` // healthy, warning
	Timestamp     time.Time `json:"timestamp"`
}

// ThreatScore represents a derived composite risk score.
type ThreatScore struct {
	ID        int64     `json:"id"`
	Score     int       `json:"threat_score"` // 0-100
	Level     string    `json:"threat_level"` // low, medium, high
	Timestamp time.Time `json:"timestamp"`
}

// SystemEvent represents an audit trail entry. Events are the sole durable
// record of watchdog actions and security incidents.
type SystemEvent struct {
	ID          int64     `json:"id"`
	EventType   string    `json:"event_type"` // remediation, auth_lockout, manual_trigger, ...
	Description string    `json:"description"`
	Severity    string    `json:"severity"` // info, warning, critical
	Timestamp   time.Time `json:"timestamp"`
}

// User represents a registered account. Users are never hard-deleted.
type User struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	FullName         string     `json:"full_name,omitempty"`
	FailedLoginCount int        `json:"-"`
	LockedUntil      *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Locked reports whether the account is locked out at the given instant.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
