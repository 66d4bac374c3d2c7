package service

import (
	"log"
	"time"

	"vigil/core/models"
	"vigil/core/repository"
)

// MonitorService drives the sampling and scoring read paths. Store write
// failures are absorbed here: a metrics write failure must never turn a
// monitoring read into a request failure.
type MonitorService struct {
	store   *repository.Store
	sampler *Sampler
	threat  *ThreatService
}

// NewMonitorService creates a monitor service.
func NewMonitorService(store *repository.Store, sampler *Sampler, threat *ThreatService) *MonitorService {
	return &MonitorService{store: store, sampler: sampler, threat: threat}
}

// CurrentMetrics samples the host and persists the sample.
func (m *MonitorService) CurrentMetrics() models.MetricSample {
	sample := m.sampler.Sample()
	if err := m.store.Metrics.Create(&sample); err != nil {
		log.Printf("Metric save failed: %v", err)
	}
	return sample
}

// CurrentThreatScore samples the host, derives a score, and persists it.
func (m *MonitorService) CurrentThreatScore() models.ThreatScore {
	sample := m.sampler.Sample()
	score := m.threat.Score(sample)
	if err := m.store.Threats.Create(&score); err != nil {
		log.Printf("Threat score save failed: %v", err)
	}
	return score
}

// MetricsHistory returns up to limit samples in chronological order.
func (m *MonitorService) MetricsHistory(limit int) []*models.MetricSample {
	samples, err := m.store.Metrics.History(limit)
	if err != nil {
		log.Printf("Metrics history failed: %v", err)
		return []*models.MetricSample{}
	}
	if samples == nil {
		samples = []*models.MetricSample{}
	}
	return samples
}

// ThreatHistory returns up to limit scores in chronological order.
func (m *MonitorService) ThreatHistory(limit int) []*models.ThreatScore {
	scores, err := m.store.Threats.History(limit)
	if err != nil {
		log.Printf("Threat history failed: %v", err)
		return []*models.ThreatScore{}
	}
	if scores == nil {
		scores = []*models.ThreatScore{}
	}
	return scores
}

// Events returns up to limit system events, optionally filtered by type.
func (m *MonitorService) Events(eventType string, limit int) []*models.SystemEvent {
	events, err := m.store.Events.Recent(eventType, limit)
	if err != nil {
		log.Printf("Events query failed: %v", err)
		return []*models.SystemEvent{}
	}
	if events == nil {
		events = []*models.SystemEvent{}
	}
	return events
}

// RecordEvent appends an event to the audit trail.
func (m *MonitorService) RecordEvent(eventType, description, severity string) {
	event := &models.SystemEvent{
		EventType:   eventType,
		Description: description,
		Severity:    severity,
		Timestamp:   time.Now().UTC(),
	}
	if err := m.store.Events.Create(event); err != nil {
		log.Printf("Event save failed (%s): %v", eventType, err)
	}
}

// Snapshot combines a fresh sample with its derived score for the live
// update stream. Nothing is persisted; each push is independent.
func (m *MonitorService) Snapshot() map[string]any {
	sample := m.sampler.Sample()
	score := ScoreValue(sample.CPUPercent, sample.MemoryPercent)
	return map[string]any{
		"type":           "metrics_update",
		"cpu_percent":    sample.CPUPercent,
		"memory_percent": sample.MemoryPercent,
		"disk_percent":   sample.DiskPercent,
		"status":         sample.Status,
		"threat_score":   score,
		"threat_level":   LevelFor(score),
		"timestamp":      sample.Timestamp,
	}
}

// Stats summarizes store contents and capability.
type Stats struct {
	DatabaseEnabled bool  `json:"database_enabled"`
	Metrics         int64 `json:"metrics_count"`
	Threats         int64 `json:"threats_count"`
	Events          int64 `json:"events_count"`
	Users           int64 `json:"users_count"`
}

// Stats returns row counts per entity and the store capability flag.
func (m *MonitorService) Stats() Stats {
	s := Stats{DatabaseEnabled: m.store.Enabled()}
	var err error
	if s.Metrics, err = m.store.Metrics.Count(); err != nil {
		log.Printf("Metrics count failed: %v", err)
	}
	if s.Threats, err = m.store.Threats.Count(); err != nil {
		log.Printf("Threats count failed: %v", err)
	}
	if s.Events, err = m.store.Events.Count(); err != nil {
		log.Printf("Events count failed: %v", err)
	}
	if s.Users, err = m.store.Users.Count(); err != nil {
		log.Printf("Users count failed: %v", err)
	}
	return s
}
