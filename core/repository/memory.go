package repository

import (
	"sync"
	"time"

	"vigil/core/models"
)

// The in-memory stores back the degraded mode: same contracts as the SQLite
// repositories, bounded history, nothing survives a restart.

type memMetricStore struct {
	mu      sync.Mutex
	nextID  int64
	samples []*models.MetricSample
}

func newMemMetricStore() *memMetricStore {
	return &memMetricStore{samples: make([]*models.MetricSample, 0, RingCapacity)}
}

func (s *memMetricStore) Create(m *models.MetricSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	m.ID = s.nextID

	cp := *m
	if len(s.samples) >= RingCapacity {
		copy(s.samples, s.samples[1:])
		s.samples[len(s.samples)-1] = &cp
	} else {
		s.samples = append(s.samples, &cp)
	}
	return nil
}

func (s *memMetricStore) History(limit int) ([]*models.MetricSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.samples) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	out := make([]*models.MetricSample, 0, len(s.samples)-start)
	for _, m := range s.samples[start:] {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memMetricStore) Count() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.samples)), nil
}

func (s *memMetricStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.samples[:0]
	var removed int64
	for _, m := range s.samples {
		if m.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.samples = kept
	return removed, nil
}

type memThreatStore struct {
	mu     sync.Mutex
	nextID int64
	scores []*models.ThreatScore
}

func newMemThreatStore() *memThreatStore {
	return &memThreatStore{scores: make([]*models.ThreatScore, 0, RingCapacity)}
}

func (s *memThreatStore) Create(t *models.ThreatScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t.ID = s.nextID

	cp := *t
	if len(s.scores) >= RingCapacity {
		copy(s.scores, s.scores[1:])
		s.scores[len(s.scores)-1] = &cp
	} else {
		s.scores = append(s.scores, &cp)
	}
	return nil
}

func (s *memThreatStore) History(limit int) ([]*models.ThreatScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.scores) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	out := make([]*models.ThreatScore, 0, len(s.scores)-start)
	for _, t := range s.scores[start:] {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memThreatStore) Count() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.scores)), nil
}

func (s *memThreatStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.scores[:0]
	var removed int64
	for _, t := range s.scores {
		if t.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.scores = kept
	return removed, nil
}

type memEventStore struct {
	mu     sync.Mutex
	nextID int64
	events []*models.SystemEvent
}

func newMemEventStore() *memEventStore {
	return &memEventStore{events: make([]*models.SystemEvent, 0, RingCapacity)}
}

func (s *memEventStore) Create(e *models.SystemEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e.ID = s.nextID

	cp := *e
	if len(s.events) >= RingCapacity {
		copy(s.events, s.events[1:])
		s.events[len(s.events)-1] = &cp
	} else {
		s.events = append(s.events, &cp)
	}
	return nil
}

func (s *memEventStore) Recent(eventType string, limit int) ([]*models.SystemEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*models.SystemEvent
	for _, e := range s.events {
		if eventType == "" || e.EventType == eventType {
			matched = append(matched, e)
		}
	}

	start := len(matched) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	out := make([]*models.SystemEvent, 0, len(matched)-start)
	for _, e := range matched[start:] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memEventStore) Count() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.events)), nil
}

func (s *memEventStore) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var removed int64
	for _, e := range s.events {
		if e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed, nil
}

type memUserStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*models.User
	byEmail map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		byID:    make(map[int64]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *memUserStore) Create(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return ErrDuplicateEmail
	}

	s.nextID++
	u.ID = s.nextID

	cp := *u
	s.byID[cp.ID] = &cp
	s.byEmail[cp.Email] = &cp
	return nil
}

func (s *memUserStore) GetByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByID(id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) RecordFailedAttempt(id int64, max int, lockFor time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return false, ErrNotFound
	}

	u.FailedLoginCount++
	if u.FailedLoginCount >= max {
		until := time.Now().UTC().Add(lockFor)
		u.LockedUntil = &until
		u.FailedLoginCount = 0
		return true, nil
	}
	return false, nil
}

func (s *memUserStore) ResetFailedAttempts(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.FailedLoginCount = 0
	u.LockedUntil = nil
	return nil
}

func (s *memUserStore) Count() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.byID)), nil
}
