package repository

import (
	"database/sql"
	"log"

	"vigil/database"
)

// Store bundles the per-entity stores behind a single capability decision.
//
// Open probes the durable store exactly once, at construction. If SQLite is
// unavailable the store runs degraded for the life of the process: every
// entity is backed by a bounded in-memory ring and Enabled reports false.
// Recovering durable mode requires a process restart.
type Store struct {
	Metrics MetricStore
	Threats ThreatStore
	Events  EventStore
	Users   UserStore

	db      *sql.DB
	enabled bool
}

// Open attempts to establish the durable store at dbPath. It never fails:
// when the database cannot be opened the returned store transparently
// redirects all operations to in-memory fallbacks.
func Open(dbPath string) *Store {
	db, err := database.Open(dbPath)
	if err != nil {
		log.Printf("Durable store unavailable, running degraded (in-memory history only): %v", err)
		return &Store{
			Metrics: newMemMetricStore(),
			Threats: newMemThreatStore(),
			Events:  newMemEventStore(),
			Users:   newMemUserStore(),
		}
	}

	return &Store{
		Metrics: NewMetricRepository(db),
		Threats: NewThreatScoreRepository(db),
		Events:  NewEventRepository(db),
		Users:   NewUserRepository(db),
		db:      db,
		enabled: true,
	}
}

// OpenDegraded returns a store backed entirely by in-memory fallbacks,
// without probing SQLite. Used by tests and by deployments that opt out of
// durable storage.
func OpenDegraded() *Store {
	return &Store{
		Metrics: newMemMetricStore(),
		Threats: newMemThreatStore(),
		Events:  newMemEventStore(),
		Users:   newMemUserStore(),
	}
}

// Enabled reports whether the durable store backs this process. The value is
// fixed at Open time.
func (s *Store) Enabled() bool {
	return s.enabled
}

// Close closes the underlying database connection, if any.
func (s *Store) Close() error {
	if s.db != nil {
		log.Println("Closing database connection")
		return s.db.Close()
	}
	return nil
}
