package repository

import (
	"database/sql"

	"vigil/core/models"
)

// EventRepository handles persistence of system events in SQLite.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new system event repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create stores a system event in the database.
func (r *EventRepository) Create(e *models.SystemEvent) error {
	query := `
		INSERT INTO system_events (event_type, description, severity, timestamp)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, e.EventType, e.Description, e.Severity, e.Timestamp)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id

	return nil
}

// Recent retrieves recent system events in chronological order, optionally
// filtered by event type.
func (r *EventRepository) Recent(eventType string, limit int) ([]*models.SystemEvent, error) {
	query := `
		SELECT id, event_type, description, severity, timestamp
		FROM system_events
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`
	args := []any{limit}

	if eventType != "" {
		query = `
			SELECT id, event_type, description, severity, timestamp
			FROM system_events
			WHERE event_type = ?
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		`
		args = []any{eventType, limit}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.SystemEvent
	for rows.Next() {
		e := &models.SystemEvent{}
		if err := rows.Scan(&e.ID, &e.EventType, &e.Description, &e.Severity, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// Count returns the total number of stored events.
func (r *EventRepository) Count() (int64, error) {
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM system_events`).Scan(&n)
	return n, err
}

// DeleteOlderThan removes system events older than the specified number of days.
func (r *EventRepository) DeleteOlderThan(days int) (int64, error) {
	query := `DELETE FROM system_events WHERE timestamp < datetime('now', '-' || ? || ' days')`
	result, err := r.db.Exec(query, days)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
