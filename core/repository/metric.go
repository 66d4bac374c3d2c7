package repository

import (
	"database/sql"

	"vigil/core/models"
)

// MetricRepository handles persistence of metric samples in SQLite.
type MetricRepository struct {
	db *sql.DB
}

// NewMetricRepository creates a new metric repository.
func NewMetricRepository(db *sql.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// Create stores a metric sample in the database.
func (r *MetricRepository) Create(m *models.MetricSample) error {
	query := `
		INSERT INTO metrics (cpu_percent, memory_percent, disk_percent, status, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(
		query,
		m.CPUPercent,
		m.MemoryPercent,
		m.DiskPercent,
		m.Status,
		m.Timestamp,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id

	return nil
}

// History retrieves the most recent metric samples, reordered to
// chronological before returning.
func (r *MetricRepository) History(limit int) ([]*models.MetricSample, error) {
	query := `
		SELECT id, cpu_percent, memory_percent, disk_percent, status, timestamp
		FROM metrics
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*models.MetricSample
	for rows.Next() {
		m := &models.MetricSample{}
		err := rows.Scan(
			&m.ID,
			&m.CPUPercent,
			&m.MemoryPercent,
			&m.DiskPercent,
			&m.Status,
			&m.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		samples = append(samples, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reverseSamples(samples)
	return samples, nil
}

// Count returns the total number of stored samples.
func (r *MetricRepository) Count() (int64, error) {
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM metrics`).Scan(&n)
	return n, err
}

// DeleteOlderThan removes metric samples older than the specified number of days.
func (r *MetricRepository) DeleteOlderThan(days int) (int64, error) {
	query := `DELETE FROM metrics WHERE timestamp < datetime('now', '-' || ? || ' days')`
	result, err := r.db.Exec(query, days)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func reverseSamples(s []*models.MetricSample) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
