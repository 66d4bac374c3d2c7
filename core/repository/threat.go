package repository

import (
	"database/sql"

	"vigil/core/models"
)

// ThreatScoreRepository handles persistence of threat scores in SQLite.
type ThreatScoreRepository struct {
	db *sql.DB
}

// NewThreatScoreRepository creates a new threat score repository.
func NewThreatScoreRepository(db *sql.DB) *ThreatScoreRepository {
	return &ThreatScoreRepository{db: db}
}

// Create stores a threat score in the database.
func (r *ThreatScoreRepository) Create(s *models.ThreatScore) error {
	query := `
		INSERT INTO threat_scores (threat_score, threat_level, timestamp)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, s.Score, s.Level, s.Timestamp)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id

	return nil
}

// History retrieves the most recent threat scores in chronological order.
func (r *ThreatScoreRepository) History(limit int) ([]*models.ThreatScore, error) {
	query := `
		SELECT id, threat_score, threat_level, timestamp
		FROM threat_scores
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*models.ThreatScore
	for rows.Next() {
		s := &models.ThreatScore{}
		if err := rows.Scan(&s.ID, &s.Score, &s.Level, &s.Timestamp); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(scores)-1; i < j; i, j = i+1, j-1 {
		scores[i], scores[j] = scores[j], scores[i]
	}
	return scores, nil
}

// Count returns the total number of stored scores.
func (r *ThreatScoreRepository) Count() (int64, error) {
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM threat_scores`).Scan(&n)
	return n, err
}

// DeleteOlderThan removes threat scores older than the specified number of days.
func (r *ThreatScoreRepository) DeleteOlderThan(days int) (int64, error) {
	query := `DELETE FROM threat_scores WHERE timestamp < datetime('now', '-' || ? || ' days')`
	result, err := r.db.Exec(query, days)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
