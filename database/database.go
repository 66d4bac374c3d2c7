// Package database provides database initialization and connection management.
package database

import (
	"database/sql"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens a connection to the SQLite database and runs migrations.
// The database path is provided as a parameter from the configuration.
// Returns an error if the database cannot be opened or migrations fail.
func Open(dbPath string) (*sql.DB, error) {
	log.Printf("Opening database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		log.Printf("Failed to open database: %v", err)
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Test connection
	if err := db.Ping(); err != nil {
		log.Printf("Failed to ping database: %v", err)
		db.Close()
		return nil, err
	}

	// Run migrations
	if err := migrate(db); err != nil {
		log.Printf("Failed to run migrations: %v", err)
		db.Close()
		return nil, err
	}

	return db, nil
}
