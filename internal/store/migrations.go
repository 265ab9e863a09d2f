package store

import (
	"database/sql"
	"fmt"
)

// migration is one schema step, applied once and recorded in the migrations table.
type migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "create_sessions",
		SQL: `
			CREATE TABLE sessions (
				id TEXT PRIMARY KEY,
				created_at INTEGER NOT NULL,
				label TEXT NOT NULL DEFAULT '',
				config TEXT NOT NULL
			)`,
	},
	{
		Version: 2,
		Name:    "create_samples",
		SQL: `
			CREATE TABLE samples (
				session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				seq INTEGER NOT NULL,
				recorded_at INTEGER NOT NULL,
				u REAL NOT NULL,
				v REAL NOT NULL,
				world_x REAL NOT NULL DEFAULT 0,
				world_y REAL NOT NULL DEFAULT 0,
				world_z REAL NOT NULL DEFAULT 0,
				PRIMARY KEY (session_id, seq)
			)`,
	},
	{
		Version: 3,
		Name:    "create_clears",
		// seq is the sequence number the next sample gets: a clear applies before it.
		SQL: `
			CREATE TABLE clears (
				session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				seq INTEGER NOT NULL,
				recorded_at INTEGER NOT NULL,
				PRIMARY KEY (session_id, seq)
			)`,
	},
}

func initMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// migrate applies every pending migration, each in its own transaction.
func migrate(db *sql.DB) (int, error) {
	if err := initMigrationsTable(db); err != nil {
		return 0, err
	}
	applied, err := appliedMigrations(db)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return n, fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return n, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			tx.Rollback()
			return n, fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return n, fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
		n++
	}
	return n, nil
}
