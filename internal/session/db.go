package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection holding the persisted session.
type DB struct {
	*sql.DB
}

// OpenDB creates or opens the session database at the given path and
// runs schema initialization. WAL mode keeps reads cheap while the
// hydration goroutine holds the writer.
func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			user_json TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	return err
}

// saveSession upserts the single persisted session row.
func (db *DB) saveSession(token, userJSON string, updatedAt int64) error {
	_, err := db.Exec(`
		INSERT INTO session (id, access_token, user_json, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			user_json = excluded.user_json,
			updated_at = excluded.updated_at
	`, token, userJSON, updatedAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// loadSession reads the persisted row. ok is false when none exists.
func (db *DB) loadSession() (token, userJSON string, ok bool, err error) {
	err = db.QueryRow(`SELECT access_token, user_json FROM session WHERE id = 1`).
		Scan(&token, &userJSON)
	if err == sql.ErrNoRows {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("load session: %w", err)
	}
	return token, userJSON, true, nil
}

// deleteSession removes the persisted row.
func (db *DB) deleteSession() error {
	_, err := db.Exec(`DELETE FROM session WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
