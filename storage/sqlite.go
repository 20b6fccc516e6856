package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/use-agent/redplanet/models"
	_ "modernc.org/sqlite"
)

// SQLite stores the record as a JSON document in a SQLite table keyed by
// collection name.
type SQLite struct {
	conn       *sql.DB
	collection string
}

// OpenSQLite opens (or creates) the database at path and initializes the schema.
func OpenSQLite(path, collection string) (*SQLite, error) {
	if collection == "" {
		return nil, errors.New("storage: empty collection name")
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps writers from tripping over SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	db := &SQLite{conn: conn, collection: collection}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) initSchema() error {
	_, err := db.conn.Exec(`
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`)
	return err
}

// Upsert replaces the collection's document with data.
func (db *SQLite) Upsert(ctx context.Context, data *models.MarsData) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
	INSERT INTO documents (collection, body, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(collection) DO UPDATE SET
		body = excluded.body,
		updated_at = excluded.updated_at
	`, db.collection, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert %s: %w", db.collection, err)
	}
	return nil
}

// Get returns the collection's document.
func (db *SQLite) Get(ctx context.Context) (*models.MarsData, error) {
	var body string
	err := db.conn.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ?`, db.collection,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", db.collection, err)
	}

	var data models.MarsData
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &data, nil
}
