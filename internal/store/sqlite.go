package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hbnb/console/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is stamped into PRAGMA user_version. Databases stamped
// with a later version were written by a newer layout and are refused.
const currentSchemaVersion = 1

// SQLiteMedium persists the object table in a SQLite database, one row per
// identity with the flat attribute mapping as JSON.
type SQLiteMedium struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteMedium, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteMedium{db: db}, nil
}

// Close closes the database connection.
func (m *SQLiteMedium) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Load reads every row, ordered by identity.
func (m *SQLiteMedium) Load(ctx context.Context) (Snapshot, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT identity, body
		FROM objects
		ORDER BY identity COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var identity, body string
		if err := rows.Scan(&identity, &body); err != nil {
			return nil, fmt.Errorf("scan object: %w", err)
		}
		var inst model.Instance
		if err := json.Unmarshal([]byte(body), &inst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", identity, err)
		}
		snap[identity] = &inst
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}

	return snap, nil
}

// Save replaces every row with the snapshot in a single transaction.
func (m *SQLiteMedium) Save(ctx context.Context, snap Snapshot) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save objects: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM objects`); err != nil {
		return fmt.Errorf("save objects: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO objects (identity, class, body)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save objects: prepare: %w", err)
	}
	defer stmt.Close()

	for _, identity := range snap.Identities() {
		inst := snap[identity]
		body, err := json.Marshal(inst)
		if err != nil {
			return fmt.Errorf("save objects: encode %s: %w", identity, err)
		}
		if _, err := stmt.ExecContext(ctx, identity, inst.Class, string(body)); err != nil {
			return fmt.Errorf("save objects: insert %s: %w", identity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save objects: commit: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates the table and index if they don't exist and stamps the
// layout version. This function is idempotent.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database layout version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (m *SQLiteMedium) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := m.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
