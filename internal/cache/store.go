package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// errNotFound is returned by sqliteStore.get when no row exists for a key.
var errNotFound = errors.New("cache entry not found")

// sqliteStore is the persistent backend: one row per fingerprint, with a
// timestamp index for expiry sweeps.
type sqliteStore struct {
	db   *sql.DB
	path string
}

// openStore opens (creating if needed) the cache database at path and
// applies schema migrations. WAL mode is enabled for concurrent reads.
func openStore(path string) (*sqliteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &sqliteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// migrate applies pending schema migrations. The schema is versioned so a
// version bump triggers a one-time structural migration.
func (s *sqliteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create cache_schema_version table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM cache_schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Responses},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO cache_schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Responses = `
CREATE TABLE IF NOT EXISTS responses (
	key TEXT PRIMARY KEY,
	prompt TEXT NOT NULL,
	response TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_responses_created_at ON responses(created_at);
`

// get returns the response and write time for key, or errNotFound.
func (s *sqliteStore) get(ctx context.Context, key string) (string, time.Time, error) {
	var response string
	var createdAt int64

	row := s.db.QueryRowContext(ctx,
		"SELECT response, created_at FROM responses WHERE key = ?", key)
	if err := row.Scan(&response, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, errNotFound
		}
		return "", time.Time{}, fmt.Errorf("read cache entry: %w", err)
	}

	return response, time.UnixMilli(createdAt), nil
}

// put upserts an entry. Last write wins.
func (s *sqliteStore) put(ctx context.Context, key, prompt, response string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO responses (key, prompt, response, created_at) VALUES (?, ?, ?, ?)",
		key, prompt, response, ts.UnixMilli())
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// delete removes the entry for key if present.
func (s *sqliteStore) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM responses WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// sweep deletes all entries written before cutoff and reports how many
// were removed. It relies on the created_at index.
func (s *sqliteStore) sweep(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM responses WHERE created_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("sweep expired entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// count returns the number of stored entries.
func (s *sqliteStore) count(ctx context.Context) (int64, error) {
	var n int64
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM responses")
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return n, nil
}

// clear removes all entries.
func (s *sqliteStore) clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM responses"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// close closes the underlying database.
func (s *sqliteStore) close() error {
	return s.db.Close()
}
