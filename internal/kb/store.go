// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kb persists factoids in a SQLite knowledge base. A factoid is
// addressed by its (key, type) pair; creating a pair that already exists
// fails with ErrFactoidExists so callers can treat duplicates as an
// expected, countable outcome.
package kb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/infobot-reborn/pkg/types"
)

const schemaVersion = 1

// ErrFactoidExists reports a create for a (key, type) pair already present.
var ErrFactoidExists = errors.New("factoid already exists")

// ErrFactoidNotFound reports an update or lookup for a missing factoid.
var ErrFactoidNotFound = errors.New("factoid not found")

// Store manages factoid CRUD operations on the SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the factoid database at cfg.DatabasePath,
// creating parent directories and the schema as needed.
func NewStore(cfg types.KnowledgeBaseConfig) (*Store, error) {
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DatabasePath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS factoids (
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('is', 'are')),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			source TEXT,
			PRIMARY KEY (key, type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_factoids_key ON factoids(key)`,
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`,
		schemaVersion, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return nil
}

// Create persists a new factoid and returns it with timestamps set.
// Returns ErrFactoidExists when the (key, type) pair is already present.
func (s *Store) Create(ctx context.Context, f types.Factoid) (types.Factoid, error) {
	f, err := types.NewFactoid(f.Key, f.Value, f.Type, f.Source)
	if err != nil {
		return types.Factoid{}, err
	}

	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO factoids (key, value, type, created_at, updated_at, source)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.Key, f.Value, string(f.Type),
		f.CreatedAt.Format(time.RFC3339), f.UpdatedAt.Format(time.RFC3339), f.Source,
	)
	if err != nil {
		// The (key, type) primary key turns a duplicate insert into a
		// constraint violation; surface it as the sentinel.
		if isUniqueViolation(err) {
			return types.Factoid{}, fmt.Errorf("factoid %q (%s): %w", f.Key, f.Type, ErrFactoidExists)
		}
		return types.Factoid{}, fmt.Errorf("inserting factoid %q: %w", f.Key, err)
	}
	return f, nil
}

// Get retrieves a factoid by key. When ftype is nil any type matches,
// preferring 'is' over 'are'. Returns ErrFactoidNotFound on a miss.
func (s *Store) Get(ctx context.Context, key string, ftype *types.FactoidType) (types.Factoid, error) {
	key = normalizeKey(key)

	var row *sql.Row
	if ftype != nil {
		row = s.db.QueryRowContext(ctx,
			`SELECT key, value, type, created_at, updated_at, source
			 FROM factoids WHERE key = ? AND type = ?`,
			key, string(*ftype),
		)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT key, value, type, created_at, updated_at, source
			 FROM factoids WHERE key = ?
			 ORDER BY CASE type WHEN 'is' THEN 0 ELSE 1 END
			 LIMIT 1`,
			key,
		)
	}

	f, err := scanFactoid(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Factoid{}, fmt.Errorf("factoid %q: %w", key, ErrFactoidNotFound)
	}
	if err != nil {
		return types.Factoid{}, fmt.Errorf("querying factoid %q: %w", key, err)
	}
	return f, nil
}

// GetAll retrieves every factoid stored under key, both types.
func (s *Store) GetAll(ctx context.Context, key string) ([]types.Factoid, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, type, created_at, updated_at, source
		 FROM factoids WHERE key = ? ORDER BY type`,
		normalizeKey(key),
	)
	if err != nil {
		return nil, fmt.Errorf("querying factoids for %q: %w", key, err)
	}
	defer rows.Close()
	return collectFactoids(rows)
}

// Update replaces the value and source of an existing factoid.
// Returns ErrFactoidNotFound when the (key, type) pair does not exist.
func (s *Store) Update(ctx context.Context, f types.Factoid) (types.Factoid, error) {
	f, err := types.NewFactoid(f.Key, f.Value, f.Type, f.Source)
	if err != nil {
		return types.Factoid{}, err
	}
	f.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE factoids SET value = ?, updated_at = ?, source = ?
		 WHERE key = ? AND type = ?`,
		f.Value, f.UpdatedAt.Format(time.RFC3339), f.Source, f.Key, string(f.Type),
	)
	if err != nil {
		return types.Factoid{}, fmt.Errorf("updating factoid %q: %w", f.Key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return types.Factoid{}, fmt.Errorf("checking update of %q: %w", f.Key, err)
	}
	if affected == 0 {
		return types.Factoid{}, fmt.Errorf("factoid %q (%s): %w", f.Key, f.Type, ErrFactoidNotFound)
	}
	return f, nil
}

// Delete removes a factoid. It reports whether a row was deleted.
func (s *Store) Delete(ctx context.Context, key string, ftype types.FactoidType) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM factoids WHERE key = ? AND type = ?`,
		normalizeKey(key), string(ftype),
	)
	if err != nil {
		return false, fmt.Errorf("deleting factoid %q: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking delete of %q: %w", key, err)
	}
	return affected > 0, nil
}

// Search returns factoids whose key contains the query substring,
// case-insensitive, ordered by key, at most limit rows.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.Factoid, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, type, created_at, updated_at, source
		 FROM factoids WHERE key LIKE ? ORDER BY key LIMIT ?`,
		"%"+normalizeKey(query)+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching factoids for %q: %w", query, err)
	}
	defer rows.Close()
	return collectFactoids(rows)
}

// Count returns the total number of stored factoids.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM factoids`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting factoids: %w", err)
	}
	return n, nil
}

// --- helpers ---

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// isUniqueViolation reports whether err is a SQLite constraint failure,
// which on this schema can only mean the (key, type) primary key.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

type scannable interface {
	Scan(dest ...any) error
}

func scanFactoid(row scannable) (types.Factoid, error) {
	var (
		f                    types.Factoid
		ftype                string
		createdAt, updatedAt string
		source               sql.NullString
	)
	if err := row.Scan(&f.Key, &f.Value, &ftype, &createdAt, &updatedAt, &source); err != nil {
		return types.Factoid{}, err
	}
	f.Type = types.FactoidType(ftype)
	f.Source = source.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		f.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		f.UpdatedAt = t
	}
	return f, nil
}

func collectFactoids(rows *sql.Rows) ([]types.Factoid, error) {
	var out []types.Factoid
	for rows.Next() {
		f, err := scanFactoid(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning factoid row: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating factoid rows: %w", err)
	}
	return out, nil
}
