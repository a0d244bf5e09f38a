package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Cache kinds. Tier kinds are produced by KindTier.
const (
	KindStructure = "structure"
	KindFinal     = "final"
)

// KindTier returns the cache kind for a named generation tier.
func KindTier(tier string) string {
	return "tier:" + tier
}

// Store is a SQLite-backed key-value cache. Corruption and misses are both
// reported as absence; the pipeline recomputes rather than failing.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore opens (creating if needed) the cache database at dbPath.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// WAL mode for better concurrency between readers and the writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, path: dbPath, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			content_id TEXT NOT NULL,
			kind       TEXT NOT NULL,
			value      BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (content_id, kind)
		)`)
	if err != nil {
		return fmt.Errorf("creating cache schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the raw value for (contentID, kind), or (nil, false) on miss.
func (s *Store) Get(ctx context.Context, contentID, kind string) ([]byte, bool) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE content_id = ? AND kind = ?`,
		contentID, kind,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		// Treat read errors as cache-empty, never as hard failure.
		s.logger.Warn("cache read failed, treating as miss",
			"content_id", contentID, "kind", kind, "error", err)
		return nil, false
	}
	return value, true
}

// Set stores a raw value for (contentID, kind), replacing any prior entry.
func (s *Store) Set(ctx context.Context, contentID, kind string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (content_id, kind, value, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (content_id, kind) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		contentID, kind, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// GetJSON decodes a cached JSON value into out. A corrupt entry is treated
// as a miss.
func (s *Store) GetJSON(ctx context.Context, contentID, kind string, out any) bool {
	value, ok := s.Get(ctx, contentID, kind)
	if !ok {
		return false
	}
	if err := json.Unmarshal(value, out); err != nil {
		s.logger.Warn("corrupt cache entry, treating as miss",
			"content_id", contentID, "kind", kind, "error", err)
		return false
	}
	return true
}

// SetJSON encodes v as JSON and stores it.
func (s *Store) SetJSON(ctx context.Context, contentID, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	return s.Set(ctx, contentID, kind, data)
}

// Entry describes one cache entry for listing.
type Entry struct {
	ContentID string    `json:"content_id"`
	Kind      string    `json:"kind"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns all cache entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content_id, kind, length(value), created_at
		 FROM cache_entries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ContentID, &e.Kind, &e.Size, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all entries for a content identifier, or every entry when
// contentID is empty. Returns the number of removed entries.
func (s *Store) Clear(ctx context.Context, contentID string) (int64, error) {
	var res sql.Result
	var err error
	if contentID == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE content_id = ?`, contentID)
	}
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
