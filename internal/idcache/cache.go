package idcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"sonashow/internal/logging"
	"sonashow/internal/textutil"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different schema version.
var ErrSchemaMismatch = errors.New("idcache: schema version mismatch")

// ErrNotCached is returned by Remove when no mapping exists.
var ErrNotCached = errors.New("idcache: no cached mapping")

// Entry is one cached title to series id mapping.
type Entry struct {
	Title       string
	Year        string
	TVDBID      int64
	MatchedName string
	CachedAt    time.Time
}

// Cache is a SQLite-backed series id cache. The zero path yields a disabled
// cache whose operations are no-ops.
type Cache struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Open creates or opens the cache database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "idcache")
	c := &Cache{path: strings.TrimSpace(path), logger: logger, now: time.Now}
	if c.path == "" {
		return c, nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	c.db = db
	if err := c.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("opened id cache", logging.String("path", c.path))
	return c, nil
}

func (c *Cache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, c.path)
	}
	return nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Enabled reports whether the cache is backed by a database.
func (c *Cache) Enabled() bool {
	return c != nil && c.db != nil
}

func cacheKey(title, year string) (string, string) {
	return textutil.NormalizeKey(title), strings.TrimSpace(year)
}

// Lookup returns the entry for title and year if one was stored.
func (c *Cache) Lookup(ctx context.Context, title, year string) (Entry, bool, error) {
	key, year := cacheKey(title, year)
	if key == "" || !c.Enabled() {
		return Entry{}, false, nil
	}
	row := c.db.QueryRowContext(ctx,
		`SELECT title, year, tvdb_id, matched_name, cached_at FROM series_ids WHERE title_key = ? AND year = ?`,
		key, year)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup series id: %w", err)
	}
	return entry, true, nil
}

// Store adds or replaces the mapping for entry's title and year.
func (c *Cache) Store(ctx context.Context, entry Entry) error {
	key, year := cacheKey(entry.Title, entry.Year)
	if key == "" {
		return errors.New("title cannot be empty")
	}
	if entry.TVDBID <= 0 {
		return errors.New("tvdb id must be positive")
	}
	if !c.Enabled() {
		return nil
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = c.now()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO series_ids (title_key, year, title, tvdb_id, matched_name, cached_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(title_key, year) DO UPDATE SET
            title = excluded.title,
            tvdb_id = excluded.tvdb_id,
            matched_name = excluded.matched_name,
            cached_at = excluded.cached_at`,
		key, year, entry.Title, entry.TVDBID, entry.MatchedName,
		entry.CachedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store series id: %w", err)
	}
	c.logger.Debug("cached series id",
		logging.Show(entry.Title),
		logging.Year(year),
		logging.TVDBID(entry.TVDBID))
	return nil
}

// Remove deletes the mapping for title and year.
func (c *Cache) Remove(ctx context.Context, title, year string) error {
	key, year := cacheKey(title, year)
	if key == "" {
		return errors.New("title cannot be empty")
	}
	if !c.Enabled() {
		return nil
	}
	res, err := c.db.ExecContext(ctx, `DELETE FROM series_ids WHERE title_key = ? AND year = ?`, key, year)
	if err != nil {
		return fmt.Errorf("remove series id: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w for %q (%s)", ErrNotCached, title, year)
	}
	return nil
}

// List returns every entry, newest first.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	if !c.Enabled() {
		return nil, nil
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT title, year, tvdb_id, matched_name, cached_at FROM series_ids ORDER BY cached_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list series ids: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series id: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear removes all entries.
func (c *Cache) Clear(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM series_ids`); err != nil {
		return fmt.Errorf("clear series ids: %w", err)
	}
	c.logger.Debug("cleared id cache")
	return nil
}

// Count returns the number of cached entries.
func (c *Cache) Count(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM series_ids`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count series ids: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry    Entry
		cachedAt string
	)
	if err := row.Scan(&entry.Title, &entry.Year, &entry.TVDBID, &entry.MatchedName, &cachedAt); err != nil {
		return Entry{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, cachedAt); err == nil {
		entry.CachedAt = ts
	}
	return entry, nil
}
