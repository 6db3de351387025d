package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS episodes (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	published_at TEXT NOT NULL DEFAULT '',
	source_url   TEXT NOT NULL DEFAULT '',
	audio_dir    TEXT NOT NULL DEFAULT '',
	fetched_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_episodes_published_at ON episodes(published_at);
`

// CatalogEntry is a fetched video and where its audio lives
type CatalogEntry struct {
	VideoInfo
	FetchedAt time.Time
}

// Catalog persists fetched episodes in SQLite
type Catalog struct {
	db   *sql.DB
	path string
}

// OpenCatalog opens or creates the catalog database at path
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(catalogSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return &Catalog{db: db, path: path}, nil
}

// Path returns the database file
func (c *Catalog) Path() string {
	return c.path
}

// Close closes the underlying database connection
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Upsert inserts an episode or refreshes a known one
func (c *Catalog) Upsert(ctx context.Context, info VideoInfo, fetchedAt time.Time) error {
	if info.ID == "" {
		return fmt.Errorf("%w: episode ID is required", ErrInvalidArgument)
	}
	_, err := c.db.ExecContext(ctx, `
INSERT INTO episodes (id, title, published_at, source_url, audio_dir, fetched_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	published_at = excluded.published_at,
	source_url = excluded.source_url,
	audio_dir = CASE WHEN excluded.audio_dir = '' THEN episodes.audio_dir ELSE excluded.audio_dir END,
	fetched_at = excluded.fetched_at`,
		info.ID, info.Title, info.PublishedAt, info.SourceURL, info.AudioDir,
		fetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert episode %s: %w", info.ID, err)
	}
	return nil
}

// Get returns one episode by video ID
func (c *Catalog) Get(ctx context.Context, id string) (CatalogEntry, error) {
	row := c.db.QueryRowContext(ctx, `
SELECT id, title, published_at, source_url, audio_dir, fetched_at
FROM episodes WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CatalogEntry{}, fmt.Errorf("%w: episode %s", ErrNotFound, id)
	}
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("get episode %s: %w", id, err)
	}
	return entry, nil
}

// List returns every episode, newest publication first
func (c *Catalog) List(ctx context.Context) ([]CatalogEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
SELECT id, title, published_at, source_url, audio_dir, fetched_at
FROM episodes ORDER BY published_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (CatalogEntry, error) {
	var (
		entry   CatalogEntry
		fetched string
	)
	if err := row.Scan(&entry.ID, &entry.Title, &entry.PublishedAt, &entry.SourceURL, &entry.AudioDir, &fetched); err != nil {
		return CatalogEntry{}, err
	}
	if t, err := time.Parse(time.RFC3339, fetched); err == nil {
		entry.FetchedAt = t
	}
	return entry, nil
}
