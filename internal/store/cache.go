package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"valos-cli/internal/model"
)

// Cache is a local snapshot of the last successfully fetched leads and
// costings. It exists so the dashboard can show last-known counts while
// fresh fetches are in flight and so `--offline` listings work at all.
// It is never written back to the backend.
type Cache struct {
	db *sql.DB
}

const (
	snapshotLeads    = "leads"
	snapshotCostings = "costings"
)

func OpenCache() (*Cache, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return OpenCacheAt(filepath.Join(dir, "cache.sqlite"))
}

func OpenCacheAt(path string) (*Cache, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
  collection TEXT PRIMARY KEY,
  payload    TEXT NOT NULL,
  total      INTEGER NOT NULL,
  fetched_at TEXT NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Snapshot holds one cached collection and when it was fetched.
type Snapshot struct {
	Total     int
	FetchedAt time.Time
}

func (c *Cache) putSnapshot(ctx context.Context, collection string, payload any, total int) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
INSERT INTO snapshots (collection, payload, total, fetched_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(collection) DO UPDATE SET
  payload = excluded.payload,
  total = excluded.total,
  fetched_at = excluded.fetched_at;`,
		collection, string(b), total, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (c *Cache) getSnapshot(ctx context.Context, collection string, out any) (Snapshot, error) {
	var payload, fetchedAt string
	var snap Snapshot
	row := c.db.QueryRowContext(ctx,
		`SELECT payload, total, fetched_at FROM snapshots WHERE collection = ?;`, collection)
	if err := row.Scan(&payload, &snap.Total, &fetchedAt); err != nil {
		return Snapshot{}, err
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		snap.FetchedAt = t
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// PutLeads replaces the lead snapshot. total is the backend's reported
// collection size, which can exceed len(leads) for a partial page.
func (c *Cache) PutLeads(ctx context.Context, leads []model.Lead, total int) error {
	return c.putSnapshot(ctx, snapshotLeads, leads, total)
}

func (c *Cache) Leads(ctx context.Context) ([]model.Lead, Snapshot, error) {
	var leads []model.Lead
	snap, err := c.getSnapshot(ctx, snapshotLeads, &leads)
	if err != nil {
		return nil, Snapshot{}, err
	}
	for i := range leads {
		if leads[i].Priority == "" {
			leads[i].Priority = model.DefaultPriority
		}
	}
	return leads, snap, nil
}

func (c *Cache) PutCostings(ctx context.Context, costings []model.Costing, total int) error {
	return c.putSnapshot(ctx, snapshotCostings, costings, total)
}

func (c *Cache) Costings(ctx context.Context) ([]model.Costing, Snapshot, error) {
	var costings []model.Costing
	snap, err := c.getSnapshot(ctx, snapshotCostings, &costings)
	if err != nil {
		return nil, Snapshot{}, err
	}
	return costings, snap, nil
}

// Counts returns the cached totals (0 when a collection was never cached).
func (c *Cache) Counts(ctx context.Context) (leads, costings int) {
	var ignored []model.Lead
	if snap, err := c.getSnapshot(ctx, snapshotLeads, &ignored); err == nil {
		leads = snap.Total
	}
	var ignoredC []model.Costing
	if snap, err := c.getSnapshot(ctx, snapshotCostings, &ignoredC); err == nil {
		costings = snap.Total
	}
	return leads, costings
}
