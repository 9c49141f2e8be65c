package outputs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"clipforge/internal/services"
)

// Artifact is one finished output registered in the catalog.
type Artifact struct {
	ID         int64
	JobID      string
	Kind       string
	Path       string
	DurationMs int64
	CreatedAt  time.Time
}

// Artifact kinds recorded by the pipeline.
const (
	KindVideo    = "video"
	KindSegment  = "segment"
	KindSubtitle = "subtitle"
)

// Catalog persists finished artifacts in SQLite so completed outputs
// survive daemon restarts even though the job registry itself does not.
type Catalog struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id      TEXT NOT NULL,
    kind        TEXT NOT NULL,
    path        TEXT NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artifacts_job ON artifacts(job_id);
CREATE INDEX IF NOT EXISTS idx_artifacts_created ON artifacts(created_at);
`

// Open initializes or connects to the artifact catalog database.
func Open(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	dbPath := filepath.Join(dir, "outputs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}

	return &Catalog{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the catalog database location.
func (c *Catalog) Path() string {
	return c.path
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Add records a finished artifact and returns its catalog id.
func (c *Catalog) Add(ctx context.Context, artifact Artifact) (int64, error) {
	ctx = ensureContext(ctx)
	if artifact.JobID == "" || artifact.Path == "" {
		return 0, services.Wrap(services.ErrValidation, "outputs", "add", "artifact requires job id and path", nil)
	}
	if artifact.Kind == "" {
		artifact.Kind = KindVideo
	}
	createdAt := artifact.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := retryOnBusy(ctx, func() error {
		res, execErr := c.db.ExecContext(ctx,
			`INSERT INTO artifacts (job_id, kind, path, duration_ms, created_at) VALUES (?, ?, ?, ?, ?)`,
			artifact.JobID, artifact.Kind, artifact.Path, artifact.DurationMs, createdAt.Format(time.RFC3339Nano))
		if execErr != nil {
			return execErr
		}
		id, execErr = res.LastInsertId()
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("add artifact: %w", err)
	}
	return id, nil
}

// List returns the most recent artifacts, newest first. A limit of zero
// returns everything.
func (c *Catalog) List(ctx context.Context, limit int) ([]Artifact, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, job_id, kind, path, duration_ms, created_at FROM artifacts ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return c.queryArtifacts(ctx, query, args...)
}

// ListByJob returns every artifact recorded for one job.
func (c *Catalog) ListByJob(ctx context.Context, jobID string) ([]Artifact, error) {
	ctx = ensureContext(ctx)
	return c.queryArtifacts(ctx,
		`SELECT id, job_id, kind, path, duration_ms, created_at FROM artifacts WHERE job_id = ? ORDER BY id`,
		jobID)
}

func (c *Catalog) queryArtifacts(ctx context.Context, query string, args ...any) ([]Artifact, error) {
	var artifacts []Artifact
	err := retryOnBusy(ctx, func() error {
		rows, queryErr := c.db.QueryContext(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		artifacts = artifacts[:0]
		for rows.Next() {
			var artifact Artifact
			var createdAt string
			if scanErr := rows.Scan(&artifact.ID, &artifact.JobID, &artifact.Kind, &artifact.Path, &artifact.DurationMs, &createdAt); scanErr != nil {
				return scanErr
			}
			if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
				artifact.CreatedAt = parsed
			}
			artifacts = append(artifacts, artifact)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return artifacts, nil
}

// Prune drops catalog rows whose file no longer exists on disk and returns
// how many rows were removed.
func (c *Catalog) Prune(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	artifacts, err := c.List(ctx, 0)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, artifact := range artifacts {
		if _, statErr := os.Stat(artifact.Path); statErr == nil {
			continue
		}
		err := retryOnBusy(ctx, func() error {
			_, execErr := c.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, artifact.ID)
			return execErr
		})
		if err != nil {
			return removed, fmt.Errorf("prune artifact %d: %w", artifact.ID, err)
		}
		removed++
	}
	return removed, nil
}
