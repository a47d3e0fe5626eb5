// Package archive persists summaries of evicted sessions to SQLite,
// so a finished run survives the in-memory store's eviction.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/runtogether/pacer/internal/adapters/repository"
	"github.com/runtogether/pacer/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_summaries (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	runner_level INTEGER NOT NULL,
	samples     INTEGER NOT NULL,
	start_ts    REAL NOT NULL,
	end_ts      REAL NOT NULL,
	avg_hr      REAL NOT NULL,
	max_hr      REAL NOT NULL,
	avg_speed   REAL NOT NULL,
	distance_km REAL NOT NULL,
	archived_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_summaries_session ON run_summaries(session_id);
`

// Archive is a SQLite-backed sink for session summaries.
type Archive struct {
	db *sql.DB
}

// Open opens (and if needed creates) the archive database at path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running archive migration: %w", err)
	}
	return &Archive{db: db}, nil
}

// SaveSummary writes one evicted session's summary.
func (a *Archive) SaveSummary(ctx context.Context, s repository.Summary) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO run_summaries (
			id, session_id, runner_level, samples, start_ts, end_ts,
			avg_hr, max_hr, avg_speed, distance_km, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(), s.SessionID, int(s.Level), s.Samples,
		s.StartTS, s.EndTS, s.AvgHR, s.MaxHR, s.AvgSpeed, s.DistanceKM,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		metrics.RecordArchiveError()
		return fmt.Errorf("saving run summary: %w", err)
	}
	metrics.RecordSessionArchived()
	return nil
}

// Count returns the number of archived summaries.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_summaries`).Scan(&n)
	return n, err
}

// Close releases the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
