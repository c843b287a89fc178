package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/san-kum/replisim/internal/dynamo"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    dim INTEGER NOT NULL,
    dt REAL NOT NULL,
    cutoff REAL NOT NULL,
    seed INTEGER NOT NULL,
    integrator TEXT NOT NULL,
    fitness TEXT NOT NULL,
    noise TEXT NOT NULL
);

-- one row per (sample, component)
CREATE TABLE IF NOT EXISTS samples (
    run_id TEXT NOT NULL REFERENCES runs(id),
    epoch INTEGER NOT NULL,
    sample INTEGER NOT NULL,
    time REAL NOT NULL,
    component INTEGER NOT NULL,
    share REAL NOT NULL,
    PRIMARY KEY (run_id, epoch, sample, component)
);
CREATE INDEX IF NOT EXISTS idx_samples_time ON samples(run_id, epoch, time);
`

// SQLiteSink writes trajectories into a long-format SQLite table.
type SQLiteSink struct {
	db *sql.DB
}

func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func (s *SQLiteSink) WriteRun(meta RunMetadata) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO runs (id, name, created_at, dim, dt, cutoff, seed, integrator, fitness, noise)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Timestamp.UTC().Format(time.RFC3339Nano), meta.Dim, meta.Dt,
		meta.Cutoff, meta.Seed, meta.Integrator, meta.Fitness, meta.Noise,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// WriteEpoch inserts every sample of traj in a single transaction.
func (s *SQLiteSink) WriteEpoch(runID string, epoch int, traj *dynamo.Trajectory) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (run_id, epoch, sample, time, component, share) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, sample := range traj.Samples {
		for c, share := range sample.State {
			if _, err := stmt.ExecContext(ctx, runID, epoch, i, sample.Time, c, share); err != nil {
				return fmt.Errorf("failed to insert sample %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit epoch %d: %w", epoch, err)
	}
	return nil
}

// LoadEpoch rebuilds the trajectory of one epoch.
func (s *SQLiteSink) LoadEpoch(runID string, epoch int) (*dynamo.Trajectory, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT sample, time, component, share FROM samples
		 WHERE run_id = ? AND epoch = ?
		 ORDER BY sample, component`, runID, epoch)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	traj := dynamo.NewTrajectory(0)
	for rows.Next() {
		var (
			idx, component int
			t, share       float64
		)
		if err := rows.Scan(&idx, &t, &component, &share); err != nil {
			return nil, err
		}
		if idx == traj.Len() {
			traj.Samples = append(traj.Samples, dynamo.Sample{Time: t})
		}
		last := &traj.Samples[len(traj.Samples)-1]
		last.State = append(last.State, share)
	}
	return traj, rows.Err()
}

// Epochs lists the epochs stored for runID.
func (s *SQLiteSink) Epochs(runID string) ([]int, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT DISTINCT epoch FROM samples WHERE run_id = ? ORDER BY epoch`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var epochs []int
	for rows.Next() {
		var e int
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		epochs = append(epochs, e)
	}
	return epochs, rows.Err()
}
