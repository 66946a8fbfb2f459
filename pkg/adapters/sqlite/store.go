// Package sqlite records step summaries and cell snapshots in an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aretw0/cellfate/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS step_summaries (
	run        TEXT    NOT NULL,
	step       INTEGER NOT NULL,
	cells      INTEGER NOT NULL,
	flips      INTEGER NOT NULL,
	phenotypes TEXT    NOT NULL,
	seq        INTEGER PRIMARY KEY AUTOINCREMENT
);
CREATE INDEX IF NOT EXISTS idx_step_summaries_run ON step_summaries(run, seq);

CREATE TABLE IF NOT EXISTS cell_snapshots (
	run       TEXT    NOT NULL,
	cell_id   TEXT    NOT NULL,
	step      INTEGER NOT NULL,
	states    TEXT    NOT NULL,
	outputs   TEXT    NOT NULL,
	phenotype TEXT    NOT NULL,
	PRIMARY KEY (run, cell_id)
);
`

// Store implements ports.SummaryRecorder and ports.SnapshotStore. Rows are scoped by
// run name so that several runs can share one database file.
type Store struct {
	db  *sql.DB
	run string
}

// Option configures a Store.
type Option func(*Store)

// WithRun scopes every row to a run name (default "default").
func WithRun(run string) Option {
	return func(s *Store) {
		if run != "" {
			s.run = run
		}
	}
}

// Open opens (or creates) the database at dsn and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, run: "default"}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return s, nil
}

// Record appends a step summary.
func (s *Store) Record(ctx context.Context, summary domain.StepSummary) error {
	phenotypes, err := json.Marshal(summary.Phenotypes)
	if err != nil {
		return fmt.Errorf("failed to marshal phenotypes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO step_summaries (run, step, cells, flips, phenotypes)
		VALUES (?, ?, ?, ?, ?)`,
		s.run, summary.Step, summary.Cells, summary.Flips, string(phenotypes))
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	return nil
}

// History returns the run's summaries in recording order.
func (s *Store) History(ctx context.Context) ([]domain.StepSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, cells, flips, phenotypes
		FROM step_summaries
		WHERE run = ?
		ORDER BY seq`, s.run)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.StepSummary
	for rows.Next() {
		var (
			sum        domain.StepSummary
			phenotypes string
		)
		if err := rows.Scan(&sum.Step, &sum.Cells, &sum.Flips, &phenotypes); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		if err := json.Unmarshal([]byte(phenotypes), &sum.Phenotypes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal phenotypes: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Save upserts a cell snapshot.
func (s *Store) Save(ctx context.Context, snap domain.CellSnapshot) error {
	states, err := json.Marshal(snap.States)
	if err != nil {
		return fmt.Errorf("failed to marshal states: %w", err)
	}
	outputs, err := json.Marshal(snap.Outputs)
	if err != nil {
		return fmt.Errorf("failed to marshal outputs: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cell_snapshots (run, cell_id, step, states, outputs, phenotype)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run, cell_id) DO UPDATE SET
			step = excluded.step,
			states = excluded.states,
			outputs = excluded.outputs,
			phenotype = excluded.phenotype`,
		s.run, snap.CellID, snap.Step, string(states), string(outputs), string(snap.Phenotype))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves a cell snapshot.
func (s *Store) Load(ctx context.Context, cellID string) (domain.CellSnapshot, error) {
	var (
		snap            domain.CellSnapshot
		states, outputs string
		phenotype       string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT cell_id, step, states, outputs, phenotype
		FROM cell_snapshots
		WHERE run = ? AND cell_id = ?`, s.run, cellID).
		Scan(&snap.CellID, &snap.Step, &states, &outputs, &phenotype)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CellSnapshot{}, domain.ErrSnapshotNotFound
		}
		return domain.CellSnapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(states), &snap.States); err != nil {
		return domain.CellSnapshot{}, fmt.Errorf("failed to unmarshal states: %w", err)
	}
	if err := json.Unmarshal([]byte(outputs), &snap.Outputs); err != nil {
		return domain.CellSnapshot{}, fmt.Errorf("failed to unmarshal outputs: %w", err)
	}
	snap.Phenotype = domain.Phenotype(phenotype)
	return snap, nil
}

// Delete removes a cell snapshot.
func (s *Store) Delete(ctx context.Context, cellID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cell_snapshots WHERE run = ? AND cell_id = ?`, s.run, cellID)
	return err
}

// List returns the run's cells with a snapshot, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cell_id FROM cell_snapshots WHERE run = ? ORDER BY cell_id`, s.run)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
