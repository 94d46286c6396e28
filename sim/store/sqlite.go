package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps runs in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sqlx.DB
}

type runRow struct {
	ID         string `db:"id"`
	CreatedAt  int64  `db:"created_at"` // unix nanoseconds
	Seed       int64  `db:"seed"`
	Selection  string `db:"selection"`
	Ticks      int64  `db:"ticks"`
	Placements int    `db:"placements"`
	Config     string `db:"config"`
}

func (r runRow) run() Run {
	return Run{
		ID:         r.ID,
		CreatedAt:  time.Unix(0, r.CreatedAt).UTC(),
		Seed:       r.Seed,
		Selection:  r.Selection,
		Ticks:      r.Ticks,
		Placements: r.Placements,
		Config:     r.Config,
	}
}

type placementRow struct {
	Tick      int64 `db:"tick"`
	SpeciesID int   `db:"species_id"`
	Forced    int   `db:"forced"`
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sqlx.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("open db: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	s.db = db
	return nil
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		selection TEXT NOT NULL,
		ticks INTEGER NOT NULL,
		placements INTEGER NOT NULL,
		config TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS placements (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		tick INTEGER NOT NULL,
		species_id INTEGER NOT NULL,
		forced INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_placements_run ON placements(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SaveRun writes a run and its placements in one transaction, replacing any
// earlier copy of the same run.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, placements []Placement) error {
	if err := validateRun(run); err != nil {
		return err
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM placements WHERE run_id = ?", run.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, seed, selection, ticks, placements, config)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			seed = excluded.seed,
			selection = excluded.selection,
			ticks = excluded.ticks,
			placements = excluded.placements,
			config = excluded.config
	`, run.ID, run.CreatedAt.UnixNano(), run.Seed, run.Selection, run.Ticks, run.Placements, run.Config); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO placements (run_id, tick, species_id, forced) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range placements {
		forced := 0
		if p.Forced {
			forced = 1
		}
		if _, err := stmt.ExecContext(ctx, run.ID, p.Tick, p.SpeciesID, forced); err != nil {
			return fmt.Errorf("save placement at tick %d: %w", p.Tick, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}

	var row runRow
	err = db.GetContext(ctx, &row, `SELECT id, created_at, seed, selection, ticks, placements, config FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return row.run(), true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var rows []runRow
	if err := db.SelectContext(ctx, &rows, `SELECT id, created_at, seed, selection, ticks, placements, config FROM runs ORDER BY created_at DESC, id`); err != nil {
		return nil, err
	}
	runs := make([]Run, len(rows))
	for i, r := range rows {
		runs[i] = r.run()
	}
	return runs, nil
}

func (s *SQLiteStore) GetPlacements(ctx context.Context, runID string) ([]Placement, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}
	if _, ok, err := s.GetRun(ctx, runID); err != nil || !ok {
		return nil, false, err
	}

	var rows []placementRow
	if err := db.SelectContext(ctx, &rows, `SELECT tick, species_id, forced FROM placements WHERE run_id = ? ORDER BY tick, rowid`, runID); err != nil {
		return nil, false, err
	}
	out := make([]Placement, len(rows))
	for i, r := range rows {
		out[i] = Placement{Tick: r.Tick, SpeciesID: r.SpeciesID, Forced: r.Forced != 0}
	}
	return out, true, nil
}

func (s *SQLiteStore) getDB() (*sqlx.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("sqlite store not initialized")
	}
	return s.db, nil
}
