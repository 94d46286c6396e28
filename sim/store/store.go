// Package store persists generator runs: the configuration a run started from,
// its summary, and every placement it made.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one stored generator run.
type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Seed       int64     `json:"seed"`
	Selection  string    `json:"selection"`
	Ticks      int64     `json:"ticks"`
	Placements int       `json:"placements"`
	Config     string    `json:"config"` // generator config as YAML
}

// Placement is one placed event of a run.
type Placement struct {
	Tick      int64 `json:"tick"`
	SpeciesID int   `json:"species_id"`
	Forced    bool  `json:"forced"`
}

// Store defines persistence operations for runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run, placements []Placement) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context) ([]Run, error) // newest first
	GetPlacements(ctx context.Context, runID string) ([]Placement, bool, error)
}

// NewRunID returns a fresh random run id.
func NewRunID() string {
	return uuid.NewString()
}

// NewStore builds a store backend by name: "memory" (or empty) or "sqlite".
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes stores that hold resources.
func CloseIfSupported(s Store) error {
	closer, ok := s.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

func validateRun(run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if _, err := uuid.Parse(run.ID); err != nil {
		return fmt.Errorf("run id %q: %w", run.ID, err)
	}
	return nil
}
