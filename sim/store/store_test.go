package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns a fresh, initialized store of every kind.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	out := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db")),
	}
	for name, s := range out {
		require.NoError(t, s.Init(ctx), name)
		s := s
		t.Cleanup(func() { _ = CloseIfSupported(s) })
	}
	return out
}

func sampleRun(created time.Time) Run {
	return Run{
		ID:         NewRunID(),
		CreatedAt:  created,
		Seed:       42,
		Selection:  "draw-scan",
		Ticks:      100,
		Placements: 3,
		Config:     "pool_size: 4\n",
	}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore("sqlite", filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)

	_, err = NewStore("postgres", "")
	assert.Error(t, err)
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			run := sampleRun(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
			placements := []Placement{{Tick: 1, SpeciesID: 0}, {Tick: 4, SpeciesID: 2, Forced: true}, {Tick: 9, SpeciesID: 1}}
			require.NoError(t, s.SaveRun(ctx, run, placements))

			got, ok, err := s.GetRun(ctx, run.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, run.ID, got.ID)
			assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
			assert.Equal(t, run.Config, got.Config)
			assert.Equal(t, run.Placements, got.Placements)

			gotPlacements, ok, err := s.GetPlacements(ctx, run.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, placements, gotPlacements)
		})
	}
}

func TestStore_MissingRun(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.GetRun(ctx, NewRunID())
			require.NoError(t, err)
			assert.False(t, ok)

			_, ok, err = s.GetPlacements(ctx, NewRunID())
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_ListRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			older, newer := sampleRun(base), sampleRun(base.Add(time.Hour))
			require.NoError(t, s.SaveRun(ctx, older, nil))
			require.NoError(t, s.SaveRun(ctx, newer, nil))

			runs, err := s.ListRuns(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, newer.ID, runs[0].ID)
			assert.Equal(t, older.ID, runs[1].ID)
		})
	}
}

func TestStore_SaveRun_Replaces(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			run := sampleRun(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
			require.NoError(t, s.SaveRun(ctx, run, []Placement{{Tick: 1}, {Tick: 2}}))

			run.Ticks = 500
			require.NoError(t, s.SaveRun(ctx, run, []Placement{{Tick: 7, SpeciesID: 1}}))

			got, _, err := s.GetRun(ctx, run.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(500), got.Ticks)
			p, _, err := s.GetPlacements(ctx, run.ID)
			require.NoError(t, err)
			assert.Equal(t, []Placement{{Tick: 7, SpeciesID: 1}}, p)
		})
	}
}

func TestStore_SaveRun_RejectsBadID(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			run := sampleRun(time.Now())
			run.ID = "not-a-uuid"
			assert.Error(t, s.SaveRun(ctx, run, nil))
			run.ID = ""
			assert.Error(t, s.SaveRun(ctx, run, nil))
		})
	}
}

func TestSQLiteStore_RequiresInit(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	_, err := s.ListRuns(context.Background())
	assert.Error(t, err)

	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	run := sampleRun(time.Date(2026, 5, 5, 5, 5, 5, 5, time.UTC))

	first := NewSQLiteStore(path)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.SaveRun(ctx, run, []Placement{{Tick: 3, SpeciesID: 1}}))
	require.NoError(t, first.Close())

	second := NewSQLiteStore(path)
	require.NoError(t, second.Init(ctx))
	defer second.Close()
	got, ok, err := second.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
}
