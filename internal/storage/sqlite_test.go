//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"plegma/internal/model"
)

func initSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "plegma.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	s := NewSQLiteStore("")
	if err := s.Init(context.Background()); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestSQLiteStoreGraphRoundTrip(t *testing.T) {
	s := initSQLite(t)
	ctx := context.Background()

	if err := s.SaveGraph(ctx, sampleGraph()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := s.GetGraph(ctx, "graph-1")
	if err != nil || !ok {
		t.Fatalf("get: %v, %v", ok, err)
	}
	if len(got.Edges) != 1 || got.Edges[0].ProgramID != "p1" {
		t.Fatalf("unexpected graph: %+v", got)
	}

	// Upsert replaces the payload.
	g := sampleGraph()
	g.Programs[0].Bias = 0.9
	if err := s.SaveGraph(ctx, g); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _, _ = s.GetGraph(ctx, "graph-1")
	if got.Programs[0].Bias != 0.9 {
		t.Fatalf("expected upserted bias, got %v", got.Programs[0].Bias)
	}
}

func TestSQLiteStoreListRuns(t *testing.T) {
	s := initSQLite(t)
	ctx := context.Background()

	for _, id := range []string{"run-b", "run-a"} {
		if err := s.SaveRun(ctx, model.RunRecord{VersionedRecord: CurrentVersion(), ID: id}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-a" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestSQLiteStoreFitnessHistory(t *testing.T) {
	s := initSQLite(t)
	ctx := context.Background()

	if err := s.SaveFitnessHistory(ctx, "run-1", []float64{0.5, 0.75}); err != nil {
		t.Fatalf("save: %v", err)
	}
	history, ok, err := s.GetFitnessHistory(ctx, "run-1")
	if err != nil || !ok || len(history) != 2 || history[1] != 0.75 {
		t.Fatalf("get: %v, %v, %v", history, ok, err)
	}
	if _, ok, err := s.GetFitnessHistory(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected a clean miss, got %v, %v", ok, err)
	}
}
