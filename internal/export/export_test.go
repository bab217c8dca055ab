package export

import (
	"math/rand"
	"testing"

	"plegma/internal/data"
	"plegma/internal/model"
	"plegma/internal/program"
	"plegma/internal/tpg"
)

func buildGraph(t *testing.T) *tpg.Graph {
	t.Helper()
	g := tpg.NewGraph()
	rng := rand.New(rand.NewSource(1))

	a0 := g.AddAction(0)
	a1 := g.AddAction(1)
	inner := g.AddTeam()
	root := g.AddTeam()

	shared := program.NewRandomLinear(rng, 0, 3)
	for _, edge := range []struct {
		src, dst *tpg.Vertex
		prog     program.Program
	}{
		{root, inner, shared},
		{root, a0, program.NewRandomLinear(rng, 0, 3)},
		{inner, a0, shared},
		{inner, a1, program.NewRandomLinear(rng, 0, 3)},
	} {
		if _, err := g.AddEdge(edge.src, edge.dst, edge.prog); err != nil {
			t.Fatalf("add edge: %v", err)
		}
	}
	return g
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	g := buildGraph(t)

	record, err := Snapshot(g)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if record.ID == "" {
		t.Fatal("snapshot must assign an id")
	}
	if len(record.Vertices) != 4 || len(record.Edges) != 4 {
		t.Fatalf("unexpected record shape: %d vertices, %d edges", len(record.Vertices), len(record.Edges))
	}
	// The shared program is stored once.
	if len(record.Programs) != 3 {
		t.Fatalf("expected 3 distinct programs, got %d", len(record.Programs))
	}

	restored, err := Restore(record)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.NbVertices() != 4 || restored.NbEdges() != 4 {
		t.Fatalf("restore lost structure: %d vertices, %d edges", restored.NbVertices(), restored.NbEdges())
	}
	if restored.NbPrograms() != 3 {
		t.Fatalf("restore lost program sharing: %d programs", restored.NbPrograms())
	}
	if restored.NbRoots() != 1 {
		t.Fatalf("expected a single root after restore, got %d", restored.NbRoots())
	}
}

func TestRestoredGraphExecutes(t *testing.T) {
	g := buildGraph(t)
	sources := []data.Source{data.VectorOf(0.5, -1, 2)}

	record, err := Snapshot(g)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	restored, err := Restore(record)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	run := func(g *tpg.Graph) []string {
		root := g.Roots()[0]
		trace, err := tpg.NewEngine(sources, nil).ExecuteFromRoot(root)
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		kinds := make([]string, len(trace))
		for i, v := range trace {
			kinds[i] = v.Kind().String()
		}
		return kinds
	}

	before, after := run(g), run(restored)
	if len(before) != len(after) {
		t.Fatalf("trace lengths differ: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("trace diverges at %d: %s vs %s", i, before[i], after[i])
		}
	}
}

func TestRestoreRejectsDanglingReferences(t *testing.T) {
	base, err := Snapshot(buildGraph(t))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	bad := base
	bad.Edges = append([]model.EdgeRecord(nil), base.Edges...)
	bad.Edges[0].ProgramID = "missing"
	if _, err := Restore(bad); err == nil {
		t.Fatal("expected an error for a missing program")
	}

	bad = base
	bad.Edges = append([]model.EdgeRecord(nil), base.Edges...)
	bad.Edges[0].SourceID = "missing"
	if _, err := Restore(bad); err == nil {
		t.Fatal("expected an error for a missing source vertex")
	}

	bad = base
	bad.Vertices = append([]model.VertexRecord(nil), base.Vertices...)
	bad.Vertices[0].Kind = "blob"
	if _, err := Restore(bad); err == nil {
		t.Fatal("expected an error for an unknown vertex kind")
	}
}
