package mutate

import (
	"math/rand"
	"testing"

	"plegma/internal/tpg"
)

func testConfig() Config {
	return Config{
		NbActions:            4,
		NbRoots:              10,
		MaxInitOutgoingEdges: 5,
		SourceSizes:          []int{3},
	}
}

func acyclic(g *tpg.Graph) bool {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*tpg.Vertex]int)
	var visit func(v *tpg.Vertex) bool
	visit = func(v *tpg.Vertex) bool {
		switch state[v] {
		case visiting:
			return false
		case done:
			return true
		}
		state[v] = visiting
		for _, e := range v.OutgoingEdges() {
			if !visit(e.Destination()) {
				return false
			}
		}
		state[v] = done
		return true
	}
	for _, v := range g.Vertices() {
		if !visit(v) {
			return false
		}
	}
	return true
}

func TestNewRootMutatorValidatesConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no actions", func(c *Config) { c.NbActions = 0 }},
		{"no roots", func(c *Config) { c.NbRoots = 0 }},
		{"edge cap too small", func(c *Config) { c.MaxInitOutgoingEdges = 1 }},
		{"no sources", func(c *Config) { c.SourceSizes = nil }},
		{"empty source", func(c *Config) { c.SourceSizes = []int{3, 0} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := NewRootMutator(cfg); err == nil {
				t.Fatal("expected a config error")
			}
		})
	}
}

func TestInitBuildsRequestedPopulation(t *testing.T) {
	m, err := NewRootMutator(testConfig())
	if err != nil {
		t.Fatalf("new mutator: %v", err)
	}
	g := tpg.NewGraph()
	rng := rand.New(rand.NewSource(1))

	if err := m.Init(g, rng); err != nil {
		t.Fatalf("init: %v", err)
	}

	actions, teams := 0, 0
	for _, v := range g.Vertices() {
		if v.IsAction() {
			actions++
			continue
		}
		teams++
		n := len(v.OutgoingEdges())
		if n < 2 || n > 5 {
			t.Fatalf("team with %d outgoing edges", n)
		}
		if !v.IsRoot() {
			t.Fatal("initial teams must all be roots")
		}
	}
	if actions != 4 || teams != 10 {
		t.Fatalf("expected 4 actions and 10 teams, got %d and %d", actions, teams)
	}
	if g.NbRoots() != 10 {
		t.Fatalf("expected 10 roots, got %d", g.NbRoots())
	}
	if !acyclic(g) {
		t.Fatal("initial graph must be acyclic")
	}
}

func TestPopulateRestoresRootCount(t *testing.T) {
	m, err := NewRootMutator(testConfig())
	if err != nil {
		t.Fatalf("new mutator: %v", err)
	}
	g := tpg.NewGraph()
	rng := rand.New(rand.NewSource(2))
	if err := m.Init(g, rng); err != nil {
		t.Fatalf("init: %v", err)
	}

	removed := 0
	for _, v := range g.Roots() {
		if v.IsTeam() && removed < 6 {
			g.RemoveVertex(v)
			removed++
		}
	}
	if g.NbRoots() >= 10 {
		t.Fatalf("setup: expected fewer than 10 roots, got %d", g.NbRoots())
	}

	if err := m.Populate(g, rng); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if g.NbRoots() != 10 {
		t.Fatalf("expected the population back at 10 roots, got %d", g.NbRoots())
	}
	if !acyclic(g) {
		t.Fatal("regrown graph must stay acyclic")
	}
}

func TestGrownTeamsShareProgramsEventually(t *testing.T) {
	cfg := testConfig()
	cfg.NbRoots = 20
	m, err := NewRootMutator(cfg)
	if err != nil {
		t.Fatalf("new mutator: %v", err)
	}
	g := tpg.NewGraph()
	if err := m.Init(g, rand.New(rand.NewSource(3))); err != nil {
		t.Fatalf("init: %v", err)
	}

	if g.NbPrograms() >= g.NbEdges() {
		t.Fatalf("expected shared programs: %d programs over %d edges", g.NbPrograms(), g.NbEdges())
	}
}

func TestInitIsDeterministicPerSeed(t *testing.T) {
	m, err := NewRootMutator(testConfig())
	if err != nil {
		t.Fatalf("new mutator: %v", err)
	}

	g1, g2 := tpg.NewGraph(), tpg.NewGraph()
	if err := m.Init(g1, rand.New(rand.NewSource(7))); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := m.Init(g2, rand.New(rand.NewSource(7))); err != nil {
		t.Fatalf("init: %v", err)
	}

	if g1.NbEdges() != g2.NbEdges() || g1.NbPrograms() != g2.NbPrograms() {
		t.Fatalf("same seed produced different structure: %d/%d edges, %d/%d programs",
			g1.NbEdges(), g2.NbEdges(), g1.NbPrograms(), g2.NbPrograms())
	}
}
