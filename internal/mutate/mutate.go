// Package mutate grows and regrows the root-team population of a tangled
// program graph. New teams only ever point at vertices that existed before
// them, which keeps the graph acyclic without any cycle checking.
package mutate

import (
	"errors"
	"fmt"
	"math/rand"

	"plegma/internal/program"
	"plegma/internal/tpg"
)

const programReuseChance = 0.5

// Config shapes the generated population.
type Config struct {
	// NbActions is the size of the environment's action set; one action
	// vertex is created per id.
	NbActions uint64
	// NbRoots is the root-team population size Init creates and Populate
	// restores.
	NbRoots int
	// MaxInitOutgoingEdges caps a fresh team's edge count. At least two
	// edges are always grown so a new team has a real choice to make.
	MaxInitOutgoingEdges int
	// SourceSizes lists the environment's data source sizes, indexed like
	// DataSources; generated programs read one randomly chosen source.
	SourceSizes []int
}

func (c Config) validate() error {
	if c.NbActions == 0 {
		return errors.New("at least one action is required")
	}
	if c.NbRoots < 1 {
		return errors.New("at least one root team is required")
	}
	if c.MaxInitOutgoingEdges < 2 {
		return errors.New("teams need room for at least two outgoing edges")
	}
	if len(c.SourceSizes) == 0 {
		return errors.New("at least one data source is required")
	}
	for i, size := range c.SourceSizes {
		if size < 1 {
			return fmt.Errorf("data source %d has size %d", i, size)
		}
	}
	return nil
}

// RootMutator implements the population capability of the training agent.
type RootMutator struct {
	cfg Config
}

func NewRootMutator(cfg Config) (*RootMutator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid mutator config: %w", err)
	}
	return &RootMutator{cfg: cfg}, nil
}

// Init builds the initial population: one vertex per action, then NbRoots
// teams bidding over random action subsets.
func (m *RootMutator) Init(g *tpg.Graph, rng *rand.Rand) error {
	for id := uint64(0); id < m.cfg.NbActions; id++ {
		g.AddAction(id)
	}
	for i := 0; i < m.cfg.NbRoots; i++ {
		if err := m.growTeam(g, rng); err != nil {
			return err
		}
	}
	return nil
}

// Populate restores the root population after decimation. New teams only
// target actions and already-tangled teams, so no root team loses its root
// status while the population grows back.
func (m *RootMutator) Populate(g *tpg.Graph, rng *rand.Rand) error {
	for g.NbRoots() < m.cfg.NbRoots {
		if err := m.growTeam(g, rng); err != nil {
			return err
		}
	}
	return nil
}

func (m *RootMutator) growTeam(g *tpg.Graph, rng *rand.Rand) error {
	targets := m.targets(g)
	if len(targets) == 0 {
		return errors.New("no vertices to target")
	}

	nbEdges := 2
	if max := min(m.cfg.MaxInitOutgoingEdges, len(targets)); max > 2 {
		nbEdges = 2 + rng.Intn(max-1)
	}

	order := rng.Perm(len(targets))
	team := g.AddTeam()
	for i := 0; i < nbEdges && i < len(order); i++ {
		if _, err := g.AddEdge(team, targets[order[i]], m.pickProgram(g, rng)); err != nil {
			return fmt.Errorf("grow team: %w", err)
		}
	}
	return nil
}

// targets lists the vertices a fresh team may bid on: every action plus
// every non-root team.
func (m *RootMutator) targets(g *tpg.Graph) []*tpg.Vertex {
	var targets []*tpg.Vertex
	for _, v := range g.Vertices() {
		if v.IsAction() || !v.IsRoot() {
			targets = append(targets, v)
		}
	}
	return targets
}

// pickProgram either reuses a program already guarding some edge, keeping
// shared ownership alive, or synthesizes a fresh random one.
func (m *RootMutator) pickProgram(g *tpg.Graph, rng *rand.Rand) program.Program {
	if edges := g.Edges(); len(edges) > 0 && rng.Float64() < programReuseChance {
		return edges[rng.Intn(len(edges))].Program()
	}
	sourceIndex := rng.Intn(len(m.cfg.SourceSizes))
	return program.NewRandomLinear(rng, sourceIndex, m.cfg.SourceSizes[sourceIndex])
}
