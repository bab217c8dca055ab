package tpg

import (
	"math"

	"plegma/internal/archive"
	"plegma/internal/data"
)

// Engine walks a graph from a root to a terminal action by letting each
// team's outgoing edges bid against one another. For fixed program semantics
// and fixed source contents the traversal is fully deterministic; the engine
// itself holds no randomness.
type Engine struct {
	sources []data.Source
	arch    *archive.Archive
}

// NewEngine builds an engine over the given data sources. The archive may be
// nil, in which case edge evaluations leave no recordings.
func NewEngine(sources []data.Source, arch *archive.Archive) *Engine {
	return &Engine{sources: sources, arch: arch}
}

// SetArchive swaps the recording sink. A nil archive disables recording.
func (e *Engine) SetArchive(arch *archive.Archive) {
	e.arch = arch
}

// SetSources repoints the engine at a different source set, e.g. a cloned
// environment's observation block.
func (e *Engine) SetSources(sources []data.Source) {
	e.sources = sources
}

// EvaluateEdge runs the edge's program against the current sources. NaN bids
// are clamped to -Inf so a malformed program can never win the bidding, only
// lose it. Recording to the archive is the sole side effect.
func (e *Engine) EvaluateEdge(edge *Edge) float64 {
	bid := edge.Program().Execute(e.sources)
	if math.IsNaN(bid) {
		bid = math.Inf(-1)
	}
	if e.arch != nil {
		e.arch.Add(edge.Program(), data.SnapshotAll(e.sources), bid)
	}
	return bid
}

// EvaluateTeam evaluates every outgoing edge once and returns the top three
// by bid, ranked non-increasing. Ties at a rank go to the edge evaluated
// first. Teams with fewer than three outgoing edges pad the tail by repeating
// the lowest-ranked edge found. Training-time mutation inspects the
// runners-up for diversity; inference only needs index 0.
func (e *Engine) EvaluateTeam(team *Vertex) ([3]*Edge, error) {
	if !team.IsTeam() {
		return [3]*Edge{}, structuralf("cannot evaluate vertex %s as a team", team.ID())
	}
	outgoing := team.outgoing
	if len(outgoing) == 0 {
		return [3]*Edge{}, structuralf("team %s has no outgoing edges", team.ID())
	}

	var ranked [3]*Edge
	var bids [3]float64
	filled := 0
	for _, edge := range outgoing {
		bid := e.EvaluateEdge(edge)
		pos := filled
		for pos > 0 && bid > bids[pos-1] {
			pos--
		}
		if pos >= len(ranked) {
			continue
		}
		for i := min(filled, len(ranked)-1); i > pos; i-- {
			ranked[i] = ranked[i-1]
			bids[i] = bids[i-1]
		}
		ranked[pos] = edge
		bids[pos] = bid
		if filled < len(ranked) {
			filled++
		}
	}
	for i := filled; i < len(ranked); i++ {
		ranked[i] = ranked[i-1]
	}
	return ranked, nil
}

// ExecuteFromRoot traverses the graph from root until an action vertex is
// reached and returns the visited trace. Each team hop appends the third,
// second and best destinations, in that order, then follows the best edge.
// The final trace element is always an action. Termination relies on the
// graph being acyclic, which the mutation operator maintains and the engine
// does not re-verify.
func (e *Engine) ExecuteFromRoot(root *Vertex) ([]*Vertex, error) {
	current := root
	visited := []*Vertex{current}

	for current.IsTeam() {
		ranked, err := e.EvaluateTeam(current)
		if err != nil {
			return nil, err
		}
		visited = append(visited,
			ranked[2].Destination(),
			ranked[1].Destination(),
			ranked[0].Destination(),
		)
		current = ranked[0].Destination()
	}

	return visited, nil
}
