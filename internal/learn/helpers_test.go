package learn

import (
	"fmt"
	"math/rand"

	"plegma/internal/data"
	"plegma/internal/tpg"
)

// bidProgram bids a constant. Two edges built from the same value share one
// program identity, which is fine for these tests.
type bidProgram float64

func (p bidProgram) ID() string {
	return fmt.Sprintf("bid-%v", float64(p))
}

func (p bidProgram) Execute(_ []data.Source) float64 {
	return float64(p)
}

// addRoot grows one root team bidding for the given action vertex.
func addRoot(g *tpg.Graph, action *tpg.Vertex, bid float64) (*tpg.Vertex, error) {
	team := g.AddTeam()
	if _, err := g.AddEdge(team, action, bidProgram(bid)); err != nil {
		return nil, err
	}
	return team, nil
}

// stepEnv rewards each action with its own id and terminates after a fixed
// number of steps. Cloneable for parallel evaluation tests.
type stepEnv struct {
	nbActions uint64
	maxSteps  uint64
	steps     uint64
	score     float64
	lastSeed  uint64
	lastMode  Mode
	sources   []data.Source
}

func newStepEnv(nbActions, maxSteps uint64) *stepEnv {
	return &stepEnv{
		nbActions: nbActions,
		maxSteps:  maxSteps,
		sources:   []data.Source{data.VectorOf(0)},
	}
}

func (e *stepEnv) Reset(seed uint64, mode Mode) {
	e.steps = 0
	e.score = 0
	e.lastSeed = seed
	e.lastMode = mode
}

func (e *stepEnv) DataSources() []data.Source {
	return e.sources
}

func (e *stepEnv) NbActions() uint64 {
	return e.nbActions
}

func (e *stepEnv) DoAction(actionID uint64) error {
	if actionID >= e.nbActions {
		return fmt.Errorf("action %d of %d: out of range", actionID, e.nbActions)
	}
	e.score += float64(actionID)
	e.steps++
	return nil
}

func (e *stepEnv) IsTerminal() bool {
	return e.steps >= e.maxSteps
}

func (e *stepEnv) Score() float64 {
	return e.score
}

func (e *stepEnv) Clone() Environment {
	return newStepEnv(e.nbActions, e.maxSteps)
}

// tableEnv is a classification environment handing out a preset outcome
// table, so F1 bookkeeping can be checked against hand-computed values.
type tableEnv struct {
	stepEnv
	table [][]uint64
}

func newTableEnv(table [][]uint64, maxSteps uint64) *tableEnv {
	return &tableEnv{
		stepEnv: *newStepEnv(uint64(len(table)), maxSteps),
		table:   table,
	}
}

func (e *tableEnv) ClassificationTable() [][]uint64 {
	return e.table
}

// duelEnv is a two-seat adversarial environment. Seats alternate actions and
// each seat's score is the sum of the action ids it played.
type duelEnv struct {
	stepEnv
	seatScores []float64
}

func newDuelEnv(nbActions, maxSteps uint64) *duelEnv {
	return &duelEnv{stepEnv: *newStepEnv(nbActions, maxSteps)}
}

func (e *duelEnv) Reset(seed uint64, mode Mode) {
	e.stepEnv.Reset(seed, mode)
	e.seatScores = make([]float64, 2)
}

func (e *duelEnv) DoAction(actionID uint64) error {
	seat := int(e.steps) % 2
	if err := e.stepEnv.DoAction(actionID); err != nil {
		return err
	}
	e.seatScores[seat] += float64(actionID)
	return nil
}

func (e *duelEnv) Scores() []float64 {
	return append([]float64(nil), e.seatScores...)
}

func (e *duelEnv) Clone() Environment {
	return newDuelEnv(e.nbActions, e.maxSteps)
}

// ladderMutator populates n root teams over n shared action vertices. Every
// team bids on every action and team i bids highest on action i, so team i
// always plays action i and scores are fully predictable. Sharing the action
// vertices keeps them non-root whichever teams decimation removes.
type ladderMutator struct {
	n int
}

func (m *ladderMutator) Init(g *tpg.Graph, _ *rand.Rand) error {
	for i := 0; i < m.n; i++ {
		g.AddAction(uint64(i))
	}
	for i := 0; i < m.n; i++ {
		if err := m.addLadderTeam(g, i); err != nil {
			return err
		}
	}
	return nil
}

func (m *ladderMutator) Populate(g *tpg.Graph, _ *rand.Rand) error {
	for i := 0; g.NbRoots() < m.n; i++ {
		if err := m.addLadderTeam(g, i%m.n); err != nil {
			return err
		}
	}
	return nil
}

func (m *ladderMutator) addLadderTeam(g *tpg.Graph, favorite int) error {
	actions := make([]*tpg.Vertex, m.n)
	for _, v := range g.Vertices() {
		if v.IsAction() {
			actions[v.ActionID()] = v
		}
	}
	team := g.AddTeam()
	for j, action := range actions {
		bid := 0.0
		if j == favorite {
			bid = 1.0
		}
		if _, err := g.AddEdge(team, action, bidProgram(bid)); err != nil {
			return err
		}
	}
	return nil
}
