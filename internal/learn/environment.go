// Package learn drives the generational training loop: job construction,
// policy evaluation, result aggregation and decimation over a tangled
// program graph.
package learn

import (
	"math/rand"

	"plegma/internal/data"
	"plegma/internal/tpg"
)

// Mode selects the evaluation regime an environment is reset into. Training
// resets may randomize freely; validation and testing resets are expected to
// draw from held-out conditions.
type Mode int

const (
	Training Mode = iota
	Validation
	Testing
)

func (m Mode) String() string {
	switch m {
	case Training:
		return "training"
	case Validation:
		return "validation"
	case Testing:
		return "testing"
	default:
		return "unknown"
	}
}

// Environment is the task interface the agent trains against. Interaction is
// a discrete action set; state is observable through the data sources, which
// the environment updates in place on Reset and DoAction. All task
// randomness lives behind Reset's seed; the training core adds none.
type Environment interface {
	// Reset brings the environment to a starting state for the given seed
	// and mode. Equal seeds must reproduce equal starting conditions.
	Reset(seed uint64, mode Mode)
	// DataSources returns stable handles to the observable state. The
	// number, nature and size of the sources never change over the
	// environment's lifetime.
	DataSources() []data.Source
	// NbActions returns the size of the discrete action set.
	NbActions() uint64
	// DoAction executes the action with id in [0, NbActions). Out-of-range
	// ids fail with a range error.
	DoAction(actionID uint64) error
	// IsTerminal reports whether further actions can affect state or score.
	IsTerminal() bool
	// Score returns the reward accumulated since the last Reset.
	Score() float64
}

// ClassificationEnvironment is an environment whose actions are class
// predictions. The table accumulates outcome counts since the last Reset,
// indexed [actualClass][predictedClass].
type ClassificationEnvironment interface {
	Environment
	ClassificationTable() [][]uint64
}

// AdversarialEnvironment scores several agents interacting within one
// episode, one score per seat in the order the seats acted.
type AdversarialEnvironment interface {
	Environment
	Scores() []float64
}

// CloneableEnvironment can produce independent replicas for parallel
// evaluation workers. Environments that cannot clone are evaluated with a
// single worker; sharing one mutable environment across concurrent jobs is
// disallowed.
type CloneableEnvironment interface {
	Environment
	Clone() Environment
}

// Mutator is the capability the agent consumes to (re)grow the root
// population. It must preserve all graph invariants, acyclicity included;
// the training core assumes both and re-verifies neither.
type Mutator interface {
	// Init builds the initial population on an empty graph.
	Init(g *tpg.Graph, rng *rand.Rand) error
	// Populate restores the root population after decimation.
	Populate(g *tpg.Graph, rng *rand.Rand) error
}
