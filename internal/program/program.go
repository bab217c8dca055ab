// Package program defines the bidding functions carried by graph edges.
//
// Instruction-level program semantics are deliberately open: the training core
// only needs a deterministic scalar bid per execution. The Linear
// implementation below is what the default mutator synthesizes; alternative
// implementations plug in through the Program interface.
package program

import (
	"github.com/google/uuid"

	"plegma/internal/data"
)

// Program produces a scalar bid from the environment's data sources.
// Execute must be deterministic for identical source contents. A program may
// return NaN for degenerate inputs; callers are expected to clamp.
type Program interface {
	ID() string
	Execute(sources []data.Source) float64
}

// NewID returns a fresh program identifier.
func NewID() string {
	return uuid.New().String()
}
