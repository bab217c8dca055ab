package program

import (
	"math/rand"

	"plegma/internal/data"
)

// Linear bids a weighted sum plus bias over one data source. Out-of-range
// reads contribute nothing, so a Linear program stays total over any source
// set it is handed.
type Linear struct {
	id          string
	SourceIndex int
	Weights     []float64
	Bias        float64
}

func NewLinear(sourceIndex int, weights []float64, bias float64) *Linear {
	return &Linear{
		id:          NewID(),
		SourceIndex: sourceIndex,
		Weights:     append([]float64(nil), weights...),
		Bias:        bias,
	}
}

// RestoreLinear rebuilds a persisted program under its original identifier.
func RestoreLinear(id string, sourceIndex int, weights []float64, bias float64) *Linear {
	p := NewLinear(sourceIndex, weights, bias)
	p.id = id
	return p
}

// NewRandomLinear synthesizes a program over the source with the given index
// and size, with weights and bias drawn uniformly from [-1, 1).
func NewRandomLinear(rng *rand.Rand, sourceIndex, sourceSize int) *Linear {
	weights := make([]float64, sourceSize)
	for i := range weights {
		weights[i] = rng.Float64()*2 - 1
	}
	return NewLinear(sourceIndex, weights, rng.Float64()*2-1)
}

func (p *Linear) ID() string {
	return p.id
}

func (p *Linear) Execute(sources []data.Source) float64 {
	if p.SourceIndex < 0 || p.SourceIndex >= len(sources) {
		return p.Bias
	}
	src := sources[p.SourceIndex]
	sum := p.Bias
	for i, w := range p.Weights {
		value, err := src.Get(i)
		if err != nil {
			break
		}
		sum += w * value
	}
	return sum
}
