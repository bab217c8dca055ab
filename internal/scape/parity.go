package scape

import (
	"fmt"
	"math/rand"

	"plegma/internal/data"
	"plegma/internal/learn"
)

// Parity is a two-class classification environment: the observable state is a
// random bit vector and the correct class is its parity. Each action is a
// class prediction; a fresh sample is drawn after every prediction.
// Validation and testing resets decorrelate from training by salting the
// sample stream.
type Parity struct {
	nbBits    int
	nbSamples int
	predicted int
	correct   float64
	actual    uint64
	table     [][]uint64
	rng       *rand.Rand
	state     *data.Vector
}

func NewParity(nbBits, nbSamples int) (*Parity, error) {
	if nbBits < 1 {
		return nil, fmt.Errorf("parity needs at least one bit, got %d", nbBits)
	}
	if nbSamples < 1 {
		return nil, fmt.Errorf("parity needs at least one sample, got %d", nbSamples)
	}
	p := &Parity{
		nbBits:    nbBits,
		nbSamples: nbSamples,
		state:     data.NewVector(nbBits),
	}
	p.Reset(0, learn.Training)
	return p, nil
}

func (p *Parity) Reset(seed uint64, mode learn.Mode) {
	// Salt the stream per mode so held-out samples never repeat training.
	salted := seed ^ (uint64(mode) * 0x9e3779b97f4a7c15)
	p.rng = rand.New(rand.NewSource(int64(salted)))
	p.predicted = 0
	p.correct = 0
	p.table = [][]uint64{
		make([]uint64, 2),
		make([]uint64, 2),
	}
	p.draw()
}

func (p *Parity) DataSources() []data.Source {
	return []data.Source{p.state}
}

func (p *Parity) NbActions() uint64 {
	return 2
}

func (p *Parity) DoAction(actionID uint64) error {
	if actionID >= 2 {
		return fmt.Errorf("action %d of 2: out of range", actionID)
	}
	p.table[p.actual][actionID]++
	if actionID == p.actual {
		p.correct++
	}
	p.predicted++
	p.draw()
	return nil
}

func (p *Parity) IsTerminal() bool {
	return p.predicted >= p.nbSamples
}

// Score is the fraction of correct predictions so far.
func (p *Parity) Score() float64 {
	if p.predicted == 0 {
		return 0
	}
	return p.correct / float64(p.predicted)
}

func (p *Parity) ClassificationTable() [][]uint64 {
	out := make([][]uint64, len(p.table))
	for i, row := range p.table {
		out[i] = append([]uint64(nil), row...)
	}
	return out
}

func (p *Parity) Clone() learn.Environment {
	clone, _ := NewParity(p.nbBits, p.nbSamples)
	return clone
}

func (p *Parity) draw() {
	ones := uint64(0)
	for i := 0; i < p.nbBits; i++ {
		bit := float64(p.rng.Intn(2))
		_ = p.state.Set(i, bit)
		ones += uint64(bit)
	}
	p.actual = ones % 2
}
