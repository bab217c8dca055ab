package scape

import (
	"fmt"
	"math/rand"

	"plegma/internal/data"
	"plegma/internal/learn"
)

const (
	sticksInitial = 21
	sticksMaxTake = 3
)

// Sticks is the stick-pulling game: players alternate removing one to three
// sticks from a shared pile and whoever takes the last stick loses. With two
// seats it is a pure adversarial environment; with one seat the environment
// itself plays the opposing moves from the reset seed.
type Sticks struct {
	seats     int
	remaining int
	turn      int
	over      bool
	scores    []float64
	rng       *rand.Rand
	state     *data.Vector
}

func NewSticks(seats int) (*Sticks, error) {
	if seats != 1 && seats != 2 {
		return nil, fmt.Errorf("sticks supports 1 or 2 seats, got %d", seats)
	}
	s := &Sticks{
		seats: seats,
		state: data.NewVector(1),
	}
	s.Reset(0, learn.Training)
	return s, nil
}

func (s *Sticks) Reset(seed uint64, _ learn.Mode) {
	s.remaining = sticksInitial
	s.turn = 0
	s.over = false
	s.scores = make([]float64, 2)
	s.rng = rand.New(rand.NewSource(int64(seed)))
	s.syncState()
}

func (s *Sticks) DataSources() []data.Source {
	return []data.Source{s.state}
}

// NbActions maps action id i to removing i+1 sticks.
func (s *Sticks) NbActions() uint64 {
	return sticksMaxTake
}

func (s *Sticks) DoAction(actionID uint64) error {
	if actionID >= sticksMaxTake {
		return fmt.Errorf("action %d of %d: out of range", actionID, sticksMaxTake)
	}
	if s.over {
		return nil
	}
	s.take(int(actionID) + 1)
	if s.seats == 1 && !s.over {
		// House opponent: random legal move.
		s.take(1 + s.rng.Intn(min(sticksMaxTake, s.remaining)))
	}
	s.syncState()
	return nil
}

// take removes sticks for the seat whose turn it is. Taking the last stick
// loses the game for that seat.
func (s *Sticks) take(n int) {
	if n > s.remaining {
		n = s.remaining
	}
	s.remaining -= n
	if s.remaining == 0 {
		s.over = true
		loser := s.turn % 2
		s.scores[loser] = -1
		s.scores[1-loser] = 1
	}
	s.turn++
}

func (s *Sticks) IsTerminal() bool {
	return s.over
}

// Score reports seat 0's outcome: 1 for a win, -1 for a loss.
func (s *Sticks) Score() float64 {
	return s.scores[0]
}

// Scores reports the outcome per seat in acting order.
func (s *Sticks) Scores() []float64 {
	return append([]float64(nil), s.scores...)
}

func (s *Sticks) Clone() learn.Environment {
	clone, _ := NewSticks(s.seats)
	return clone
}

func (s *Sticks) syncState() {
	_ = s.state.Set(0, float64(s.remaining))
}
