package program

import (
	"math/rand"
	"testing"

	"plegma/internal/data"
)

func TestLinearExecute(t *testing.T) {
	p := NewLinear(0, []float64{1, 2}, 0.5)
	sources := []data.Source{data.VectorOf(3, 4)}

	got := p.Execute(sources)
	want := 0.5 + 1*3 + 2*4
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLinearExecuteMissingSource(t *testing.T) {
	p := NewLinear(3, []float64{1}, 0.25)
	if got := p.Execute([]data.Source{data.VectorOf(1)}); got != 0.25 {
		t.Fatalf("expected bias fallback, got %v", got)
	}
}

func TestLinearExecuteTruncatesAtSourceEnd(t *testing.T) {
	p := NewLinear(0, []float64{1, 1, 1, 1}, 0)
	sources := []data.Source{data.VectorOf(2, 3)}
	if got := p.Execute(sources); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestLinearDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := NewRandomLinear(rng, 0, 4)
	sources := []data.Source{data.VectorOf(0.1, 0.2, 0.3, 0.4)}

	first := p.Execute(sources)
	for i := 0; i < 10; i++ {
		if got := p.Execute(sources); got != first {
			t.Fatalf("execution not deterministic: %v != %v", got, first)
		}
	}
}

func TestLinearIDsAreUnique(t *testing.T) {
	a := NewLinear(0, nil, 0)
	b := NewLinear(0, nil, 0)
	if a.ID() == b.ID() {
		t.Fatal("expected distinct program ids")
	}
}

func TestRestoreLinearKeepsID(t *testing.T) {
	p := RestoreLinear("prog-1", 0, []float64{1}, 2)
	if p.ID() != "prog-1" {
		t.Fatalf("expected restored id, got %s", p.ID())
	}
}
