package data

import (
	"errors"
	"fmt"
)

// ErrRange reports an access outside a source's declared bounds.
var ErrRange = errors.New("index out of range")

// Source exposes one block of observable values to programs. Environments own
// their sources and update them in place on reset/doAction; programs only read.
type Source interface {
	Size() int
	Get(i int) (float64, error)
	// Snapshot copies the current values. Used by the archive so recordings
	// stay stable after the environment moves on.
	Snapshot() []float64
}

// Vector is a flat float64 source backed by a mutable slice.
type Vector struct {
	values []float64
}

func NewVector(size int) *Vector {
	return &Vector{values: make([]float64, size)}
}

func VectorOf(values ...float64) *Vector {
	v := &Vector{values: make([]float64, len(values))}
	copy(v.values, values)
	return v
}

func (v *Vector) Size() int {
	return len(v.values)
}

func (v *Vector) Get(i int) (float64, error) {
	if i < 0 || i >= len(v.values) {
		return 0, fmt.Errorf("get %d of %d: %w", i, len(v.values), ErrRange)
	}
	return v.values[i], nil
}

func (v *Vector) Set(i int, value float64) error {
	if i < 0 || i >= len(v.values) {
		return fmt.Errorf("set %d of %d: %w", i, len(v.values), ErrRange)
	}
	v.values[i] = value
	return nil
}

// Fill overwrites the vector with the given values.
func (v *Vector) Fill(values []float64) error {
	if len(values) != len(v.values) {
		return fmt.Errorf("fill %d values into %d: %w", len(values), len(v.values), ErrRange)
	}
	copy(v.values, values)
	return nil
}

func (v *Vector) Snapshot() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// SnapshotAll copies every source, in order.
func SnapshotAll(sources []Source) [][]float64 {
	out := make([][]float64, 0, len(sources))
	for _, src := range sources {
		out = append(out, src.Snapshot())
	}
	return out
}
