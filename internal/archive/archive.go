// Package archive records program executions observed during training.
// Mutation and novelty heuristics read the recordings; the execution engine
// writes them.
package archive

import (
	"sync"

	"plegma/internal/program"
)

// Recording is one observed program execution: the program, a snapshot of the
// data sources it read, and the resulting bid.
type Recording struct {
	Program program.Program
	Inputs  [][]float64
	Bid     float64
}

// Archive is a bounded, process-scoped ring buffer of recordings. Add is safe
// under concurrent calls from evaluation workers: each append is atomic and
// eviction is exactly oldest-first, which downstream recency heuristics rely
// on. Ordering across workers is not guaranteed.
type Archive struct {
	mu       sync.Mutex
	capacity int
	entries  []Recording
	next     int // ring cursor, valid once len(entries) == capacity
	total    uint64
}

// New creates an archive holding at most capacity recordings. A zero or
// negative capacity yields an archive that drops everything.
func New(capacity int) *Archive {
	if capacity < 0 {
		capacity = 0
	}
	return &Archive{capacity: capacity}
}

// Add appends a recording, evicting the oldest one when full.
func (a *Archive) Add(p program.Program, inputs [][]float64, bid float64) {
	if a.capacity == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	rec := Recording{Program: p, Inputs: inputs, Bid: bid}
	a.total++
	if len(a.entries) < a.capacity {
		a.entries = append(a.entries, rec)
		return
	}
	a.entries[a.next] = rec
	a.next = (a.next + 1) % a.capacity
}

// Len returns the number of recordings currently held.
func (a *Archive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Cap returns the archive capacity.
func (a *Archive) Cap() int {
	return a.capacity
}

// Total returns how many recordings were ever added, including evicted ones.
func (a *Archive) Total() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// Records returns the recordings oldest first.
func (a *Archive) Records() []Recording {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Recording, 0, len(a.entries))
	if len(a.entries) == a.capacity {
		out = append(out, a.entries[a.next:]...)
		out = append(out, a.entries[:a.next]...)
	} else {
		out = append(out, a.entries...)
	}
	return out
}

// Clear drops every recording. Called once at training initialization.
func (a *Archive) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = a.entries[:0]
	a.next = 0
	a.total = 0
}
