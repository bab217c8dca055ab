package tpg

import (
	"github.com/google/uuid"

	"plegma/internal/program"
)

// Edge is a directed link from a team to any vertex, carrying a shared
// program. Edge identity is independent of its endpoints; the ID exists for
// debugging and persistence only.
type Edge struct {
	id   string
	src  *Vertex
	dst  *Vertex
	prog program.Program
}

func newEdge(src, dst *Vertex, prog program.Program) *Edge {
	return &Edge{id: uuid.New().String(), src: src, dst: dst, prog: prog}
}

func (e *Edge) ID() string {
	return e.id
}

func (e *Edge) Source() *Vertex {
	return e.src
}

func (e *Edge) Destination() *Vertex {
	return e.dst
}

func (e *Edge) Program() program.Program {
	return e.prog
}
