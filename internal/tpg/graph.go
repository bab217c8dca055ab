package tpg

import (
	"plegma/internal/program"
)

// Graph owns every vertex and edge of one tangled program graph. Vertices and
// edges never outlive the graph and are only destroyed through RemoveVertex
// and RemoveEdge, which keep the no-dangling-edge invariant at every step.
//
// Graph is not safe for concurrent mutation. During parallel evaluation the
// structure is read-only; mutation (decimation, regrowth) is single-threaded
// by design.
type Graph struct {
	vertices []*Vertex
	edges    []*Edge

	// Shared program ownership: a program stays alive as long as at least one
	// edge references it. The tally mirrors the reference counting of the
	// underlying design; Go's GC does the actual freeing.
	programRefs map[program.Program]int
}

func NewGraph() *Graph {
	return &Graph{programRefs: make(map[program.Program]int)}
}

// AddTeam creates a new team vertex and registers it in the graph.
func (g *Graph) AddTeam() *Vertex {
	v := newTeam()
	g.vertices = append(g.vertices, v)
	return v
}

// AddAction creates a new action vertex for the given action identifier.
func (g *Graph) AddAction(actionID uint64) *Vertex {
	v := newAction(actionID)
	g.vertices = append(g.vertices, v)
	return v
}

// AddEdge connects src to dst with the given program. It fails with a
// structural error if either endpoint is not in the graph, if src is not a
// team, or if the program is nil.
func (g *Graph) AddEdge(src, dst *Vertex, prog program.Program) (*Edge, error) {
	if prog == nil {
		return nil, structuralf("edge requires a program")
	}
	if !g.contains(src) {
		return nil, structuralf("source vertex not in graph")
	}
	if !g.contains(dst) {
		return nil, structuralf("destination vertex not in graph")
	}

	e := newEdge(src, dst, prog)
	if err := src.addOutgoingEdge(e); err != nil {
		return nil, err
	}
	dst.addIncomingEdge(e)
	g.edges = append(g.edges, e)
	g.programRefs[prog]++
	return e, nil
}

// RemoveEdge detaches the edge from both endpoints and destroys it. Unknown
// edges are a no-op.
func (g *Graph) RemoveEdge(e *Edge) {
	for i, other := range g.edges {
		if other != e {
			continue
		}
		e.src.removeOutgoingEdge(e)
		e.dst.removeIncomingEdge(e)
		g.edges = append(g.edges[:i], g.edges[i+1:]...)
		g.programRefs[e.prog]--
		if g.programRefs[e.prog] <= 0 {
			delete(g.programRefs, e.prog)
		}
		return
	}
}

// RemoveVertex severs and destroys every incident edge, then destroys the
// vertex. Absent vertices are a no-op.
func (g *Graph) RemoveVertex(v *Vertex) {
	idx := -1
	for i, other := range g.vertices {
		if other == v {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	// Copies: RemoveEdge mutates the adjacency lists while we iterate.
	for _, e := range v.IncomingEdges() {
		g.RemoveEdge(e)
	}
	for _, e := range v.OutgoingEdges() {
		g.RemoveEdge(e)
	}
	g.vertices = append(g.vertices[:idx], g.vertices[idx+1:]...)
}

// Contains reports whether the vertex currently belongs to this graph.
func (g *Graph) Contains(v *Vertex) bool {
	return g.contains(v)
}

func (g *Graph) contains(v *Vertex) bool {
	for _, other := range g.vertices {
		if other == v {
			return true
		}
	}
	return false
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	return append([]*Vertex(nil), g.vertices...)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return append([]*Edge(nil), g.edges...)
}

// Roots returns every vertex with no incoming edge, in insertion order.
// The scan is O(vertices); callers iterating repeatedly within one generation
// should hold their own snapshot, which any structural mutation invalidates.
func (g *Graph) Roots() []*Vertex {
	var roots []*Vertex
	for _, v := range g.vertices {
		if v.IsRoot() {
			roots = append(roots, v)
		}
	}
	return roots
}

// NbRoots counts the current roots without allocating a snapshot.
func (g *Graph) NbRoots() int {
	n := 0
	for _, v := range g.vertices {
		if v.IsRoot() {
			n++
		}
	}
	return n
}

func (g *Graph) NbVertices() int {
	return len(g.vertices)
}

func (g *Graph) NbEdges() int {
	return len(g.edges)
}

// NbPrograms counts the distinct programs currently referenced by edges.
func (g *Graph) NbPrograms() int {
	return len(g.programRefs)
}

// ProgramRefCount returns how many edges currently share the given program.
func (g *Graph) ProgramRefCount(p program.Program) int {
	return g.programRefs[p]
}
