// Package tpg holds the tangled program graph: the vertex/edge store and the
// bidding execution engine that turns a graph into action decisions.
package tpg

import (
	"github.com/google/uuid"
)

type VertexKind int

const (
	// Team vertices are decision points with outgoing, program-guarded edges.
	Team VertexKind = iota
	// Action vertices are terminals naming one selectable action/class.
	// An action never has outgoing edges.
	Action
)

func (k VertexKind) String() string {
	switch k {
	case Team:
		return "team"
	case Action:
		return "action"
	default:
		return "unknown"
	}
}

// Vertex is either a team or an action. Equality is identity based; the ID is
// only for debugging, stable ordering and persistence.
type Vertex struct {
	id       string
	kind     VertexKind
	actionID uint64 // meaningful only when kind == Action

	incoming []*Edge
	outgoing []*Edge
}

func newTeam() *Vertex {
	return &Vertex{id: uuid.New().String(), kind: Team}
}

func newAction(actionID uint64) *Vertex {
	return &Vertex{id: uuid.New().String(), kind: Action, actionID: actionID}
}

func (v *Vertex) ID() string {
	return v.id
}

func (v *Vertex) Kind() VertexKind {
	return v.kind
}

func (v *Vertex) IsAction() bool {
	return v.kind == Action
}

func (v *Vertex) IsTeam() bool {
	return v.kind == Team
}

// ActionID returns the action this terminal vertex selects. Zero for teams.
func (v *Vertex) ActionID() uint64 {
	return v.actionID
}

// IsRoot reports whether the vertex currently has no incoming edges. Root
// status is always derived from adjacency, never cached.
func (v *Vertex) IsRoot() bool {
	return len(v.incoming) == 0
}

// IncomingEdges returns a copy of the incoming adjacency list.
func (v *Vertex) IncomingEdges() []*Edge {
	return append([]*Edge(nil), v.incoming...)
}

// OutgoingEdges returns a copy of the outgoing adjacency list, in edge
// creation order. The engine's tie-break depends on this order being stable.
func (v *Vertex) OutgoingEdges() []*Edge {
	return append([]*Edge(nil), v.outgoing...)
}

func (v *Vertex) addIncomingEdge(e *Edge) {
	v.incoming = append(v.incoming, e)
}

func (v *Vertex) addOutgoingEdge(e *Edge) error {
	if v.kind == Action {
		return structuralf("action vertex %s cannot have outgoing edges", v.id)
	}
	v.outgoing = append(v.outgoing, e)
	return nil
}

func (v *Vertex) removeIncomingEdge(e *Edge) {
	v.incoming = removeEdgeFrom(v.incoming, e)
}

func (v *Vertex) removeOutgoingEdge(e *Edge) {
	v.outgoing = removeEdgeFrom(v.outgoing, e)
}

func removeEdgeFrom(edges []*Edge, e *Edge) []*Edge {
	for i, other := range edges {
		if other == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}
