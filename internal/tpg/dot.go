package tpg

import (
	"fmt"
	"io"
)

// WriteDot renders the graph in Graphviz dot format: teams as circles,
// actions as boxes labelled with their action id, edges labelled with a
// shortened program id. The graph is only read; WriteDot is safe on a
// finalized, post-training graph.
func WriteDot(w io.Writer, g *Graph) error {
	if _, err := fmt.Fprintln(w, "digraph tpg {"); err != nil {
		return fmt.Errorf("write dot header: %w", err)
	}

	for i, v := range g.Vertices() {
		var line string
		if v.IsAction() {
			line = fmt.Sprintf("\tv%d [shape=box, label=\"A%d\"];", i, v.ActionID())
		} else {
			line = fmt.Sprintf("\tv%d [shape=circle, label=\"T\"];", i)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write dot vertex: %w", err)
		}
	}

	index := make(map[*Vertex]int, g.NbVertices())
	for i, v := range g.Vertices() {
		index[v] = i
	}
	for _, e := range g.Edges() {
		label := e.Program().ID()
		if len(label) > 8 {
			label = label[:8]
		}
		if _, err := fmt.Fprintf(w, "\tv%d -> v%d [label=\"%s\"];\n",
			index[e.Source()], index[e.Destination()], label); err != nil {
			return fmt.Errorf("write dot edge: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w, "}"); err != nil {
		return fmt.Errorf("write dot footer: %w", err)
	}
	return nil
}
