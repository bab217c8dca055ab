// Package export converts between live policy graphs and their persisted
// records. Program sharing survives the round trip: edges referencing one
// program record share a single restored program instance.
package export

import (
	"fmt"

	"github.com/google/uuid"

	"plegma/internal/model"
	"plegma/internal/program"
	"plegma/internal/storage"
	"plegma/internal/tpg"
)

// Snapshot captures the graph as a versioned record under a fresh id.
func Snapshot(g *tpg.Graph) (model.GraphRecord, error) {
	record := model.GraphRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              uuid.New().String(),
	}

	for _, v := range g.Vertices() {
		record.Vertices = append(record.Vertices, model.VertexRecord{
			ID:       v.ID(),
			Kind:     v.Kind().String(),
			ActionID: v.ActionID(),
		})
	}

	seen := make(map[string]bool)
	for _, e := range g.Edges() {
		prog := e.Program()
		record.Edges = append(record.Edges, model.EdgeRecord{
			ID:            e.ID(),
			SourceID:      e.Source().ID(),
			DestinationID: e.Destination().ID(),
			ProgramID:     prog.ID(),
		})
		if seen[prog.ID()] {
			continue
		}
		seen[prog.ID()] = true

		linear, ok := prog.(*program.Linear)
		if !ok {
			return model.GraphRecord{}, fmt.Errorf("program %s: cannot persist %T", prog.ID(), prog)
		}
		record.Programs = append(record.Programs, model.ProgramRecord{
			ID:          linear.ID(),
			SourceIndex: linear.SourceIndex,
			Weights:     append([]float64(nil), linear.Weights...),
			Bias:        linear.Bias,
		})
	}
	return record, nil
}

// Restore rebuilds a live graph from its record.
func Restore(record model.GraphRecord) (*tpg.Graph, error) {
	g := tpg.NewGraph()

	vertices := make(map[string]*tpg.Vertex, len(record.Vertices))
	for _, vr := range record.Vertices {
		switch vr.Kind {
		case "team":
			vertices[vr.ID] = g.AddTeam()
		case "action":
			vertices[vr.ID] = g.AddAction(vr.ActionID)
		default:
			return nil, fmt.Errorf("vertex %s: unknown kind %q", vr.ID, vr.Kind)
		}
	}

	programs := make(map[string]program.Program, len(record.Programs))
	for _, pr := range record.Programs {
		programs[pr.ID] = program.RestoreLinear(pr.ID, pr.SourceIndex, pr.Weights, pr.Bias)
	}

	for _, er := range record.Edges {
		src, ok := vertices[er.SourceID]
		if !ok {
			return nil, fmt.Errorf("edge %s: unknown source %s", er.ID, er.SourceID)
		}
		dst, ok := vertices[er.DestinationID]
		if !ok {
			return nil, fmt.Errorf("edge %s: unknown destination %s", er.ID, er.DestinationID)
		}
		prog, ok := programs[er.ProgramID]
		if !ok {
			return nil, fmt.Errorf("edge %s: unknown program %s", er.ID, er.ProgramID)
		}
		if _, err := g.AddEdge(src, dst, prog); err != nil {
			return nil, fmt.Errorf("edge %s: %w", er.ID, err)
		}
	}
	return g, nil
}
