package storage

import (
	"context"

	"plegma/internal/model"
)

// Store persists trained policy graphs and run artifacts.
type Store interface {
	Init(ctx context.Context) error
	SaveGraph(ctx context.Context, graph model.GraphRecord) error
	GetGraph(ctx context.Context, id string) (model.GraphRecord, bool, error)
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveScapeSummary(ctx context.Context, summary model.ScapeSummary) error
	GetScapeSummary(ctx context.Context, name string) (model.ScapeSummary, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
}
