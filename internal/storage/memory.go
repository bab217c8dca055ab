package storage

import (
	"context"
	"sort"
	"sync"

	"plegma/internal/model"
)

// MemoryStore is the default, process-local backend.
type MemoryStore struct {
	mu      sync.RWMutex
	graphs  map[string]model.GraphRecord
	runs    map[string]model.RunRecord
	scapes  map[string]model.ScapeSummary
	history map[string][]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graphs = make(map[string]model.GraphRecord)
	s.runs = make(map[string]model.RunRecord)
	s.scapes = make(map[string]model.ScapeSummary)
	s.history = make(map[string][]float64)
	return nil
}

func (s *MemoryStore) SaveGraph(_ context.Context, graph model.GraphRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graphs[graph.ID] = graph
	return nil
}

func (s *MemoryStore) GetGraph(_ context.Context, id string) (model.GraphRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	graph, ok := s.graphs[id]
	return graph, ok, nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

func (s *MemoryStore) SaveScapeSummary(_ context.Context, summary model.ScapeSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scapes[summary.Name] = summary
	return nil
}

func (s *MemoryStore) GetScapeSummary(_ context.Context, name string) (model.ScapeSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.scapes[name]
	return summary, ok, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}
