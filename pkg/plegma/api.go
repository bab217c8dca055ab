// Package plegma is the public facade over the training core: it wires an
// environment, a mutator and an agent together, runs training and persists
// the resulting policy graphs and run artifacts.
package plegma

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"plegma/internal/export"
	"plegma/internal/learn"
	"plegma/internal/model"
	"plegma/internal/mutate"
	"plegma/internal/scape"
	"plegma/internal/storage"
	"plegma/internal/tpg"
)

const defaultDBPath = "plegma.db"

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store
}

type RunRequest struct {
	Scape       string
	Population  int
	Generations int
	// Iterations is the seeded episode count each root averages over per
	// generation.
	Iterations  int
	MaxActions  int
	Workers     int
	Agents      int
	Ratio       float64
	ArchiveSize int
	Validation  bool
	Seed        int64
}

type RunSummary struct {
	RunID     string
	Scape     string
	BestScore float64
	// BestByGeneration is each generation's best training score in order.
	BestByGeneration []float64
	// FinalGraphID identifies the persisted end-of-run population graph. The
	// run's best root may predate the last decimation and not appear in it.
	FinalGraphID string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Scape        string
	Seed         int64
	Generations  int
	BestScore    float64
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	RunID  string
	Latest bool
}

type ExportSummary struct {
	RunID   string
	GraphID string
	Dot     string
}

type ScapeSummaryItem struct {
	Name        string
	Description string
	BestScore   float64
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Scape == "" {
		req.Scape = "sticks"
	}
	if req.Population <= 0 {
		req.Population = 50
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.Iterations <= 0 {
		req.Iterations = 5
	}
	if req.MaxActions <= 0 {
		req.MaxActions = 500
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	if req.Ratio <= 0 {
		req.Ratio = 0.5
	}
	if req.ArchiveSize < 0 {
		req.ArchiveSize = 0
	} else if req.ArchiveSize == 0 {
		req.ArchiveSize = 64
	}
	if req.Agents <= 0 {
		req.Agents = 1
		if req.Scape == "sticks-duel" {
			req.Agents = 2
		}
	}

	env, err := scape.New(req.Scape)
	if err != nil {
		return RunSummary{}, err
	}

	sizes := make([]int, 0, len(env.DataSources()))
	for _, src := range env.DataSources() {
		sizes = append(sizes, src.Size())
	}
	mutator, err := mutate.NewRootMutator(mutate.Config{
		NbActions:            env.NbActions(),
		NbRoots:              req.Population,
		MaxInitOutgoingEdges: 5,
		SourceSizes:          sizes,
	})
	if err != nil {
		return RunSummary{}, err
	}

	cfg := learn.Config{
		Environment: env,
		Mutator:     mutator,
		Params: learn.Params{
			NbGenerations:                   uint64(req.Generations),
			NbIterationsPerPolicyEvaluation: uint64(req.Iterations),
			MaxNbActionsPerEval:             uint64(req.MaxActions),
			RatioDeletedRoots:               req.Ratio,
			ArchiveSize:                     req.ArchiveSize,
			Workers:                         req.Workers,
			AgentsPerEvaluation:             req.Agents,
			DoValidation:                    req.Validation,
			Seed:                            req.Seed,
		},
	}
	if _, ok := env.(learn.ClassificationEnvironment); ok && req.Agents <= 1 {
		cfg.Scorer = learn.ClassificationScorer{}
		cfg.Policy = learn.ClassificationPolicy{}
	}

	agent, err := learn.NewAgent(cfg)
	if err != nil {
		return RunSummary{}, err
	}
	result, err := agent.Train(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := fmt.Sprintf("%s-%d-%d", req.Scape, req.Seed, now.Unix())

	graphRecord, err := export.Snapshot(agent.Graph())
	if err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveGraph(ctx, graphRecord); err != nil {
		return RunSummary{}, err
	}

	run := model.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		ID:              runID,
		Environment:     req.Scape,
		Seed:            req.Seed,
		BestScore:       result.BestScore,
		FinalGraphID:    graphRecord.ID,
		CreatedAtUnix:   now.Unix(),
	}
	history := make([]float64, 0, len(result.Summaries))
	for _, s := range result.Summaries {
		run.Generations = append(run.Generations, model.GenerationRecord{
			Generation:      s.Generation,
			NbRoots:         s.NbRoots,
			NbVertices:      s.NbVertices,
			NbEdges:         s.NbEdges,
			BestScore:       s.BestScore,
			MeanScore:       s.MeanScore,
			ValidationScore: s.ValidationScore,
			Validated:       s.Validated,
			ElapsedMillis:   s.Elapsed.Milliseconds(),
		})
		history = append(history, s.BestScore)
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return RunSummary{}, err
	}
	if err := c.updateScapeSummary(ctx, req.Scape, result.BestScore); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		Scape:            req.Scape,
		BestScore:        result.BestScore,
		BestByGeneration: history,
		FinalGraphID:     graphRecord.ID,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAtUnix > runs[j].CreatedAtUnix })
	if len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}

	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunItem{
			RunID:        run.ID,
			CreatedAtUTC: time.Unix(run.CreatedAtUnix, 0).UTC().Format(time.RFC3339),
			Scape:        run.Environment,
			Seed:         run.Seed,
			Generations:  len(run.Generations),
			BestScore:    run.BestScore,
		})
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

// Export renders a run's persisted final population graph in DOT format.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}

	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("run not found: %s", runID)
	}
	if run.FinalGraphID == "" {
		return ExportSummary{}, fmt.Errorf("run %s has no persisted graph", runID)
	}

	record, ok, err := c.store.GetGraph(ctx, run.FinalGraphID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("graph not found: %s", run.FinalGraphID)
	}

	graph, err := export.Restore(record)
	if err != nil {
		return ExportSummary{}, err
	}
	var buf strings.Builder
	if err := tpg.WriteDot(&buf, graph); err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, GraphID: record.ID, Dot: buf.String()}, nil
}

// Scapes lists the registered environments with their stored best scores.
func (c *Client) Scapes(ctx context.Context) ([]ScapeSummaryItem, error) {
	out := make([]ScapeSummaryItem, 0, len(scape.Names()))
	for _, name := range scape.Names() {
		item := ScapeSummaryItem{Name: name, Description: scapeDescription(name)}
		summary, ok, err := c.store.GetScapeSummary(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			item.BestScore = summary.BestScore
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("run id or latest is required")
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs available")
	}
	newest := runs[0]
	for _, run := range runs[1:] {
		if run.CreatedAtUnix > newest.CreatedAtUnix {
			newest = run
		}
	}
	return newest.ID, nil
}

func (c *Client) updateScapeSummary(ctx context.Context, name string, best float64) error {
	summary, ok, err := c.store.GetScapeSummary(ctx, name)
	if err != nil {
		return err
	}
	if ok && summary.BestScore >= best {
		return nil
	}
	return c.store.SaveScapeSummary(ctx, model.ScapeSummary{
		VersionedRecord: storage.CurrentVersion(),
		Name:            name,
		Description:     scapeDescription(name),
		BestScore:       best,
	})
}

func scapeDescription(name string) string {
	switch name {
	case "sticks":
		return "stick game against a random house opponent"
	case "sticks-duel":
		return "two-seat adversarial stick game"
	case "parity":
		return "bit-vector parity classification"
	default:
		return ""
	}
}
