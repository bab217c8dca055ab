package learn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"plegma/internal/archive"
	"plegma/internal/tpg"
)

// Config assembles an agent. Environment is mandatory; everything else has a
// working default.
type Config struct {
	// Environment is the task to train on.
	Environment Environment
	// Mutator grows and regrows the root population. Without one the agent
	// trains whatever graph the caller built, shrinking it every generation.
	Mutator Mutator
	// Scorer evaluates one job. Defaults to MeanScoreScorer, or
	// AdversarialScorer when AgentsPerEvaluation exceeds one.
	Scorer JobScorer
	// Policy selects decimation survivors. Defaults to RatioPolicy.
	Policy DecimationPolicy
	Params Params
}

// Agent owns one training run: the graph, the archive, the generational loop.
// Methods are not safe for concurrent use; parallelism lives inside
// EvaluateAllRoots.
type Agent struct {
	env     Environment
	mutator Mutator
	scorer  JobScorer
	policy  DecimationPolicy
	params  Params

	graph *tpg.Graph
	arch  *archive.Archive
	rng   *rand.Rand

	bestRoot  *tpg.Vertex
	bestScore float64
	hasBest   bool
}

// GenerationSummary captures one generation's outcome for reporting.
type GenerationSummary struct {
	Generation      uint64
	NbRoots         int
	NbVertices      int
	NbEdges         int
	BestScore       float64
	MeanScore       float64
	ValidationScore float64
	Validated       bool
	Elapsed         time.Duration
}

// RunResult is the outcome of a full training run.
type RunResult struct {
	Summaries []GenerationSummary
	BestScore float64
	// BestRoot is the best scoring root still present in the graph, nil if
	// decimation later removed it.
	BestRoot *tpg.Vertex
}

func NewAgent(cfg Config) (*Agent, error) {
	if cfg.Environment == nil {
		return nil, errors.New("agent requires an environment")
	}
	cfg.Params.applyDefaults()
	if err := cfg.Params.validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if cfg.Scorer == nil {
		if cfg.Params.AgentsPerEvaluation > 1 {
			cfg.Scorer = AdversarialScorer{}
		} else {
			cfg.Scorer = MeanScoreScorer{}
		}
	}
	if cfg.Params.AgentsPerEvaluation > 1 {
		if _, ok := cfg.Environment.(AdversarialEnvironment); !ok {
			return nil, fmt.Errorf("%d agents per evaluation on non-adversarial environment %T",
				cfg.Params.AgentsPerEvaluation, cfg.Environment)
		}
	}
	if cfg.Policy == nil {
		cfg.Policy = RatioPolicy{}
	}
	return &Agent{
		env:     cfg.Environment,
		mutator: cfg.Mutator,
		scorer:  cfg.Scorer,
		policy:  cfg.Policy,
		params:  cfg.Params,
		graph:   tpg.NewGraph(),
		arch:    archive.New(cfg.Params.ArchiveSize),
		rng:     rand.New(rand.NewSource(cfg.Params.Seed)),
	}, nil
}

func (a *Agent) Graph() *tpg.Graph {
	return a.graph
}

func (a *Agent) Archive() *archive.Archive {
	return a.arch
}

func (a *Agent) Params() Params {
	return a.params
}

// BestRoot returns the best root seen so far and its training score. The
// vertex is nil when the best root did not survive later decimations.
func (a *Agent) BestRoot() (*tpg.Vertex, float64, bool) {
	return a.bestRoot, a.bestScore, a.hasBest
}

// Init resets the run state: fresh graph, cleared archive, reseeded rng, and
// an initial population when a mutator is configured.
func (a *Agent) Init() error {
	a.graph = tpg.NewGraph()
	a.arch.Clear()
	a.rng = rand.New(rand.NewSource(a.params.Seed))
	a.bestRoot = nil
	a.bestScore = 0
	a.hasBest = false
	if a.mutator != nil {
		if err := a.mutator.Init(a.graph, a.rng); err != nil {
			return fmt.Errorf("init population: %w", err)
		}
	}
	return nil
}

// MakeJobs builds the generation's evaluation jobs. Single-agent training
// yields one job per root. Adversarial training shuffles the roots into
// groups of AgentsPerEvaluation per pass, wrapping the last group around, so
// every root plays NbIterationsPerPolicyEvaluation iterations against varying
// opposition.
func (a *Agent) MakeJobs(generation uint64) ([]*Job, error) {
	roots := a.graph.Roots()
	if len(roots) == 0 {
		return nil, errors.New("no roots to evaluate")
	}

	if a.params.AgentsPerEvaluation <= 1 {
		jobs := make([]*Job, 0, len(roots))
		for i, root := range roots {
			job, err := NewJob(uint64(i), a.params.NbIterationsPerPolicyEvaluation, root)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
		}
		return jobs, nil
	}

	seats := a.params.AgentsPerEvaluation
	passes := a.params.NbIterationsPerPolicyEvaluation / a.params.IterationsPerJob
	if passes == 0 {
		passes = 1
	}

	var jobs []*Job
	index := uint64(0)
	for pass := uint64(0); pass < passes; pass++ {
		shuffled := append([]*tpg.Vertex(nil), roots...)
		passRng := rand.New(rand.NewSource(int64(deriveSeed(generation, pass))))
		passRng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for start := 0; start < len(shuffled); start += seats {
			group := make([]*tpg.Vertex, 0, seats)
			for seat := 0; seat < seats; seat++ {
				group = append(group, shuffled[(start+seat)%len(shuffled)])
			}
			job, err := NewJob(index, a.params.IterationsPerJob, group...)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
			index++
		}
	}
	return jobs, nil
}

// EvaluateAllRoots runs every job of the generation and aggregates the
// outcomes per root. Adversarial job results are split by seat before
// aggregation, so each root ends with exactly one entry.
func (a *Agent) EvaluateAllRoots(ctx context.Context, generation uint64, mode Mode) (*Results, error) {
	jobs, err := a.MakeJobs(generation)
	if err != nil {
		return nil, err
	}

	// The archive records only during training.
	var arch *archive.Archive
	if mode == Training {
		arch = a.arch
	}

	outcomes := make([]EvaluationResult, len(jobs))
	workers := a.params.Workers
	cloneable, canClone := a.env.(CloneableEnvironment)
	if workers > 1 && !canClone {
		workers = 1
	}

	if workers <= 1 {
		for i, job := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := a.scorer.ScoreJob(job, a.env, arch, generation, mode, a.params)
			if err != nil {
				return nil, fmt.Errorf("job %d: %w", job.Index(), err)
			}
			outcomes[i] = res
		}
	} else {
		if err := a.evaluateParallel(ctx, jobs, outcomes, cloneable, arch, generation, mode, workers); err != nil {
			return nil, err
		}
	}

	return a.aggregate(jobs, outcomes)
}

func (a *Agent) evaluateParallel(ctx context.Context, jobs []*Job, outcomes []EvaluationResult, env CloneableEnvironment, arch *archive.Archive, generation uint64, mode Mode, workers int) error {
	jobCh := make(chan int)
	errCh := make(chan error, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		replica := env.Clone()
		go func() {
			defer wg.Done()
			for i := range jobCh {
				res, err := a.scorer.ScoreJob(jobs[i], replica, arch, generation, mode, a.params)
				if err != nil {
					errCh <- fmt.Errorf("job %d: %w", jobs[i].Index(), err)
					return
				}
				outcomes[i] = res
			}
		}()
	}

	feed := func() error {
		defer close(jobCh)
		for i := range jobs {
			select {
			case jobCh <- i:
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
	feedErr := feed()
	wg.Wait()
	if feedErr != nil {
		return feedErr
	}
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

func (a *Agent) aggregate(jobs []*Job, outcomes []EvaluationResult) (*Results, error) {
	var order []*tpg.Vertex
	combined := make(map[*tpg.Vertex]EvaluationResult, len(jobs))

	merge := func(root *tpg.Vertex, res EvaluationResult) error {
		prev, ok := combined[root]
		if !ok {
			order = append(order, root)
			combined[root] = res
			return nil
		}
		next, err := prev.Combine(res)
		if err != nil {
			return fmt.Errorf("aggregate root %s: %w", root.ID(), err)
		}
		combined[root] = next
		return nil
	}

	for ji, job := range jobs {
		res := outcomes[ji]
		if adv, ok := res.(AdversarialResult); ok && job.NbRoots() > 1 {
			for seat, root := range job.Roots() {
				score, err := adv.ScoreForSeat(seat)
				if err != nil {
					return nil, err
				}
				if err := merge(root, NewScoreResult(score, adv.Iterations())); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := merge(job.Root(), res); err != nil {
			return nil, err
		}
	}

	results := NewResults()
	for _, root := range order {
		results.Insert(combined[root], root)
	}
	return results, nil
}

// DecimateWorstRoots removes the worst-scoring fraction of the current roots.
// Action roots are never removed; they only lose their challengers.
func (a *Agent) DecimateWorstRoots(results *Results) error {
	totalRoots := a.graph.NbRoots()
	toDelete := int(math.Floor(a.params.RatioDeletedRoots * float64(totalRoots)))
	toKeep := totalRoots - toDelete

	keep, err := a.policy.SelectSurvivors(results, toKeep)
	if err != nil {
		return err
	}

	for _, root := range a.graph.Roots() {
		if root.IsAction() {
			continue
		}
		if _, ok := keep[root]; !ok {
			a.graph.RemoveVertex(root)
		}
	}
	return nil
}

// TrainOneGeneration evaluates every root, decimates the losers and regrows
// the population.
func (a *Agent) TrainOneGeneration(ctx context.Context, generation uint64) (GenerationSummary, error) {
	start := time.Now()

	results, err := a.EvaluateAllRoots(ctx, generation, Training)
	if err != nil {
		return GenerationSummary{}, fmt.Errorf("generation %d: %w", generation, err)
	}
	best, err := results.Best()
	if err != nil {
		return GenerationSummary{}, fmt.Errorf("generation %d: %w", generation, err)
	}
	if !a.hasBest || best.Result.Score() > a.bestScore {
		a.bestRoot = best.Root
		a.bestScore = best.Result.Score()
		a.hasBest = true
	}

	mean := 0.0
	for _, entry := range results.Entries() {
		mean += entry.Result.Score()
	}
	mean /= float64(results.Len())

	if err := a.DecimateWorstRoots(results); err != nil {
		return GenerationSummary{}, fmt.Errorf("generation %d: %w", generation, err)
	}
	if a.bestRoot != nil && !a.graph.Contains(a.bestRoot) {
		a.bestRoot = nil
	}

	summary := GenerationSummary{
		Generation: generation,
		BestScore:  best.Result.Score(),
		MeanScore:  mean,
	}

	if a.params.DoValidation && a.graph.Contains(best.Root) {
		score, err := a.validateRoot(ctx, best.Root, generation)
		if err != nil {
			return GenerationSummary{}, fmt.Errorf("generation %d validation: %w", generation, err)
		}
		summary.ValidationScore = score
		summary.Validated = true
	}

	if a.mutator != nil {
		if err := a.mutator.Populate(a.graph, a.rng); err != nil {
			return GenerationSummary{}, fmt.Errorf("generation %d regrowth: %w", generation, err)
		}
	}

	summary.NbRoots = a.graph.NbRoots()
	summary.NbVertices = a.graph.NbVertices()
	summary.NbEdges = a.graph.NbEdges()
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// validateRoot replays the root in validation mode, without archive
// recording. Adversarial environments see the root in every seat.
func (a *Agent) validateRoot(ctx context.Context, root *tpg.Vertex, generation uint64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	seats := a.params.AgentsPerEvaluation
	group := make([]*tpg.Vertex, seats)
	for i := range group {
		group[i] = root
	}
	job, err := NewJob(0, a.params.NbIterationsPerPolicyEvaluation, group...)
	if err != nil {
		return 0, err
	}
	res, err := a.scorer.ScoreJob(job, a.env, nil, generation, Validation, a.params)
	if err != nil {
		return 0, err
	}
	return res.Score(), nil
}

// Train runs the full generational loop and reports per-generation summaries.
func (a *Agent) Train(ctx context.Context) (RunResult, error) {
	if err := a.Init(); err != nil {
		return RunResult{}, err
	}
	run := RunResult{Summaries: make([]GenerationSummary, 0, a.params.NbGenerations)}
	for gen := uint64(0); gen < a.params.NbGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		summary, err := a.TrainOneGeneration(ctx, gen)
		if err != nil {
			return run, err
		}
		run.Summaries = append(run.Summaries, summary)
	}
	run.BestScore = a.bestScore
	run.BestRoot = a.bestRoot
	return run, nil
}
