package learn

import (
	"fmt"

	"plegma/internal/archive"
	"plegma/internal/tpg"
)

// JobScorer runs one job against an environment and summarizes it as an
// evaluation result. Implementations must be stateless so one scorer can be
// shared by concurrent workers, each holding its own environment replica.
type JobScorer interface {
	Name() string
	ScoreJob(job *Job, env Environment, arch *archive.Archive, generation uint64, mode Mode, p Params) (EvaluationResult, error)
}

// MeanScoreScorer averages the environment score of a single root over the
// job's seeded iterations.
type MeanScoreScorer struct{}

func (MeanScoreScorer) Name() string {
	return "mean_score"
}

func (MeanScoreScorer) ScoreJob(job *Job, env Environment, arch *archive.Archive, generation uint64, mode Mode, p Params) (EvaluationResult, error) {
	eng := tpg.NewEngine(env.DataSources(), arch)
	root := job.Root()
	iterations := job.Iterations()

	total := 0.0
	for iter := uint64(0); iter < iterations; iter++ {
		env.Reset(deriveSeed(generation, iter), mode)
		if err := playEpisode(eng, root, env, p.MaxNbActionsPerEval); err != nil {
			return nil, err
		}
		total += env.Score()
	}
	return NewScoreResult(total/float64(iterations), iterations), nil
}

// ClassificationScorer scores a single root by per-class F1 over the
// environment's classification table, averaged over iterations. The scalar
// score of the produced result is the mean F1 across classes.
type ClassificationScorer struct{}

func (ClassificationScorer) Name() string {
	return "classification_f1"
}

func (ClassificationScorer) ScoreJob(job *Job, env Environment, arch *archive.Archive, generation uint64, mode Mode, p Params) (EvaluationResult, error) {
	ce, ok := env.(ClassificationEnvironment)
	if !ok {
		return nil, fmt.Errorf("classification scoring over %T: %w", env, ErrTypeMismatch)
	}

	eng := tpg.NewEngine(env.DataSources(), arch)
	root := job.Root()
	iterations := job.Iterations()
	perClass := make([]float64, env.NbActions())

	for iter := uint64(0); iter < iterations; iter++ {
		env.Reset(deriveSeed(generation, iter), mode)
		if err := playEpisode(eng, root, env, p.MaxNbActionsPerEval); err != nil {
			return nil, err
		}
		table := ce.ClassificationTable()
		for classIdx := range table {
			perClass[classIdx] += fScore(table, classIdx)
		}
	}
	for i := range perClass {
		perClass[i] /= float64(iterations)
	}
	return NewClassificationResult(perClass, iterations), nil
}

// fScore computes the F1 score of one class from an [actual][predicted]
// outcome table. Zero true positives score 0 by convention.
func fScore(table [][]uint64, classIdx int) float64 {
	truePositive := table[classIdx][classIdx]
	if truePositive == 0 {
		return 0
	}
	falseNegative := uint64(0)
	for _, count := range table[classIdx] {
		falseNegative += count
	}
	falseNegative -= truePositive
	falsePositive := uint64(0)
	for _, row := range table {
		falsePositive += row[classIdx]
	}
	falsePositive -= truePositive

	recall := float64(truePositive) / float64(truePositive+falseNegative)
	precision := float64(truePositive) / float64(truePositive+falsePositive)
	return 2 * (precision * recall) / (precision + recall)
}

// AdversarialScorer plays every root of the job in the same episode, seats
// acting round-robin, and scores each seat from the environment's per-seat
// scores.
type AdversarialScorer struct{}

func (AdversarialScorer) Name() string {
	return "adversarial"
}

func (AdversarialScorer) ScoreJob(job *Job, env Environment, arch *archive.Archive, generation uint64, mode Mode, p Params) (EvaluationResult, error) {
	ae, ok := env.(AdversarialEnvironment)
	if !ok {
		return nil, fmt.Errorf("adversarial scoring over %T: %w", env, ErrTypeMismatch)
	}

	eng := tpg.NewEngine(env.DataSources(), arch)
	roots := job.Roots()
	iterations := job.Iterations()
	perRoot := make([]float64, len(roots))

	for iter := uint64(0); iter < iterations; iter++ {
		env.Reset(deriveSeed(generation, iter), mode)
		nbActions := uint64(0)
		for !env.IsTerminal() && nbActions < p.MaxNbActionsPerEval {
			seat := int(nbActions) % len(roots)
			if err := stepRoot(eng, roots[seat], env); err != nil {
				return nil, err
			}
			nbActions++
		}
		scores := ae.Scores()
		if len(scores) < len(roots) {
			return nil, fmt.Errorf("environment returned %d seat scores for %d roots: %w",
				len(scores), len(roots), ErrTypeMismatch)
		}
		for i := range roots {
			perRoot[i] += scores[i]
		}
	}
	for i := range perRoot {
		perRoot[i] /= float64(iterations)
	}
	return NewAdversarialResult(perRoot, iterations), nil
}

// playEpisode runs a single-root episode until the environment terminates or
// the action budget runs out.
func playEpisode(eng *tpg.Engine, root *tpg.Vertex, env Environment, maxActions uint64) error {
	nbActions := uint64(0)
	for !env.IsTerminal() && nbActions < maxActions {
		if err := stepRoot(eng, root, env); err != nil {
			return err
		}
		nbActions++
	}
	return nil
}

func stepRoot(eng *tpg.Engine, root *tpg.Vertex, env Environment) error {
	trace, err := eng.ExecuteFromRoot(root)
	if err != nil {
		return err
	}
	action := trace[len(trace)-1]
	if err := env.DoAction(action.ActionID()); err != nil {
		return fmt.Errorf("apply action %d: %w", action.ActionID(), err)
	}
	return nil
}
