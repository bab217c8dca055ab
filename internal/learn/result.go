package learn

import (
	"errors"
	"fmt"

	"plegma/internal/tpg"
)

// ErrTypeMismatch reports an evaluation result of the wrong variant for the
// operation at hand, e.g. classification decimation over plain score results.
var ErrTypeMismatch = errors.New("evaluation result type mismatch")

// ErrEmptyResults reports an operation over an empty result set.
var ErrEmptyResults = errors.New("empty evaluation results")

// EvaluationResult is the immutable outcome of evaluating one root over one
// job: a scalar score and the number of iterations it aggregates. Results
// for the same root across jobs combine associatively, weighted by
// iteration count.
type EvaluationResult interface {
	Score() float64
	Iterations() uint64
	Combine(other EvaluationResult) (EvaluationResult, error)
}

// ScoreResult is the plain scalar variant.
type ScoreResult struct {
	score      float64
	iterations uint64
}

func NewScoreResult(score float64, iterations uint64) ScoreResult {
	return ScoreResult{score: score, iterations: iterations}
}

func (r ScoreResult) Score() float64 {
	return r.score
}

func (r ScoreResult) Iterations() uint64 {
	return r.iterations
}

func (r ScoreResult) Combine(other EvaluationResult) (EvaluationResult, error) {
	o, ok := other.(ScoreResult)
	if !ok {
		return nil, fmt.Errorf("combine %T with %T: %w", r, other, ErrTypeMismatch)
	}
	total := r.iterations + o.iterations
	if total == 0 {
		return ScoreResult{}, nil
	}
	score := (r.score*float64(r.iterations) + o.score*float64(o.iterations)) / float64(total)
	return ScoreResult{score: score, iterations: total}, nil
}

// ClassificationResult extends the scalar score with a fixed-length ordered
// per-class score sequence; the scalar is the mean over classes.
type ClassificationResult struct {
	perClass   []float64
	score      float64
	iterations uint64
}

func NewClassificationResult(perClass []float64, iterations uint64) ClassificationResult {
	scores := append([]float64(nil), perClass...)
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	mean := 0.0
	if len(scores) > 0 {
		mean = sum / float64(len(scores))
	}
	return ClassificationResult{perClass: scores, score: mean, iterations: iterations}
}

func (r ClassificationResult) Score() float64 {
	return r.score
}

func (r ClassificationResult) Iterations() uint64 {
	return r.iterations
}

func (r ClassificationResult) NbClasses() int {
	return len(r.perClass)
}

// ScoreForClass returns the score of one class.
func (r ClassificationResult) ScoreForClass(classIdx int) (float64, error) {
	if classIdx < 0 || classIdx >= len(r.perClass) {
		return 0, fmt.Errorf("class %d of %d: out of range", classIdx, len(r.perClass))
	}
	return r.perClass[classIdx], nil
}

func (r ClassificationResult) ScoresPerClass() []float64 {
	return append([]float64(nil), r.perClass...)
}

func (r ClassificationResult) Combine(other EvaluationResult) (EvaluationResult, error) {
	o, ok := other.(ClassificationResult)
	if !ok {
		return nil, fmt.Errorf("combine %T with %T: %w", r, other, ErrTypeMismatch)
	}
	if len(o.perClass) != len(r.perClass) {
		return nil, fmt.Errorf("combine %d classes with %d: %w", len(r.perClass), len(o.perClass), ErrTypeMismatch)
	}
	total := r.iterations + o.iterations
	if total == 0 {
		return ClassificationResult{perClass: make([]float64, len(r.perClass))}, nil
	}
	merged := make([]float64, len(r.perClass))
	for i := range merged {
		merged[i] = (r.perClass[i]*float64(r.iterations) + o.perClass[i]*float64(o.iterations)) / float64(total)
	}
	return NewClassificationResult(merged, total), nil
}

// AdversarialResult carries one score per root of a multi-agent job, in seat
// order. The scalar score is the seat mean; callers split the result per
// seat before aggregating by root.
type AdversarialResult struct {
	perRoot    []float64
	iterations uint64
}

func NewAdversarialResult(perRoot []float64, iterations uint64) AdversarialResult {
	return AdversarialResult{perRoot: append([]float64(nil), perRoot...), iterations: iterations}
}

func (r AdversarialResult) Score() float64 {
	if len(r.perRoot) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range r.perRoot {
		sum += s
	}
	return sum / float64(len(r.perRoot))
}

func (r AdversarialResult) Iterations() uint64 {
	return r.iterations
}

func (r AdversarialResult) NbSeats() int {
	return len(r.perRoot)
}

func (r AdversarialResult) ScoreForSeat(seat int) (float64, error) {
	if seat < 0 || seat >= len(r.perRoot) {
		return 0, fmt.Errorf("seat %d of %d: out of range", seat, len(r.perRoot))
	}
	return r.perRoot[seat], nil
}

func (r AdversarialResult) Combine(other EvaluationResult) (EvaluationResult, error) {
	o, ok := other.(AdversarialResult)
	if !ok {
		return nil, fmt.Errorf("combine %T with %T: %w", r, other, ErrTypeMismatch)
	}
	if len(o.perRoot) != len(r.perRoot) {
		return nil, fmt.Errorf("combine %d seats with %d: %w", len(r.perRoot), len(o.perRoot), ErrTypeMismatch)
	}
	total := r.iterations + o.iterations
	if total == 0 {
		return AdversarialResult{perRoot: make([]float64, len(r.perRoot))}, nil
	}
	merged := make([]float64, len(r.perRoot))
	for i := range merged {
		merged[i] = (r.perRoot[i]*float64(r.iterations) + o.perRoot[i]*float64(o.iterations)) / float64(total)
	}
	return AdversarialResult{perRoot: merged, iterations: total}, nil
}

// ResultEntry pairs one aggregated result with the root it scored.
type ResultEntry struct {
	Result EvaluationResult
	Root   *tpg.Vertex
}

// Results is an ordered multi-valued mapping from result to root, sorted
// ascending by score with ties kept in insertion order. It is keyed by
// result, not root, so one root may legitimately appear several times before
// aggregation collapses it.
type Results struct {
	entries []ResultEntry
}

func NewResults() *Results {
	return &Results{}
}

// Insert places the entry at its sorted position. Equal scores order by
// insertion, matching multimap semantics.
func (r *Results) Insert(result EvaluationResult, root *tpg.Vertex) {
	pos := len(r.entries)
	for pos > 0 && r.entries[pos-1].Result.Score() > result.Score() {
		pos--
	}
	r.entries = append(r.entries, ResultEntry{})
	copy(r.entries[pos+1:], r.entries[pos:])
	r.entries[pos] = ResultEntry{Result: result, Root: root}
}

func (r *Results) Len() int {
	return len(r.entries)
}

// Entries returns the entries in ascending score order.
func (r *Results) Entries() []ResultEntry {
	return append([]ResultEntry(nil), r.entries...)
}

// Best returns the highest scoring entry.
func (r *Results) Best() (ResultEntry, error) {
	if len(r.entries) == 0 {
		return ResultEntry{}, ErrEmptyResults
	}
	return r.entries[len(r.entries)-1], nil
}
