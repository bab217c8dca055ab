package learn

import (
	"errors"
	"math"
	"testing"

	"plegma/internal/tpg"
)

func TestMeanScoreScorerAveragesIterations(t *testing.T) {
	g := tpg.NewGraph()
	root, err := addRoot(g, g.AddAction(2), 1.0)
	if err != nil {
		t.Fatalf("build root: %v", err)
	}
	job, err := NewJob(0, 2, root)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	env := newStepEnv(3, 2)
	p := Params{MaxNbActionsPerEval: 10}
	res, err := MeanScoreScorer{}.ScoreJob(job, env, nil, 0, Training, p)
	if err != nil {
		t.Fatalf("score job: %v", err)
	}
	// Two steps of action 2 per episode.
	if res.Score() != 4 {
		t.Fatalf("expected score 4, got %v", res.Score())
	}
	if res.Iterations() != 2 {
		t.Fatalf("expected 2 iterations, got %d", res.Iterations())
	}
	if env.lastMode != Training {
		t.Fatalf("expected training reset, got %v", env.lastMode)
	}
	if env.lastSeed != deriveSeed(0, 1) {
		t.Fatal("expected the derived seed of the last iteration")
	}
}

func TestMeanScoreScorerHonorsActionBudget(t *testing.T) {
	g := tpg.NewGraph()
	root, err := addRoot(g, g.AddAction(1), 1.0)
	if err != nil {
		t.Fatalf("build root: %v", err)
	}
	job, err := NewJob(0, 1, root)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	// The environment would run 100 steps; the budget stops it at 3.
	env := newStepEnv(2, 100)
	p := Params{MaxNbActionsPerEval: 3}
	res, err := MeanScoreScorer{}.ScoreJob(job, env, nil, 0, Training, p)
	if err != nil {
		t.Fatalf("score job: %v", err)
	}
	if res.Score() != 3 {
		t.Fatalf("expected 3 budgeted steps of action 1, got score %v", res.Score())
	}
}

func TestClassificationScorerComputesPerClassF1(t *testing.T) {
	env := newTableEnv([][]uint64{
		{3, 1},
		{2, 4},
	}, 1)

	g := tpg.NewGraph()
	root, err := addRoot(g, g.AddAction(0), 1.0)
	if err != nil {
		t.Fatalf("build root: %v", err)
	}
	job, err := NewJob(0, 1, root)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	p := Params{MaxNbActionsPerEval: 5}
	res, err := ClassificationScorer{}.ScoreJob(job, env, nil, 0, Training, p)
	if err != nil {
		t.Fatalf("score job: %v", err)
	}
	cr, ok := res.(ClassificationResult)
	if !ok {
		t.Fatalf("expected ClassificationResult, got %T", res)
	}

	wantClass0 := 2.0 / 3.0
	wantClass1 := 8.0 / 11.0
	got0, _ := cr.ScoreForClass(0)
	got1, _ := cr.ScoreForClass(1)
	if math.Abs(got0-wantClass0) > 1e-12 || math.Abs(got1-wantClass1) > 1e-12 {
		t.Fatalf("unexpected F1 scores: %v, %v", got0, got1)
	}
	if math.Abs(cr.Score()-(wantClass0+wantClass1)/2) > 1e-12 {
		t.Fatalf("scalar must be the class mean, got %v", cr.Score())
	}
}

func TestClassificationScorerZeroTruePositivesScoreZero(t *testing.T) {
	env := newTableEnv([][]uint64{
		{0, 1},
		{0, 5},
	}, 1)

	g := tpg.NewGraph()
	root, err := addRoot(g, g.AddAction(0), 1.0)
	if err != nil {
		t.Fatalf("build root: %v", err)
	}
	job, err := NewJob(0, 1, root)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	res, err := ClassificationScorer{}.ScoreJob(job, env, nil, 0, Training, Params{MaxNbActionsPerEval: 5})
	if err != nil {
		t.Fatalf("score job: %v", err)
	}
	got, _ := res.(ClassificationResult).ScoreForClass(0)
	if got != 0 {
		t.Fatalf("expected 0 for a class never predicted right, got %v", got)
	}
}

func TestClassificationScorerRejectsPlainEnvironment(t *testing.T) {
	g := tpg.NewGraph()
	root, err := addRoot(g, g.AddAction(0), 1.0)
	if err != nil {
		t.Fatalf("build root: %v", err)
	}
	job, err := NewJob(0, 1, root)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	_, err = ClassificationScorer{}.ScoreJob(job, newStepEnv(2, 1), nil, 0, Training, Params{MaxNbActionsPerEval: 5})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestAdversarialScorerAlternatesSeats(t *testing.T) {
	g := tpg.NewGraph()
	r0, err := addRoot(g, g.AddAction(2), 1.0)
	if err != nil {
		t.Fatalf("build root: %v", err)
	}
	r1, err := addRoot(g, g.AddAction(3), 1.0)
	if err != nil {
		t.Fatalf("build root: %v", err)
	}
	job, err := NewJob(0, 1, r0, r1)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	env := newDuelEnv(4, 4)
	res, err := AdversarialScorer{}.ScoreJob(job, env, nil, 0, Training, Params{MaxNbActionsPerEval: 10})
	if err != nil {
		t.Fatalf("score job: %v", err)
	}
	ar, ok := res.(AdversarialResult)
	if !ok {
		t.Fatalf("expected AdversarialResult, got %T", res)
	}
	// Seat 0 plays action 2 twice, seat 1 plays action 3 twice.
	if s0, _ := ar.ScoreForSeat(0); s0 != 4 {
		t.Fatalf("expected seat 0 score 4, got %v", s0)
	}
	if s1, _ := ar.ScoreForSeat(1); s1 != 6 {
		t.Fatalf("expected seat 1 score 6, got %v", s1)
	}
}

func TestAdversarialScorerRejectsPlainEnvironment(t *testing.T) {
	g := tpg.NewGraph()
	root, err := addRoot(g, g.AddAction(0), 1.0)
	if err != nil {
		t.Fatalf("build root: %v", err)
	}
	job, err := NewJob(0, 1, root)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	_, err = AdversarialScorer{}.ScoreJob(job, newStepEnv(2, 1), nil, 0, Training, Params{MaxNbActionsPerEval: 5})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}
