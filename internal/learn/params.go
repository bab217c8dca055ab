package learn

import "fmt"

// Params controls one training run. Zero values take documented defaults in
// NewAgent; validation rejects contradictory settings.
type Params struct {
	// NbGenerations bounds the training loop.
	NbGenerations uint64
	// NbIterationsPerPolicyEvaluation is the number of seeded episodes each
	// root's score averages over per generation.
	NbIterationsPerPolicyEvaluation uint64
	// MaxNbActionsPerEval caps actions per episode so evaluation cost stays
	// bounded even on non-terminating environments.
	MaxNbActionsPerEval uint64
	// RatioDeletedRoots is the decimated fraction, in [0, 1).
	RatioDeletedRoots float64
	// ArchiveSize bounds the shared recording archive. Zero disables it.
	ArchiveSize int
	// Workers is the parallel evaluation width. Values above 1 require a
	// cloneable environment and are otherwise reduced to 1.
	Workers int
	// AgentsPerEvaluation is the number of roots sharing one episode.
	// Values above 1 enable adversarial job construction.
	AgentsPerEvaluation int
	// IterationsPerJob is the episode count per adversarial job; each root
	// still totals NbIterationsPerPolicyEvaluation iterations across jobs.
	IterationsPerJob uint64
	// DoValidation adds a validation-mode pass over the generation's best
	// root after decimation.
	DoValidation bool
	// Seed feeds every deterministic random decision of the run.
	Seed int64
}

func (p *Params) applyDefaults() {
	if p.NbGenerations == 0 {
		p.NbGenerations = 100
	}
	if p.NbIterationsPerPolicyEvaluation == 0 {
		p.NbIterationsPerPolicyEvaluation = 1
	}
	if p.MaxNbActionsPerEval == 0 {
		p.MaxNbActionsPerEval = 1000
	}
	if p.Workers <= 0 {
		p.Workers = 1
	}
	if p.AgentsPerEvaluation <= 0 {
		p.AgentsPerEvaluation = 1
	}
	if p.IterationsPerJob == 0 {
		p.IterationsPerJob = p.NbIterationsPerPolicyEvaluation
	}
	if p.ArchiveSize < 0 {
		p.ArchiveSize = 0
	}
}

func (p Params) validate() error {
	if p.RatioDeletedRoots < 0 || p.RatioDeletedRoots >= 1 {
		return fmt.Errorf("ratio of deleted roots must be in [0, 1), got %v", p.RatioDeletedRoots)
	}
	if p.IterationsPerJob > p.NbIterationsPerPolicyEvaluation {
		return fmt.Errorf("iterations per job (%d) cannot exceed iterations per evaluation (%d)",
			p.IterationsPerJob, p.NbIterationsPerPolicyEvaluation)
	}
	return nil
}
