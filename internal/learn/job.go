package learn

import (
	"fmt"

	"plegma/internal/tpg"
)

// Job is one unit of evaluation work: an ordered group of roots sharing an
// episode (one root for single-agent tasks, several seats for adversarial
// ones) plus replay parameters. Jobs are rebuilt every generation and own no
// graph state.
type Job struct {
	index      uint64
	iterations uint64
	roots      []*tpg.Vertex
}

func NewJob(index, iterations uint64, roots ...*tpg.Vertex) (*Job, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("job %d requires at least one root", index)
	}
	return &Job{
		index:      index,
		iterations: iterations,
		roots:      append([]*tpg.Vertex(nil), roots...),
	}, nil
}

func (j *Job) Index() uint64 {
	return j.index
}

func (j *Job) Iterations() uint64 {
	return j.iterations
}

func (j *Job) NbRoots() int {
	return len(j.roots)
}

// Root returns the first (or only) root of the job.
func (j *Job) Root() *tpg.Vertex {
	return j.roots[0]
}

// Roots returns the job's roots in seat order.
func (j *Job) Roots() []*tpg.Vertex {
	return append([]*tpg.Vertex(nil), j.roots...)
}
