package learn

import (
	"fmt"
	"sort"

	"plegma/internal/tpg"
)

// DecimationPolicy picks which roots survive a decimation round. Policies
// only select; the agent removes the losers from the graph.
type DecimationPolicy interface {
	Name() string
	// SelectSurvivors returns the set of roots to keep, at most toKeep of
	// them, drawn from the generation's results.
	SelectSurvivors(results *Results, toKeep int) (map[*tpg.Vertex]struct{}, error)
}

// RatioPolicy keeps the highest scoring roots.
type RatioPolicy struct{}

func (RatioPolicy) Name() string {
	return "best_score"
}

func (RatioPolicy) SelectSurvivors(results *Results, toKeep int) (map[*tpg.Vertex]struct{}, error) {
	if results.Len() == 0 {
		return nil, fmt.Errorf("decimation: %w", ErrEmptyResults)
	}
	keep := make(map[*tpg.Vertex]struct{}, toKeep)
	fillByScore(keep, results.Entries(), toKeep)
	return keep, nil
}

// ClassificationPolicy reserves part of the survivor budget for the roots
// best at each individual class before the general ranking fills the rest.
// This protects class specialists whose mean score would not save them.
type ClassificationPolicy struct{}

func (ClassificationPolicy) Name() string {
	return "classification_quota"
}

func (ClassificationPolicy) SelectSurvivors(results *Results, toKeep int) (map[*tpg.Vertex]struct{}, error) {
	if results.Len() == 0 {
		return nil, fmt.Errorf("decimation: %w", ErrEmptyResults)
	}
	entries := results.Entries()
	first, ok := entries[0].Result.(ClassificationResult)
	if !ok {
		return nil, fmt.Errorf("classification decimation over %T: %w", entries[0].Result, ErrTypeMismatch)
	}
	nbClasses := first.NbClasses()

	keep := make(map[*tpg.Vertex]struct{}, toKeep)

	// The quota pass only makes sense when every class can reserve at least
	// one survivor and still leave room for the overall ranking.
	if nbClasses > 0 && toKeep >= 2*nbClasses {
		perClassQuota := (toKeep / nbClasses) / 2
		order := make([]int, len(entries))
		for classIdx := 0; classIdx < nbClasses; classIdx++ {
			for i := range order {
				order[i] = i
			}
			sort.SliceStable(order, func(a, b int) bool {
				return classScoreAt(entries, order[a], classIdx) < classScoreAt(entries, order[b], classIdx)
			})
			// Walk from best down. A candidate already kept for an earlier
			// class still consumes this class's quota slot.
			for taken := 0; taken < perClassQuota && taken < len(order); taken++ {
				entry := entries[order[len(order)-1-taken]]
				if _, ok := entry.Result.(ClassificationResult); !ok {
					return nil, fmt.Errorf("classification decimation over %T: %w", entry.Result, ErrTypeMismatch)
				}
				keep[entry.Root] = struct{}{}
			}
		}
	}

	fillByScore(keep, entries, toKeep)
	return keep, nil
}

func classScoreAt(entries []ResultEntry, idx, classIdx int) float64 {
	cr, ok := entries[idx].Result.(ClassificationResult)
	if !ok {
		return 0
	}
	score, err := cr.ScoreForClass(classIdx)
	if err != nil {
		return 0
	}
	return score
}

// fillByScore adds the best remaining roots until the keep set reaches
// toKeep or the entries run out. Entries come sorted ascending.
func fillByScore(keep map[*tpg.Vertex]struct{}, entries []ResultEntry, toKeep int) {
	for i := len(entries) - 1; i >= 0 && len(keep) < toKeep; i-- {
		keep[entries[i].Root] = struct{}{}
	}
}
