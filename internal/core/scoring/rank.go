package scoring

import (
	"math"
	"sort"

	"github.com/agenthands/twohop/internal/core/model"
)

// Thresholds control which scored candidates survive ranking.
type Thresholds struct {
	Min      float64 // absolute floor
	Relative float64 // fraction of the top score
}

func DefaultThresholds() Thresholds {
	return Thresholds{Min: 0.4, Relative: 0.7}
}

// Cutoff is max(Min, top*Relative).
func (t Thresholds) Cutoff(top float64) float64 {
	return math.Max(t.Min, top*t.Relative)
}

// Rank sorts scored by final score, highest first, keeping input order
// among ties, drops everything below the cutoff and truncates to
// maxResults. The input slice is not modified.
func Rank(scored []model.ScoredCandidate, maxResults int, t Thresholds) []model.ScoredCandidate {
	if len(scored) == 0 || maxResults <= 0 {
		return []model.ScoredCandidate{}
	}

	sorted := make([]model.ScoredCandidate, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Scores.Final > sorted[j].Scores.Final
	})

	cutoff := t.Cutoff(sorted[0].Scores.Final)
	kept := make([]model.ScoredCandidate, 0, len(sorted))
	for _, c := range sorted {
		if c.Scores.Final < cutoff {
			break
		}
		kept = append(kept, c)
		if len(kept) == maxResults {
			break
		}
	}
	return kept
}
