// Package selection ranks scored candidates and picks the non-overlapping
// top-N the analysis worker persists as segments (§4.4.5).
package selection

import (
	"sort"

	"clipforge/ddd/domain/service/score"
	"clipforge/ddd/domain/service/window"
)

// Scored pairs a generated window with its composite analysis.
type Scored struct {
	Candidate window.Candidate
	Analysis  score.RetentionAnalysis
}

// Select sorts by (composite desc, confidence desc) and greedily keeps the
// highest-ranked candidates that don't overlap an already-kept one, up to
// topN (§4.4.5). The analysis worker passes the job's requested clip count
// as topN (its configured ranking depth only when the count is unset).
func Select(candidates []Scored, topN int) []Scored {
	ranked := make([]Scored, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Analysis.Composite != ranked[j].Analysis.Composite {
			return ranked[i].Analysis.Composite > ranked[j].Analysis.Composite
		}
		return ranked[i].Analysis.Confidence > ranked[j].Analysis.Confidence
	})

	var kept []Scored
	for _, c := range ranked {
		if len(kept) >= topN {
			break
		}
		if overlapsAny(c.Candidate, kept) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func overlapsAny(c window.Candidate, kept []Scored) bool {
	for _, k := range kept {
		if overlaps(c.Start, c.End, k.Candidate.Start, k.Candidate.End) {
			return true
		}
	}
	return false
}

// overlaps reports whether two half-open intervals [start, end) intersect
// (§8 invariant: selected segments never overlap).
func overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart < bEnd && bStart < aEnd
}
