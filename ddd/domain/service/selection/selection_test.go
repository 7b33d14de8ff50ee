package selection

import (
	"testing"

	"clipforge/ddd/domain/service/score"
	"clipforge/ddd/domain/service/window"
)

func scored(start, end, composite, confidence float64) Scored {
	return Scored{
		Candidate: window.Candidate{Start: start, End: end},
		Analysis:  score.RetentionAnalysis{Composite: composite, Confidence: confidence},
	}
}

func TestSelect_RanksByCompositeThenConfidence(t *testing.T) {
	in := []Scored{
		scored(0, 20, 0.5, 0.9),
		scored(100, 120, 0.9, 0.5),
		scored(200, 220, 0.9, 0.9),
	}
	got := Select(in, 3)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	if got[0].Candidate.Start != 200 {
		t.Fatalf("highest composite+confidence should rank first, got start=%v", got[0].Candidate.Start)
	}
	if got[1].Candidate.Start != 100 {
		t.Fatalf("tie-broken by confidence should rank second, got start=%v", got[1].Candidate.Start)
	}
}

func TestSelect_DropsOverlappingLowerRanked(t *testing.T) {
	in := []Scored{
		scored(0, 30, 0.9, 0.9),
		scored(10, 40, 0.8, 0.9), // overlaps the first, lower ranked
		scored(100, 130, 0.7, 0.9),
	}
	got := Select(in, 3)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2 (overlap dropped)", len(got))
	}
	for _, g := range got {
		if g.Candidate.Start == 10 {
			t.Fatalf("overlapping lower-ranked candidate should have been dropped")
		}
	}
}

func TestSelect_RespectsTopN(t *testing.T) {
	in := []Scored{
		scored(0, 20, 0.9, 0.9),
		scored(100, 120, 0.8, 0.9),
		scored(200, 220, 0.7, 0.9),
	}
	got := Select(in, 1)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
}
