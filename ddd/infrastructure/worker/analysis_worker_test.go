package worker

import (
	"testing"

	"clipforge/ddd/domain/service/score"
	"clipforge/ddd/domain/service/selection"
	"clipforge/ddd/domain/service/window"
)

func TestMax1_FloorsAtOne(t *testing.T) {
	if max1(0) != 1 {
		t.Fatalf("max1(0) = %d, want 1", max1(0))
	}
	if max1(-5) != 1 {
		t.Fatalf("max1(-5) = %d, want 1", max1(-5))
	}
	if max1(10) != 10 {
		t.Fatalf("max1(10) = %d, want 10", max1(10))
	}
}

func TestIndicesOf_MapsSelectedBackToOriginalPositions(t *testing.T) {
	all := []selection.Scored{
		{Candidate: window.Candidate{Start: 0, End: 30}, Analysis: score.RetentionAnalysis{Composite: 0.4}},
		{Candidate: window.Candidate{Start: 10, End: 40}, Analysis: score.RetentionAnalysis{Composite: 0.9}},
		{Candidate: window.Candidate{Start: 60, End: 90}, Analysis: score.RetentionAnalysis{Composite: 0.7}},
	}
	selected := []selection.Scored{all[2], all[0]}

	got := indicesOf(all, selected)
	want := []int{2, 0}
	if len(got) != len(want) {
		t.Fatalf("indicesOf() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("indicesOf()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
