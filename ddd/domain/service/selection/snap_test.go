package selection

import (
	"testing"

	"clipforge/ddd/domain/service/window"
)

func TestSnapBoundaries_SnapsToNearbySceneBoundary(t *testing.T) {
	c := window.Candidate{Start: 100, End: 130}
	scenes := []float64{101.5, 131.0}

	got := SnapBoundaries(c, scenes, nil)

	wantStart := 101.5 - hookBuffer
	if got.Start != floorTo1Decimal(wantStart) {
		t.Fatalf("Start = %v, want %v", got.Start, floorTo1Decimal(wantStart))
	}
	if got.End != floorTo1Decimal(131.0) {
		t.Fatalf("End = %v, want %v", got.End, floorTo1Decimal(131.0))
	}
}

func TestSnapBoundaries_IgnoresDistantSceneBoundary(t *testing.T) {
	c := window.Candidate{Start: 100, End: 130}
	scenes := []float64{50, 200}

	got := SnapBoundaries(c, scenes, nil)

	if got.Start != floorTo1Decimal(100-hookBuffer) {
		t.Fatalf("Start = %v, want hook-buffered original start", got.Start)
	}
	if got.End != floorTo1Decimal(130) {
		t.Fatalf("End = %v, want original end", got.End)
	}
}

func TestSnapBoundaries_HookBufferClampsToZero(t *testing.T) {
	c := window.Candidate{Start: 0.2, End: 30}
	got := SnapBoundaries(c, nil, nil)
	if got.Start != 0 {
		t.Fatalf("Start = %v, want 0 (hook buffer must clamp, not go negative)", got.Start)
	}
}

func TestSnapBoundaries_ExtendsEndForTrailingWord(t *testing.T) {
	c := window.Candidate{Start: 100, End: 130}
	words := []Word{{End: 131.2}}

	got := SnapBoundaries(c, nil, words)

	want := floorTo1Decimal(131.2 + wordExtendPad)
	if got.End != want {
		t.Fatalf("End = %v, want %v", got.End, want)
	}
}

func TestSnapBoundaries_EnforcesMinimumLength(t *testing.T) {
	c := window.Candidate{Start: 100, End: 105}
	got := SnapBoundaries(c, nil, nil)
	if got.End-got.Start < window.MinClip-0.05 {
		t.Fatalf("clip length = %v, want at least %v", got.End-got.Start, window.MinClip)
	}
}
