package window

import "testing"

func TestGenerate_EveryWindowRespectsBoundsAndViability(t *testing.T) {
	duration := 300.0
	skipIntro, skipOutro, usableStart, usableEnd := Viability(duration)
	if skipIntro != 25 || skipOutro != 20 {
		t.Fatalf("Viability(300) = (%v, %v), want (25, 20)", skipIntro, skipOutro)
	}

	candidates := Generate(duration)
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate for a 300s video")
	}
	for _, c := range candidates {
		length := c.End - c.Start
		if length < MinClip || length > MaxClip {
			t.Fatalf("candidate [%v,%v] length %v out of [%v,%v]", c.Start, c.End, length, MinClip, MaxClip)
		}
		if c.Start < usableStart {
			t.Fatalf("candidate start %v before usable start %v", c.Start, usableStart)
		}
		if c.End > usableEnd {
			t.Fatalf("candidate end %v after usable end %v", c.End, usableEnd)
		}
	}
}

func TestGenerate_OrderedByStartTime(t *testing.T) {
	candidates := Generate(300)
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Start < candidates[i-1].Start {
			t.Fatalf("candidates not ordered by start time at index %d: %v before %v", i, candidates[i-1], candidates[i])
		}
	}
}

func TestGenerate_ShortVideoYieldsNoWindows(t *testing.T) {
	// D < MIN_CLIP + skip_intro + skip_outro must legitimately yield zero
	// candidates (§8 boundary behavior).
	candidates := Generate(10)
	if len(candidates) != 0 {
		t.Fatalf("Generate(10) = %d candidates, want 0", len(candidates))
	}
}

func TestGenerate_ShortVideoYieldsFewWindows(t *testing.T) {
	// D=42s: skip_intro ~= 5.04, skip_outro ~= 3.36, usable ~= [5.04, 38.64].
	candidates := Generate(42)
	if len(candidates) > 2 {
		t.Fatalf("Generate(42) = %d candidates, want 0, 1 or 2", len(candidates))
	}
	for _, c := range candidates {
		if c.End-c.Start < MinClip {
			t.Fatalf("candidate [%v,%v] shorter than MinClip", c.Start, c.End)
		}
	}
}

func TestViability_ClampsAtUpperBounds(t *testing.T) {
	// For a long enough video the 25s/20s caps kick in rather than the
	// 12%/8% fractions.
	skipIntro, skipOutro, _, _ := Viability(10000)
	if skipIntro != 25 {
		t.Fatalf("skipIntro = %v, want capped at 25", skipIntro)
	}
	if skipOutro != 20 {
		t.Fatalf("skipOutro = %v, want capped at 20", skipOutro)
	}
}
