package score

import (
	"testing"

	"clipforge/ddd/domain/service/signal"
)

func TestScore_CompositeWeighting(t *testing.T) {
	signals := signal.SignalSet{
		Audio:  signal.AudioSignal{EngagementScore: 0.8},
		Visual: signal.VisualSignal{EngagementScore: 0.4},
		Speech: signal.SpeechSignal{EngagementScore: 0.6},
	}
	meta := Meta{WindowStart: 100, WindowEnd: 120, VideoDuration: 1000}

	got := Score(signals, meta)

	// Position p = 100/1000 = 0.1 falls in the first 15%, so the edge-position
	// factor 0.95 applies; the 20s length is neither preferred nor too short.
	want := (0.40*0.8 + 0.35*0.6 + 0.25*0.4) * 0.95
	if diff := got.Composite - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("Composite = %v, want %v", got.Composite, want)
	}
	if got.HookBonusApplied {
		t.Fatalf("expected no hook bonus for a window with no trigger words or loud moments")
	}
}

func TestScore_HookBonusEarlyWindow(t *testing.T) {
	signals := signal.SignalSet{
		Audio:  signal.AudioSignal{EngagementScore: 0.5},
		Visual: signal.VisualSignal{EngagementScore: 0.5},
		Speech: signal.SpeechSignal{
			EngagementScore: 0.5,
			Words: []signal.Word{
				{Text: "what", Start: 0.5, End: 0.9},
				{Text: "happened", Start: 1.0, End: 1.5},
			},
		},
	}
	meta := Meta{WindowStart: 5, WindowEnd: 35, VideoDuration: 600}

	got := Score(signals, meta)

	if !got.HookBonusApplied {
		t.Fatalf("expected hook bonus for early window with interrogative in first 3s")
	}
	if got.Reason == "" {
		t.Fatalf("expected a non-empty reason string")
	}
	if got.Reason[len(got.Reason)-len("strong opening hook detected!"):] != "strong opening hook detected!" {
		t.Fatalf("reason %q should end with the hook suffix", got.Reason)
	}
}

func TestScore_PositionAdjustment(t *testing.T) {
	signals := signal.SignalSet{
		Audio:  signal.AudioSignal{EngagementScore: 0.6},
		Visual: signal.VisualSignal{EngagementScore: 0.6},
		Speech: signal.SpeechSignal{EngagementScore: 0.6},
	}
	mid := Score(signals, Meta{WindowStart: 500, WindowEnd: 520, VideoDuration: 1000})
	edge := Score(signals, Meta{WindowStart: 10, WindowEnd: 30, VideoDuration: 1000})

	if mid.Composite <= edge.Composite {
		t.Fatalf("mid-video window (%v) should score higher than an edge window (%v) for identical signals", mid.Composite, edge.Composite)
	}
}

func TestScore_DurationAdjustment(t *testing.T) {
	signals := signal.SignalSet{
		Audio:  signal.AudioSignal{EngagementScore: 0.6},
		Visual: signal.VisualSignal{EngagementScore: 0.6},
		Speech: signal.SpeechSignal{EngagementScore: 0.6},
	}
	preferred := Score(signals, Meta{WindowStart: 500, WindowEnd: 535, VideoDuration: 1000})
	tooShort := Score(signals, Meta{WindowStart: 500, WindowEnd: 510, VideoDuration: 1000})

	if preferred.Composite <= tooShort.Composite {
		t.Fatalf("a 35s window (%v) should score higher than a 10s window (%v) for identical signals", preferred.Composite, tooShort.Composite)
	}
}

func TestScore_ClampsToUnitRange(t *testing.T) {
	signals := signal.SignalSet{
		Audio:  signal.AudioSignal{EngagementScore: 1},
		Visual: signal.VisualSignal{EngagementScore: 1},
		Speech: signal.SpeechSignal{EngagementScore: 1},
	}
	got := Score(signals, Meta{WindowStart: 300, WindowEnd: 335, VideoDuration: 1000})
	if got.Composite > 1 {
		t.Fatalf("Composite = %v, must be clamped to 1", got.Composite)
	}
}

func TestConfidence_NeverExceedsOne(t *testing.T) {
	signals := signal.SignalSet{
		Audio:  signal.AudioSignal{LoudMomentCount: 5},
		Visual: signal.VisualSignal{SceneChangeOffsets: []float64{1, 2, 3}},
		Speech: signal.SpeechSignal{WordCount: 10, Triggers: []signal.TriggerMatch{{Name: "action"}}},
	}
	got := confidence(signals)
	if got > 1 {
		t.Fatalf("confidence = %v, must be clamped to 1", got)
	}
}
