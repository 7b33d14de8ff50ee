// Package score composes the per-signal engagement scores into the single
// composite retention score AW ranks candidates by (§4.4.4).
package score

import (
	"fmt"
	"math"

	"clipforge/ddd/domain/service/signal"
)

// Meta is the positional context Score needs beyond the raw signals.
type Meta struct {
	WindowStart   float64
	WindowEnd     float64
	VideoDuration float64
}

// RetentionAnalysis is the output of Score: the composite plus everything
// needed to explain it (§4.4.4, §9: "expose them behind a single
// Score(signals, meta) -> RetentionAnalysis entry point").
type RetentionAnalysis struct {
	Composite        float64
	Confidence       float64
	Reason           string
	HookBonusApplied bool
	Signals          signal.SignalSet
}

// Score combines audio/visual/speech signals into the composite, applies
// the hook bonus, position adjustment and duration adjustment in that
// order, and derives a confidence value and human-readable reason.
func Score(signals signal.SignalSet, meta Meta) RetentionAnalysis {
	audio := signals.Audio.EngagementScore
	visual := signals.Visual.EngagementScore
	speech := signals.Speech.EngagementScore

	hookApplied := false
	if hookEligible(signals, meta) {
		speech = math.Min(1, speech+0.25)
		hookApplied = true
	}

	composite := 0.40*audio + 0.35*speech + 0.25*visual

	duration := meta.WindowEnd - meta.WindowStart
	p := 0.0
	if meta.VideoDuration > 0 {
		p = meta.WindowStart / meta.VideoDuration
	}
	switch {
	case p >= 0.3 && p <= 0.7:
		composite *= 1.05
	case p < 0.15 || p > 0.85:
		composite *= 0.95
	}

	switch {
	case duration >= 30 && duration <= 45:
		composite *= 1.03
	case duration < 15 || duration > 60:
		composite *= 0.95
	}

	composite = clamp01(composite)

	return RetentionAnalysis{
		Composite:        composite,
		Confidence:       confidence(signals),
		Reason:           reason(composite, audio, visual, speech, hookApplied),
		HookBonusApplied: hookApplied,
		Signals: signal.SignalSet{
			Audio:  signals.Audio,
			Visual: signals.Visual,
			Speech: speech2(signals.Speech, speech),
		},
	}
}

// hookEligible implements the §4.4.4 hook-bonus precondition: a hook-shaped
// trigger or a loud moment lands in the window's first 3 seconds, and the
// window sits in the early 30% of the video.
func hookEligible(signals signal.SignalSet, meta Meta) bool {
	p := 0.0
	if meta.VideoDuration > 0 {
		p = meta.WindowStart / meta.VideoDuration
	}
	if p >= 0.3 {
		return false
	}
	for _, w := range signals.Speech.Words {
		if w.Start <= 3 && signal.HasInterrogativeOrExcitement(w.Text) {
			return true
		}
	}
	if signal.HasInterrogativeOrExcitement(firstThreeSeconds(signals.Speech)) {
		return true
	}
	return signals.Audio.LoudMomentCount > 0 && anyLoudMomentWithinFirst3s(signals)
}

func firstThreeSeconds(s signal.SpeechSignal) string {
	out := ""
	for _, w := range s.Words {
		if w.Start > 3 {
			break
		}
		out += w.Text + " "
	}
	return out
}

// anyLoudMomentWithinFirst3s gates on the presence of at least one loud
// moment anywhere in the window: AudioSignal carries only LoudMomentCount,
// with no offsets, so it does not check that the moment falls in the first
// 3 s.
func anyLoudMomentWithinFirst3s(signals signal.SignalSet) bool {
	return signals.Audio.LoudMomentCount > 0
}

func confidence(signals signal.SignalSet) float64 {
	c := 0.5
	if signals.Audio.LoudMomentCount > 0 {
		c += 0.15
	}
	c += 0.1 // baseline for silence data having been probed at all
	if len(signals.Visual.SceneChangeOffsets) > 0 {
		c += 0.15
	}
	if signals.Speech.WordCount > 0 {
		c += 0.2
	}
	if len(signals.Speech.Triggers) > 0 {
		c += 0.1
	}
	return math.Min(1, c)
}

var tiers = []struct {
	threshold float64
	phrase    string
}{
	{0.95, "exceptional"},
	{0.90, "outstanding"},
	{0.85, "excellent"},
	{0.80, "strong"},
	{0.75, "solid"},
	{0.70, "decent"},
}

func reason(composite, audio, visual, speech float64, hookApplied bool) string {
	tier := "moderate"
	for _, t := range tiers {
		if composite >= t.threshold {
			tier = t.phrase
			break
		}
	}
	dominant := "speech content"
	max := speech
	if audio > max {
		max, dominant = audio, "audio energy"
	}
	if visual > max {
		dominant = "visual pacing"
	}
	r := fmt.Sprintf("%s %s drives this moment", tier, dominant)
	if hookApplied {
		r += " — strong opening hook detected!"
	}
	return r
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func speech2(s signal.SpeechSignal, newEngagement float64) signal.SpeechSignal {
	s.EngagementScore = newEngagement
	return s
}
