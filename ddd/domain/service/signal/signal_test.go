package signal

import "testing"

func TestNewAudioSignal_EngagementWithinUnitRange(t *testing.T) {
	got := NewAudioSignal(-20, -5, 2, 3, 30)
	if got.EngagementScore < 0 || got.EngagementScore > 1 {
		t.Fatalf("EngagementScore = %v, want within [0,1]", got.EngagementScore)
	}
}

func TestNewAudioSignal_SilencePenalizesEngagement(t *testing.T) {
	quiet := NewAudioSignal(-20, -5, 25, 0, 30)
	loud := NewAudioSignal(-20, -5, 0, 0, 30)
	if quiet.EngagementScore >= loud.EngagementScore {
		t.Fatalf("a mostly-silent window (%v) should score lower than a silence-free one (%v)", quiet.EngagementScore, loud.EngagementScore)
	}
}

func TestAudioFallback_MatchesNeutralSpec(t *testing.T) {
	got := AudioFallback()
	if got.Energy != 0.52 || got.EngagementScore != 0.52 {
		t.Fatalf("AudioFallback = %+v, want energy/engagement 0.52", got)
	}
}

func TestNewVisualSignal_IdealRateScoresHighest(t *testing.T) {
	// 8 changes over a 60s window = 8/min, the ideal rate.
	offsets := make([]float64, 8)
	for i := range offsets {
		offsets[i] = float64(i) * 7.5
	}
	ideal := NewVisualSignal(offsets, 60)
	sparse := NewVisualSignal(offsets[:1], 60)
	if ideal.EngagementScore <= sparse.EngagementScore {
		t.Fatalf("ideal-rate window (%v) should score higher than a sparse one (%v)", ideal.EngagementScore, sparse.EngagementScore)
	}
}

func TestVisualFallback_NoSceneChanges(t *testing.T) {
	got := VisualFallback()
	if len(got.SceneChangeOffsets) != 0 {
		t.Fatalf("VisualFallback should report no scene changes, got %v", got.SceneChangeOffsets)
	}
}

func TestNewSpeechSignal_IdealDensityScoresHighest(t *testing.T) {
	// 3 words/s over a 10s window is the ideal density.
	words := make([]Word, 30)
	for i := range words {
		words[i] = Word{Text: "word", Start: float64(i) / 3, End: float64(i)/3 + 0.2}
	}
	ideal := NewSpeechSignal("word word word", words, 10)
	sparseWords := words[:3]
	sparse := NewSpeechSignal("word word word", sparseWords, 10)
	if ideal.EngagementScore <= sparse.EngagementScore {
		t.Fatalf("ideal-density window (%v) should score higher than a sparse one (%v)", ideal.EngagementScore, sparse.EngagementScore)
	}
}

func TestSpeechFallback_NeutralScore(t *testing.T) {
	got := SpeechFallback()
	if got.EngagementScore != 0.5 {
		t.Fatalf("SpeechFallback EngagementScore = %v, want 0.5", got.EngagementScore)
	}
	if got.Density != 0 {
		t.Fatalf("SpeechFallback Density = %v, want 0", got.Density)
	}
}

func TestFindTriggers_MatchesWeightedLexicon(t *testing.T) {
	text := "what is the secret to success? watch this amazing trick!"
	matches := FindTriggers(text)
	if len(matches) == 0 {
		t.Fatal("expected at least one trigger match")
	}
	var sawInterrogative, sawExcitement, sawControversy bool
	for _, m := range matches {
		switch m.Name {
		case "interrogative":
			sawInterrogative = true
		case "excitement":
			sawExcitement = true
		case "controversy":
			sawControversy = true
		}
	}
	if !sawInterrogative || !sawExcitement || !sawControversy {
		t.Fatalf("expected interrogative, excitement and controversy matches in %v", matches)
	}
}

func TestHasInterrogativeOrExcitement(t *testing.T) {
	if !HasInterrogativeOrExcitement("what happened next") {
		t.Fatal("expected interrogative to match")
	}
	if !HasInterrogativeOrExcitement("this is absolutely incredible") {
		t.Fatal("expected excitement word to match")
	}
	if HasInterrogativeOrExcitement("please subscribe and follow") {
		t.Fatal("call-to-action text should not match the hook precondition")
	}
}
