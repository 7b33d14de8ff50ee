package signal

import "strings"

// Word is a word-level timestamp local to a scored window (offsets relative
// to the window start, seconds).
type Word struct {
	Text  string
	Start float64
	End   float64
}

// SpeechSignal is the per-window transcript analysis result (§4.4.2).
type SpeechSignal struct {
	Text            string
	Words           []Word
	WordCount       int
	Density         float64 // words/second
	Triggers        []TriggerMatch
	KeyPhrases      []string
	EngagementScore float64
}

const idealWordsPerSecond = 3.0

// NewSpeechSignal derives density, trigger hits, key phrases and the
// engagement score from a window's transcript (§4.4.2: "density closeness to
// 3 w/s (0.4), trigger count normalized by 3 (0.4), content-present flag
// (0.2)").
func NewSpeechSignal(text string, words []Word, windowSeconds float64) SpeechSignal {
	wordCount := len(words)
	density := 0.0
	if windowSeconds > 0 {
		density = float64(wordCount) / windowSeconds
	}
	densityScore := 1 - clamp01(absf(density-idealWordsPerSecond)/idealWordsPerSecond)
	triggers := FindTriggers(text)
	triggerScore := clamp01(float64(len(triggers)) / 3)
	contentPresent := 0.0
	if wordCount > 0 {
		contentPresent = 1
	}
	engagement := clamp01(0.4*densityScore + 0.4*triggerScore + 0.2*contentPresent)
	return SpeechSignal{
		Text:            text,
		Words:           words,
		WordCount:       wordCount,
		Density:         density,
		Triggers:        triggers,
		KeyPhrases:      keyPhrases(text),
		EngagementScore: engagement,
	}
}

// SpeechFallback is the neutral substitute used when transcription fails
// (§4.4.2): "density 0, speech score 0.5".
func SpeechFallback() SpeechSignal {
	return SpeechSignal{EngagementScore: 0.5}
}

// keyPhrases extracts 2-3 word phrases from the text, a cheap stand-in for
// the source's "key phrase" extraction (§4.4.2).
func keyPhrases(text string) []string {
	words := strings.Fields(text)
	var out []string
	for i := 0; i+1 < len(words) && len(out) < 5; i += 2 {
		end := i + 3
		if end > len(words) {
			end = len(words)
		}
		phrase := strings.Join(words[i:end], " ")
		if strings.TrimSpace(phrase) != "" {
			out = append(out, phrase)
		}
	}
	return out
}
