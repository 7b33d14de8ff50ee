// Package signal computes the per-candidate audio/visual/speech signals
// that feed the composite score (§4.4.2, §4.4.3).
package signal

import "regexp"

// Trigger is one weighted pattern from the viral-trigger lexicon (§4.4.3).
type Trigger struct {
	Name    string
	Pattern *regexp.Regexp
	Weight  float64
}

// Lexicon is the weighted regex set applied to transcribed text per window.
var Lexicon = []Trigger{
	{"interrogative", regexp.MustCompile(`(?i)\b(what|how|why|when|where)\b`), 0.80},
	{"excitement", regexp.MustCompile(`(?i)\b(amazing|incredible|insane|crazy|wow|unbelievable)\b`), 0.90},
	{"controversy", regexp.MustCompile(`(?i)\b(secret|truth|exposed|reveal|hidden)\b`), 0.85},
	{"action", regexp.MustCompile(`(?i)\b(watch|look|see|check|discover)\b`), 0.70},
	{"numeric_list", regexp.MustCompile(`(?i)\d+ (ways|tips|tricks|secrets|things|reasons)`), 0.80},
	{"call_to_action", regexp.MustCompile(`(?i)\b(subscribe|like|comment|share|follow)\b`), 0.60},
}

// SignalSet bundles the three per-window signals Score combines (§4.4.4).
type SignalSet struct {
	Audio  AudioSignal
	Visual VisualSignal
	Speech SpeechSignal
}

// TriggerMatch is one lexicon hit in a piece of text.
type TriggerMatch struct {
	Name   string
	Weight float64
	Text   string
}

// FindTriggers runs the full lexicon over text and returns every match.
func FindTriggers(text string) []TriggerMatch {
	var out []TriggerMatch
	for _, t := range Lexicon {
		for _, m := range t.Pattern.FindAllString(text, -1) {
			out = append(out, TriggerMatch{Name: t.Name, Weight: t.Weight, Text: m})
		}
	}
	return out
}

// HasInterrogativeOrExcitement reports the hook-bonus precondition on text
// (§4.4.4): an interrogative or excitement trigger is present.
func HasInterrogativeOrExcitement(text string) bool {
	for _, t := range Lexicon {
		if t.Name != "interrogative" && t.Name != "excitement" {
			continue
		}
		if t.Pattern.MatchString(text) {
			return true
		}
	}
	return false
}
