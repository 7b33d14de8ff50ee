// Package caption turns a clip's word-level transcript into styled caption
// groups and serializes them for burn-in (§4.6).
package caption

import (
	"strings"

	"clipforge/ddd/domain/entity"
)

const (
	minWordsPerGroup    = 2
	targetWordsPerGroup = 3
	maxWordsPerGroup    = 5
	gapBreakSeconds     = 0.3
)

// Word is a word-level timestamp local to a clip (offsets relative to the
// clip start, seconds).
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Group packs a clip's words into 2-5 word caption groups targeting 3,
// breaking early on trailing punctuation (, ; . ! ?) or a gap of at least
// gapBreakSeconds, and forcing a break once a group reaches the maximum
// (§4.6).
func Group(words []Word) []entity.CaptionSegment {
	var out []entity.CaptionSegment
	var cur []Word

	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, toSegment(cur))
		cur = nil
	}

	for i, w := range words {
		cur = append(cur, w)
		atMax := len(cur) >= maxWordsPerGroup
		atTarget := len(cur) >= targetWordsPerGroup
		endsBreak := endsWithBreakPunctuation(w.Text)
		gapsToNext := i+1 < len(words) && words[i+1].Start-w.End >= gapBreakSeconds

		switch {
		case atMax:
			flush()
		case len(cur) >= minWordsPerGroup && (endsBreak || gapsToNext) && atTarget:
			flush()
		case len(cur) >= minWordsPerGroup && (endsBreak || gapsToNext):
			flush()
		}
	}
	flush()
	return out
}

func toSegment(words []Word) entity.CaptionSegment {
	texts := make([]string, len(words))
	cw := make([]entity.CaptionWord, len(words))
	for i, w := range words {
		texts[i] = w.Text
		cw[i] = entity.CaptionWord{Word: w.Text, Start: w.Start, End: w.End}
	}
	return entity.CaptionSegment{
		Text:  strings.Join(texts, " "),
		Start: words[0].Start,
		End:   words[len(words)-1].End,
		Words: cw,
	}
}

func endsWithBreakPunctuation(word string) bool {
	word = strings.TrimSpace(word)
	if word == "" {
		return false
	}
	switch word[len(word)-1] {
	case ',', ';', '.', '!', '?':
		return true
	default:
		return false
	}
}
