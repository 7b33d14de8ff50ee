package caption

import (
	"regexp"

	"clipforge/ddd/domain/entity"
)

// Style names, matching the four named ASS styles (§4.6).
const (
	StyleHook      = "Hook"
	StylePunchline = "Punchline"
	StyleEmphasis  = "Emphasis"
	StyleNormal    = "Normal"
)

var (
	hookRe       = regexp.MustCompile(`(?i)\b(what|how|why|when|where)\b|\?`)
	excitementRe = regexp.MustCompile(`(?i)\b(amazing|incredible|insane|crazy|wow|unbelievable)\b`)
	punchlineRe  = regexp.MustCompile(`(?i)\b(but|however)\b|!`)
	numberRe     = regexp.MustCompile(`\d`)
)

// Style assigns a named style and emoji to each group, in the §4.6 priority
// order: the first group matching the interrogative/attention regex becomes
// the hook (only one per clip); every remaining group is then classified
// independently as excitement, punchline, or number-bearing emphasis, and
// otherwise normal with no emoji.
func Style(groups []entity.CaptionSegment) []entity.CaptionSegment {
	out := make([]entity.CaptionSegment, len(groups))
	hookAssigned := false
	for i, g := range groups {
		switch {
		case !hookAssigned && hookRe.MatchString(g.Text):
			g.Style = StyleHook
			g.Emoji = "👀"
			hookAssigned = true
		case excitementRe.MatchString(g.Text):
			g.Style = StyleEmphasis
			g.Emoji = "🔥"
		case punchlineRe.MatchString(g.Text):
			g.Style = StylePunchline
			g.Emoji = "💥"
		case numberRe.MatchString(g.Text):
			g.Style = StyleEmphasis
			g.Emoji = "✨"
		default:
			g.Style = StyleNormal
		}
		out[i] = g
	}
	return out
}
