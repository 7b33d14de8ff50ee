package caption

import (
	"fmt"
	"strings"
	"time"

	"clipforge/ddd/domain/entity"
)

// RenderASS serializes styled caption groups into an ASS/SSA subtitle file
// sized for vertical video, one named style per caption style (§4.6),
// generalizing the single-style karaoke layout of the teacher lexicon.
func RenderASS(groups []entity.CaptionSegment) string {
	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, g := range groups {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(secToDur(g.Start)))
		b.WriteString(",")
		b.WriteString(assTime(secToDur(g.End)))
		b.WriteString(",")
		b.WriteString(g.Style)
		b.WriteString(",,0,0,0,,")
		b.WriteString(assText(g))
		b.WriteString("\n")
	}
	return b.String()
}

func assText(g entity.CaptionSegment) string {
	if len(g.Words) == 0 {
		return sanitizeASS(g.Text)
	}
	var b strings.Builder
	for _, w := range g.Words {
		durCS := int((w.End - w.Start) * 100)
		if durCS < 1 {
			durCS = 1
		}
		fmt.Fprintf(&b, "{\\k%d}%s ", durCS, sanitizeASS(w.Word))
	}
	return strings.TrimSpace(b.String())
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Normal, Arial Black, 70, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,5,2,2,40,40,60,1
Style: Emphasis, Arial Black, 80, &H0000FFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,6,2,2,40,40,60,1
Style: Hook, Arial Black, 85, &H0000FF00, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,6,3,2,40,40,60,1
Style: Punchline, Arial Black, 75, &H0000A5FF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,6,3,2,40,40,60,1
`)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func secToDur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
