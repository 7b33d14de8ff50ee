package caption

import (
	"fmt"
	"strings"
	"time"

	"clipforge/ddd/domain/entity"
)

// RenderSRT serializes caption groups into a plain SRT file with a leading
// forced-style comment, the fallback format the burn tool uses when ASS
// burn-in fails (§4.6).
func RenderSRT(groups []entity.CaptionSegment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "NOTE forced_style=Fontname=Arial Black,MarginV=40\n\n")
	for i, g := range groups {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", srtTime(secToDur(g.Start)), srtTime(secToDur(g.End)))
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(g.Text))
	}
	return b.String()
}

func srtTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	millis := int(d / time.Millisecond)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hs, ms, s, millis)
}
