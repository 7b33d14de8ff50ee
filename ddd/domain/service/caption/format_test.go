package caption

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"clipforge/ddd/domain/entity"
)

func sampleSegments() []entity.CaptionSegment {
	return Style([]entity.CaptionSegment{
		{Text: "what happened next", Start: 0.05, End: 1.34, Words: []entity.CaptionWord{
			{Word: "what", Start: 0.05, End: 0.4},
			{Word: "happened", Start: 0.4, End: 0.9},
			{Word: "next", Start: 0.9, End: 1.34},
		}},
		{Text: "it was incredible", Start: 1.4, End: 2.68},
		{Text: "five simple steps", Start: 2.7, End: 4.05},
	})
}

var srtTimeRe = regexp.MustCompile(`(\d+):(\d+):(\d+),(\d+) --> (\d+):(\d+):(\d+),(\d+)`)

func parseSRTSeconds(hh, mm, ss, ms string) float64 {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	s, _ := strconv.Atoi(ss)
	milli, _ := strconv.Atoi(ms)
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(milli)/1000
}

var assTimeRe = regexp.MustCompile(`Dialogue: 0,(\d+):(\d+):(\d+)\.(\d+),(\d+):(\d+):(\d+)\.(\d+),`)

func parseASSSeconds(hh, mm, ss, cs string) float64 {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	s, _ := strconv.Atoi(ss)
	centi, _ := strconv.Atoi(cs)
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(centi)/100
}

// closeToOneDecimal reports whether got preserves want to within one decimal
// place of a second, tolerating the truncation a fixed centisecond/
// millisecond field introduces at the boundary.
func closeToOneDecimal(got, want float64) bool {
	return math.Abs(got-want) <= 0.05
}

func TestRenderSRT_PreservesTextOrderingAndTimeBounds(t *testing.T) {
	groups := sampleSegments()
	out := RenderSRT(groups)

	matches := srtTimeRe.FindAllStringSubmatch(out, -1)
	if len(matches) != len(groups) {
		t.Fatalf("got %d timestamp lines, want %d", len(matches), len(groups))
	}

	// The first block is the forced-style NOTE header; cue blocks follow it.
	blocks := strings.Split(strings.TrimSpace(out), "\n\n")[1:]
	if len(blocks) != len(groups) {
		t.Fatalf("got %d SRT blocks, want %d", len(blocks), len(groups))
	}

	for i, g := range groups {
		lines := strings.Split(blocks[i], "\n")
		if got := strings.TrimSpace(lines[0]); got != fmt.Sprintf("%d", i+1) {
			t.Fatalf("block %d sequence number = %q, want %q", i, got, fmt.Sprintf("%d", i+1))
		}
		text := strings.TrimSpace(lines[2])
		if text != g.Text {
			t.Fatalf("block %d text = %q, want %q", i, text, g.Text)
		}

		m := matches[i]
		start := parseSRTSeconds(m[1], m[2], m[3], m[4])
		end := parseSRTSeconds(m[5], m[6], m[7], m[8])
		if !closeToOneDecimal(start, g.Start) {
			t.Fatalf("block %d start = %v, want ~%v", i, start, g.Start)
		}
		if !closeToOneDecimal(end, g.End) {
			t.Fatalf("block %d end = %v, want ~%v", i, end, g.End)
		}
	}
}

func TestRenderASS_PreservesOrderingTimeBoundsAndStyle(t *testing.T) {
	groups := sampleSegments()
	out := RenderASS(groups)

	if !strings.Contains(out, "[Script Info]") || !strings.Contains(out, "[Events]") {
		t.Fatalf("ASS output missing required sections:\n%s", out)
	}

	matches := assTimeRe.FindAllStringSubmatch(out, -1)
	if len(matches) != len(groups) {
		t.Fatalf("got %d dialogue lines, want %d", len(matches), len(groups))
	}

	dialogueLines := regexp.MustCompile(`(?m)^Dialogue:.*$`).FindAllString(out, -1)
	if len(dialogueLines) != len(groups) {
		t.Fatalf("got %d Dialogue lines, want %d", len(dialogueLines), len(groups))
	}

	for i, g := range groups {
		m := matches[i]
		start := parseASSSeconds(m[1], m[2], m[3], m[4])
		end := parseASSSeconds(m[5], m[6], m[7], m[8])
		if !closeToOneDecimal(start, g.Start) {
			t.Fatalf("dialogue %d start = %v, want ~%v", i, start, g.Start)
		}
		if !closeToOneDecimal(end, g.End) {
			t.Fatalf("dialogue %d end = %v, want ~%v", i, end, g.End)
		}
		if !strings.Contains(dialogueLines[i], ","+g.Style+",") {
			t.Fatalf("dialogue %d = %q, want it to carry style %q", i, dialogueLines[i], g.Style)
		}
	}

	// The first, hook-eligible group carries karaoke \k tags per word.
	if !strings.Contains(dialogueLines[0], `\k`) {
		t.Fatalf("first dialogue line should carry karaoke tags, got %q", dialogueLines[0])
	}
}
