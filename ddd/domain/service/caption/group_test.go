package caption

import (
	"testing"

	"clipforge/ddd/domain/entity"
)

func TestGroup_ForcesBreakAtMax(t *testing.T) {
	ws := []Word{
		{Text: "a", Start: 0.0, End: 0.2},
		{Text: "b", Start: 0.2, End: 0.4},
		{Text: "c", Start: 0.4, End: 0.6},
		{Text: "d", Start: 0.6, End: 0.8},
		{Text: "e", Start: 0.8, End: 1.0},
		{Text: "f", Start: 1.0, End: 1.2},
	}
	groups := Group(ws)
	if len(groups) == 0 {
		t.Fatalf("expected at least one group")
	}
	if len(groups[0].Words) > maxWordsPerGroup {
		t.Fatalf("first group has %d words, want at most %d", len(groups[0].Words), maxWordsPerGroup)
	}
}

func TestGroup_BreaksOnTerminalPunctuation(t *testing.T) {
	ws := []Word{
		{Text: "hi", Start: 0, End: 0.2},
		{Text: "there!", Start: 0.2, End: 0.4},
		{Text: "next", Start: 0.4, End: 0.6},
	}
	groups := Group(ws)
	if len(groups) < 2 {
		t.Fatalf("expected a break after terminal punctuation, got %d groups", len(groups))
	}
	if groups[0].Text != "hi there!" {
		t.Fatalf("first group text = %q", groups[0].Text)
	}
}

func TestGroup_BreaksOnGap(t *testing.T) {
	ws := []Word{
		{Text: "hi", Start: 0, End: 0.2},
		{Text: "there", Start: 0.2, End: 0.4},
		{Text: "pause", Start: 2.0, End: 2.2},
	}
	groups := Group(ws)
	if len(groups) < 2 {
		t.Fatalf("expected a break across a >=0.3s gap, got %d groups", len(groups))
	}
}

func TestGroup_SingleTrailingWordFlushesAlone(t *testing.T) {
	ws := []Word{{Text: "solo", Start: 0, End: 0.2}}
	groups := Group(ws)
	if len(groups) != 1 || len(groups[0].Words) != 1 {
		t.Fatalf("a single trailing word should still flush as its own group")
	}
}

func TestStyle_ClassifiesByPriorityOrder(t *testing.T) {
	groups := Style([]entity.CaptionSegment{
		{Text: "just a sentence"},
		{Text: "what is happening"},
		{Text: "why does this work"},
		{Text: "that's amazing"},
		{Text: "but wait"},
		{Text: "3 tips today"},
	})

	want := []string{StyleNormal, StyleHook, StyleNormal, StyleEmphasis, StylePunchline, StyleEmphasis}
	for i, w := range want {
		if groups[i].Style != w {
			t.Fatalf("group %d (%q) style = %q, want %q", i, groups[i].Text, groups[i].Style, w)
		}
	}
	if groups[1].Emoji != "👀" {
		t.Fatalf("hook group emoji = %q, want 👀", groups[1].Emoji)
	}
	if groups[3].Emoji != "🔥" {
		t.Fatalf("excitement group emoji = %q, want 🔥", groups[3].Emoji)
	}
	if groups[4].Emoji != "💥" {
		t.Fatalf("punchline group emoji = %q, want 💥", groups[4].Emoji)
	}
	if groups[5].Emoji != "✨" {
		t.Fatalf("number group emoji = %q, want ✨", groups[5].Emoji)
	}
}

func TestRenderASS_ContainsAllNamedStyles(t *testing.T) {
	groups := Style(Group([]Word{
		{Text: "what", Start: 0, End: 0.3},
		{Text: "is", Start: 0.3, End: 0.5},
		{Text: "this.", Start: 0.5, End: 0.8},
	}))
	out := RenderASS(groups)
	for _, style := range []string{"Normal", "Emphasis", "Hook", "Punchline"} {
		if !contains(out, "Style: "+style) {
			t.Fatalf("ASS output missing style definition for %q", style)
		}
	}
}

func TestRenderSRT_IncludesForcedStyleHeader(t *testing.T) {
	groups := Style(Group([]Word{
		{Text: "hello", Start: 0, End: 0.3},
		{Text: "world.", Start: 0.3, End: 0.6},
	}))
	out := RenderSRT(groups)
	if !contains(out, "forced_style") {
		t.Fatalf("SRT output missing forced style comment")
	}
	if !contains(out, "-->") {
		t.Fatalf("SRT output missing a timing line")
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
