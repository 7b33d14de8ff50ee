package worker

import (
	"strings"
	"testing"

	"clipforge/ddd/domain/entity"
	"clipforge/ddd/domain/service/caption"
)

func TestClipTitle_TruncatesAndAppendsEmoji(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := clipTitle(long, 0.95)
	if !strings.HasSuffix(got, " 🔥") {
		t.Fatalf("expected fire emoji for composite >= 0.9, got %q", got)
	}
	if len(got) > 60+len(" 🔥") {
		t.Fatalf("title not truncated to 60 chars: %q", got)
	}
}

func TestClipTitle_EmojiTiers(t *testing.T) {
	cases := []struct {
		composite float64
		emoji     string
	}{
		{0.95, "🔥"},
		{0.85, "⚡"},
		{0.5, "✨"},
	}
	for _, c := range cases {
		got := clipTitle("short title", c.composite)
		if !strings.HasSuffix(got, c.emoji) {
			t.Fatalf("composite %v: expected suffix %q, got %q", c.composite, c.emoji, got)
		}
	}
}

func TestClipDescription_ReportsPercentage(t *testing.T) {
	got := clipDescription(0.87)
	if !strings.Contains(got, "87%") {
		t.Fatalf("expected description to contain 87%%, got %q", got)
	}
}

func TestClipTags_UnionsBaseAndTitleWords(t *testing.T) {
	tags := clipTags("The Amazing Secret Trick Nobody Talks About Today")

	for _, base := range baseTags {
		found := false
		for _, tag := range tags {
			if tag == base {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected base tag %q in result %v", base, tags)
		}
	}

	if len(tags) > len(baseTags)+6 {
		t.Fatalf("expected at most %d title-derived tags, got %v", 6, tags)
	}

	seen := map[string]bool{}
	for _, tag := range tags {
		if seen[tag] {
			t.Fatalf("tags must be deduplicated, found repeat %q in %v", tag, tags)
		}
		seen[tag] = true
	}
}

func TestClipTags_DropsShortWords(t *testing.T) {
	tags := clipTags("a be it cat dog")
	for _, tag := range tags {
		if tag == "a" || tag == "be" || tag == "it" {
			t.Fatalf("expected words under 4 letters to be dropped, found %q in %v", tag, tags)
		}
	}
}

func TestDominantStyle_PicksHighestCount(t *testing.T) {
	groups := []entity.CaptionSegment{
		{Style: caption.StyleNormal},
		{Style: caption.StyleEmphasis},
		{Style: caption.StyleEmphasis},
	}
	if got := dominantStyle(groups); got != caption.StyleEmphasis {
		t.Fatalf("dominantStyle() = %q, want %q", got, caption.StyleEmphasis)
	}
}

func TestDominantStyle_PrefersHookOnTie(t *testing.T) {
	groups := []entity.CaptionSegment{
		{Style: caption.StyleHook},
		{Style: caption.StyleEmphasis},
	}
	if got := dominantStyle(groups); got != caption.StyleHook {
		t.Fatalf("dominantStyle() = %q, want %q (hook takes priority on tie)", got, caption.StyleHook)
	}
}
