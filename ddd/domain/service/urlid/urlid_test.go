package urlid

import "testing"

func TestExtract_RecognizedPatterns(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=30s", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?t=5", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, c := range cases {
		got, ok := Extract(c.url)
		if !ok {
			t.Fatalf("Extract(%q) failed to match, want %q", c.url, c.want)
		}
		if got != c.want {
			t.Fatalf("Extract(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestExtract_UnrecognizedURLFails(t *testing.T) {
	_, ok := Extract("https://vimeo.com/12345")
	if ok {
		t.Fatal("Extract should fail fast (invalid_url) on an unrecognized platform URL")
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	// This URL matches both the watch pattern ("abc-123_XYZ", stopping at
	// '#') and the short-link pattern ("other"); the watch pattern is tried
	// first, so its identifier wins.
	got, ok := Extract("https://www.youtube.com/watch?v=abc-123_XYZ#youtu.be/other")
	if !ok || got != "abc-123_XYZ" {
		t.Fatalf("Extract = (%q, %v), want (\"abc-123_XYZ\", true)", got, ok)
	}
}
