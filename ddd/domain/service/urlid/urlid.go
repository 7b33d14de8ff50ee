// Package urlid extracts the platform-level video identifier from a
// submitted source URL (§6). Patterns are tried in order; the first match
// wins.
package urlid

import "regexp"

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([^&\n?#]+)`),
	regexp.MustCompile(`youtu\.be/([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
}

// Extract returns the platform-level identifier encoded in sourceURL, and
// false if no pattern matches (§4.3 step 2: fail fast with invalid_url).
func Extract(sourceURL string) (string, bool) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(sourceURL); len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}
