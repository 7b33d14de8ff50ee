// Package window builds the dense, overlapping set of candidate time ranges
// a video is scored over, before any signal analysis runs (§4.4.1).
package window

import "math"

const (
	MinClip    = 15.0
	MaxClip    = 60.0
	Step       = 5.0
	Preferred  = 30.0
)

// Candidate is a single emitted window, integer-floored per §4.4.1.
type Candidate struct {
	Start float64
	End   float64
}

// Viability returns the usable range [skip_intro, D-skip_outro] a video's
// windows must fall inside (§4.4.1).
func Viability(duration float64) (skipIntro, skipOutro, usableStart, usableEnd float64) {
	skipIntro = math.Min(25, 0.12*duration)
	skipOutro = math.Min(20, 0.08*duration)
	usableStart = skipIntro
	usableEnd = duration - skipOutro
	return
}

// Generate emits the dense overlapping candidate set for a video of the
// given duration, ordered by start time (§4.4.1). D < MIN_CLIP+skip_intro+
// skip_outro legitimately yields zero candidates (§8 boundary behavior).
func Generate(duration float64) []Candidate {
	_, _, usableStart, usableEnd := Viability(duration)
	if usableEnd-usableStart < MinClip {
		return nil
	}

	var out []Candidate
	for t := usableStart; t <= usableEnd-MinClip; t += Step {
		half := Preferred / 2
		start := t - half
		end := t + half
		if start < usableStart {
			start = usableStart
		}
		if end > usableEnd {
			end = usableEnd
		}
		length := end - start
		if length < MinClip {
			continue
		}
		if length > MaxClip {
			end = start + MaxClip
			length = MaxClip
		}
		c := Candidate{Start: math.Floor(start), End: math.Floor(end)}
		if c.End-c.Start < MinClip {
			continue
		}
		out = append(out, c)
	}
	return out
}
