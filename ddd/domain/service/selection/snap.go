package selection

import (
	"math"

	"clipforge/ddd/domain/service/window"
)

// hookBuffer is subtracted from a snapped start to give the hook a moment
// of lead-in (§4.4.6).
const hookBuffer = 0.5

// snapRadius is how far a scene boundary may sit from a candidate edge and
// still be snapped to (§4.4.6).
const snapRadius = 3.0

// wordExtendRadius is how far past the candidate's end a word may end and
// still trigger the end extension (§4.4.6).
const wordExtendRadius = 2.0

// wordExtendPad is appended after the extending word's end (§4.4.6).
const wordExtendPad = 0.3

// Word is the minimal word-timestamp shape boundary snapping needs,
// expressed in absolute video-time seconds.
type Word struct {
	End float64
}

// SnapBoundaries adjusts a candidate's start and end to the nearest scene
// boundary within snapRadius seconds, applies the hook buffer, extends the
// end to cover a word that finishes just past it, and enforces the minimum
// clip length, floor-rounding both edges to one decimal (§4.4.6).
func SnapBoundaries(c window.Candidate, sceneBoundaries []float64, words []Word) window.Candidate {
	start := c.Start
	if b, ok := nearestWithin(start, sceneBoundaries, snapRadius); ok {
		start = b
	}
	start = math.Max(0, start-hookBuffer)

	end := c.End
	if b, ok := nearestWithin(end, sceneBoundaries, snapRadius); ok {
		end = b
	}
	if w, ok := nearestWordEndAfter(end, words, wordExtendRadius); ok {
		end = w + wordExtendPad
	}

	if end-start < window.MinClip {
		end = start + window.MinClip
	}

	return window.Candidate{Start: floorTo1Decimal(start), End: floorTo1Decimal(end)}
}

func nearestWithin(target float64, boundaries []float64, radius float64) (float64, bool) {
	best := 0.0
	bestDist := radius
	found := false
	for _, b := range boundaries {
		d := math.Abs(b - target)
		if d <= radius && d <= bestDist {
			best, bestDist, found = b, d, true
		}
	}
	return best, found
}

func nearestWordEndAfter(end float64, words []Word, radius float64) (float64, bool) {
	best := 0.0
	bestDist := radius
	found := false
	for _, w := range words {
		if w.End < end {
			continue
		}
		d := w.End - end
		if d <= radius && d <= bestDist {
			best, bestDist, found = w.End, d, true
		}
	}
	return best, found
}

func floorTo1Decimal(v float64) float64 {
	return math.Floor(v*10) / 10
}
