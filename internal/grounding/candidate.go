package grounding

import (
	"image"
	"sort"
)

// Method tags identify the strategy that produced a result.
const (
	MethodTemplate       = "template"
	MethodLabelVerified  = "label_verified"
	MethodCharacteristic = "characteristic"
	MethodGridVerified   = "grid_verified"
	MethodGeneric        = "generic"
)

// Candidate is a possible icon location.
type Candidate struct {
	// X and Y are the center of the candidate window.
	X int `json:"x"`
	Y int `json:"y"`

	// Size is the edge of the square window that produced the candidate.
	Size int `json:"size"`

	// Score is the strategy-specific ranking value, never negative.
	Score float64 `json:"score"`

	Method string `json:"method,omitempty"`

	// Confidence is the normalized [0,1] value reported when the
	// candidate wins.
	Confidence float64 `json:"confidence,omitempty"`
}

// Point returns the candidate center.
func (c Candidate) Point() image.Point {
	return image.Pt(c.X, c.Y)
}

// Rect returns the candidate window.
func (c Candidate) Rect() image.Rectangle {
	return image.Rect(c.X-c.Size/2, c.Y-c.Size/2, c.X-c.Size/2+c.Size, c.Y-c.Size/2+c.Size)
}

// rankBefore orders candidates by descending score, breaking ties by Y, X,
// then Size ascending, so the order never depends on input order.
func rankBefore(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Size < b.Size
}

// Merge removes near-duplicate candidates.
//
// Candidates are visited in rank order and one is kept only if it lies at
// least radius away from every candidate kept before it. Each discarded
// candidate is therefore within radius of a kept candidate with a score at
// least as high. The result is sorted by descending score.
func Merge(candidates []Candidate, radius float64) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return rankBefore(ranked[i], ranked[j])
	})

	r2 := radius * radius
	kept := make([]Candidate, 0, len(ranked))
	for _, c := range ranked {
		isolated := true
		for _, k := range kept {
			dx := float64(c.X - k.X)
			dy := float64(c.Y - k.Y)
			if dx*dx+dy*dy < r2 {
				isolated = false
				break
			}
		}
		if isolated {
			kept = append(kept, c)
		}
	}
	return kept
}
