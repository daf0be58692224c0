package grounding

import (
	"image"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/imaging"
)

// Generator proposes icon candidates by scanning square windows at several
// scales and keeping those whose texture looks like an icon.
type Generator struct {
	cfg config.DetectionConfig
}

// NewGenerator creates a generator with the given window sizes and gates.
func NewGenerator(cfg config.DetectionConfig) *Generator {
	return &Generator{cfg: cfg}
}

// Generate scans frame with every window size in sizes, or the configured
// sizes when sizes is empty.
//
// Windows start at the origin and advance by size x StrideRatio while
// x < width-size and y < height-size. A window is kept when its variance,
// mean, standard deviation and Canny edge density all fall strictly inside
// the configured bounds; its score is variance x edge density x std/mean.
// Candidates are returned in scan order: by size, then row, then column.
func (g *Generator) Generate(frame *imaging.Frame, sizes []int) []Candidate {
	if len(sizes) == 0 {
		sizes = g.cfg.WindowSizes
	}
	edges := frame.EdgeMap(g.cfg.CannyLow, g.cfg.CannyHigh)
	width, height := frame.Width(), frame.Height()

	candidates := make([]Candidate, 0)
	for _, size := range sizes {
		if size <= 0 {
			continue
		}
		stride := int(float64(size) * g.cfg.StrideRatio)
		if stride < 1 {
			stride = 1
		}
		for y := 0; y < height-size; y += stride {
			for x := 0; x < width-size; x += stride {
				r := image.Rect(x, y, x+size, y+size)
				score, ok := g.score(frame, edges, r)
				if !ok {
					continue
				}
				candidates = append(candidates, Candidate{
					X:     x + size/2,
					Y:     y + size/2,
					Size:  size,
					Score: score,
				})
			}
		}
	}
	return candidates
}

func (g *Generator) score(frame *imaging.Frame, edges *imaging.EdgeMap, r image.Rectangle) (float64, bool) {
	st := frame.Stats(r)
	if st.Variance <= g.cfg.MinVariance || st.Variance >= g.cfg.MaxVariance {
		return 0, false
	}
	if st.Mean <= g.cfg.MinMean || st.Mean >= g.cfg.MaxMean {
		return 0, false
	}
	if st.Std <= g.cfg.MinStd {
		return 0, false
	}
	density := edges.Density(r)
	if density <= g.cfg.MinEdgeDensity || density >= g.cfg.MaxEdgeDensity {
		return 0, false
	}
	return st.Variance * density * (st.Std / st.Mean), true
}

// Candidates runs Generate and Merge with the configured sizes and radius.
func (g *Generator) Candidates(frame *imaging.Frame) []Candidate {
	return Merge(g.Generate(frame, nil), g.cfg.MergeRadius)
}
