package grounding

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/imaging"
)

// minCoarseTemplate is the smallest downscaled template edge worth
// correlating; below it the search runs at full resolution only.
const minCoarseTemplate = 8

// LoadTemplate reads the reference icon at path as grayscale. A missing or
// unreadable file yields an error wrapping ErrTemplateUnavailable.
func LoadTemplate(path string) (*image.Gray, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateUnavailable, path, err)
	}
	return imaging.ToGray(img), nil
}

// TemplateMatcher finds a reference image in a frame by zero-mean
// normalized cross-correlation.
type TemplateMatcher struct {
	threshold float64
	factor    int
	peaks     int
}

// NewTemplateMatcher creates a matcher from the template configuration.
func NewTemplateMatcher(cfg config.TemplateConfig) *TemplateMatcher {
	m := &TemplateMatcher{
		threshold: cfg.Threshold,
		factor:    cfg.CoarseFactor,
		peaks:     cfg.RefinePeaks,
	}
	if m.factor < 1 {
		m.factor = 1
	}
	if m.peaks < 1 {
		m.peaks = 1
	}
	return m
}

type position struct {
	x, y  int
	score float64
}

// Match returns the center of the best template location when its
// correlation reaches the threshold, or nil when it does not.
//
// With a coarse factor above 1 both images are first box-downscaled and the
// strongest, mutually separated peaks of that pass are refined at full
// resolution within factor+1 pixels. Windows with no variance correlate as
// 0, and a template with no variance never matches.
func (m *TemplateMatcher) Match(frame *imaging.Frame, tmpl *image.Gray) (*Candidate, error) {
	tmpl = imaging.ToGray(tmpl)
	tw, th := tmpl.Rect.Dx(), tmpl.Rect.Dy()
	if tw == 0 || th == 0 {
		return nil, errors.New("empty template")
	}
	if tw > frame.Width() || th > frame.Height() {
		return nil, fmt.Errorf("template %dx%d larger than frame %dx%d", tw, th, frame.Width(), frame.Height())
	}

	zt, tnorm := zeroMean(tmpl)
	if tnorm == 0 {
		return nil, nil
	}

	var best position
	if m.factor > 1 && tw/m.factor >= minCoarseTemplate && th/m.factor >= minCoarseTemplate {
		best = m.coarseToFine(frame, tmpl, zt, tnorm)
	} else {
		best = exhaustive(frame.Gray(), frame.Stats, zt, tw, th, tnorm,
			image.Rect(0, 0, frame.Width()-tw+1, frame.Height()-th+1))
	}

	if best.score < m.threshold {
		return nil, nil
	}
	return &Candidate{
		X:          best.x + tw/2,
		Y:          best.y + th/2,
		Size:       maxInt(tw, th),
		Score:      best.score,
		Method:     MethodTemplate,
		Confidence: best.score,
	}, nil
}

func (m *TemplateMatcher) coarseToFine(frame *imaging.Frame, tmpl *image.Gray, zt []float64, tnorm float64) position {
	f := m.factor
	smallFrame := imaging.Downscale(frame.Gray(), f)
	smallTmpl := imaging.Downscale(tmpl, f)
	stw, sth := smallTmpl.Rect.Dx(), smallTmpl.Rect.Dy()

	szt, snorm := zeroMean(smallTmpl)
	if snorm == 0 {
		return exhaustive(frame.Gray(), frame.Stats, zt, tmpl.Rect.Dx(), tmpl.Rect.Dy(), tnorm,
			image.Rect(0, 0, frame.Width()-tmpl.Rect.Dx()+1, frame.Height()-tmpl.Rect.Dy()+1))
	}
	integral := imaging.NewIntegral(smallFrame)

	coarse := make([]position, 0)
	for y := 0; y+sth <= smallFrame.Rect.Dy(); y++ {
		for x := 0; x+stw <= smallFrame.Rect.Dx(); x++ {
			s := correlate(smallFrame, integral.Stats, szt, stw, sth, snorm, x, y)
			coarse = append(coarse, position{x: x, y: y, score: s})
		}
	}
	sort.SliceStable(coarse, func(i, j int) bool {
		return coarse[i].score > coarse[j].score
	})

	// Peaks closer than half the template are the same match.
	sep := maxInt(1, minInt(stw, sth)/2)
	peaks := make([]position, 0, m.peaks)
	for _, p := range coarse {
		if len(peaks) == m.peaks {
			break
		}
		near := false
		for _, q := range peaks {
			if absInt(p.x-q.x) < sep && absInt(p.y-q.y) < sep {
				near = true
				break
			}
		}
		if !near {
			peaks = append(peaks, p)
		}
	}

	tw, th := tmpl.Rect.Dx(), tmpl.Rect.Dy()
	limit := image.Rect(0, 0, frame.Width()-tw+1, frame.Height()-th+1)
	best := position{score: math.Inf(-1)}
	for _, p := range peaks {
		window := image.Rect(p.x*f-f-1, p.y*f-f-1, p.x*f+f+2, p.y*f+f+2).Intersect(limit)
		cand := exhaustive(frame.Gray(), frame.Stats, zt, tw, th, tnorm, window)
		if cand.score > best.score {
			best = cand
		}
	}
	return best
}

// exhaustive correlates the template at every top-left position in area.
func exhaustive(gray *image.Gray, stats func(image.Rectangle) imaging.RegionStats, zt []float64, tw, th int, tnorm float64, area image.Rectangle) position {
	best := position{score: math.Inf(-1)}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			s := correlate(gray, stats, zt, tw, th, tnorm, x, y)
			if s > best.score {
				best = position{x: x, y: y, score: s}
			}
		}
	}
	return best
}

// correlate returns the normalized correlation of the zero-mean template
// with the window at (x, y). gray must be anchored at (0,0).
func correlate(gray *image.Gray, stats func(image.Rectangle) imaging.RegionStats, zt []float64, tw, th int, tnorm float64, x, y int) float64 {
	st := stats(image.Rect(x, y, x+tw, y+th))
	wnorm := math.Sqrt(st.Variance * float64(st.Pixels))
	if wnorm < 1e-6 {
		return 0
	}
	var dot float64
	for j := 0; j < th; j++ {
		row := gray.Pix[(y+j)*gray.Stride+x:]
		trow := zt[j*tw:]
		for i := 0; i < tw; i++ {
			dot += trow[i] * float64(row[i])
		}
	}
	return dot / (tnorm * wnorm)
}

// zeroMean returns the template with its mean removed and the L2 norm of
// the result.
func zeroMean(tmpl *image.Gray) ([]float64, float64) {
	w, h := tmpl.Rect.Dx(), tmpl.Rect.Dy()
	vals := make([]float64, w*h)
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(tmpl.Pix[y*tmpl.Stride+x])
			vals[y*w+x] = v
			sum += v
		}
	}
	mean := sum / float64(len(vals))
	var norm float64
	for i := range vals {
		vals[i] -= mean
		norm += vals[i] * vals[i]
	}
	return vals, math.Sqrt(norm)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
