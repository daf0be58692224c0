package grounding

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/detection"
	"github.com/ironsheep/icon-locator/internal/imaging"
	"github.com/ironsheep/icon-locator/internal/logging"
)

// Strategy is one way of finding the icon in a frame.
//
// Attempt returns nil with a nil error when the strategy ran and found
// nothing acceptable. A returned candidate carries its Method and
// Confidence.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, frame *imaging.Frame, label string) (*Candidate, error)
}

// Confidences reported by the strategies that have no natural score.
const (
	ocrLabelConfidence     = 0.8
	strokeLabelConfidence  = 0.6
	gridVerifiedConfidence = 0.5
	genericConfidence      = 0.2
)

// NewStrategies builds the standard strategy list in priority order.
func NewStrategies(cfg *config.Config, recognizer Recognizer, logger *logging.Logger) []Strategy {
	gen := NewGenerator(cfg.Detection)
	verifier := NewLabelVerifier(cfg.Label, recognizer, logger)
	return []Strategy{
		NewTemplateStrategy(NewTemplateMatcher(cfg.Template), cfg.Template.Path),
		NewLabelVerifiedStrategy(gen, verifier),
		NewCharacteristicStrategy(gen, cfg.Characteristic, cfg.Label, cfg.Detection),
		NewGridStrategy(gen, verifier, cfg.Grid),
		NewGenericStrategy(cfg.Generic, cfg.Detection),
	}
}

// TemplateStrategy matches the reference template, if one exists.
type TemplateStrategy struct {
	matcher *TemplateMatcher
	load    func() (*image.Gray, error)
}

// NewTemplateStrategy loads the template from path on every attempt, so a
// template captured while the program runs is picked up.
func NewTemplateStrategy(matcher *TemplateMatcher, path string) *TemplateStrategy {
	return &TemplateStrategy{
		matcher: matcher,
		load:    func() (*image.Gray, error) { return LoadTemplate(path) },
	}
}

// NewTemplateStrategyFromImage matches a template already in memory.
func NewTemplateStrategyFromImage(matcher *TemplateMatcher, tmpl *image.Gray) *TemplateStrategy {
	return &TemplateStrategy{
		matcher: matcher,
		load:    func() (*image.Gray, error) { return tmpl, nil },
	}
}

func (s *TemplateStrategy) Name() string { return MethodTemplate }

func (s *TemplateStrategy) Attempt(ctx context.Context, frame *imaging.Frame, label string) (*Candidate, error) {
	tmpl, err := s.load()
	if errors.Is(err, ErrTemplateUnavailable) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c, err := s.matcher.Match(frame, tmpl)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LabelVerifiedStrategy accepts the highest-scoring feature candidate whose
// label region verifies.
type LabelVerifiedStrategy struct {
	gen      *Generator
	verifier *LabelVerifier
}

func NewLabelVerifiedStrategy(gen *Generator, verifier *LabelVerifier) *LabelVerifiedStrategy {
	return &LabelVerifiedStrategy{gen: gen, verifier: verifier}
}

func (s *LabelVerifiedStrategy) Name() string { return MethodLabelVerified }

func (s *LabelVerifiedStrategy) Attempt(ctx context.Context, frame *imaging.Frame, label string) (*Candidate, error) {
	for _, c := range s.gen.Candidates(frame) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := s.verifier.Inspect(ctx, frame, s.verifier.LabelRegion(frame, c), label)
		if !v.Verified {
			continue
		}
		c.Method = MethodLabelVerified
		c.Confidence = strokeLabelConfidence
		if v.Method == VerifiedByOCR {
			c.Confidence = ocrLabelConfidence
		}
		return &c, nil
	}
	return nil, nil
}

// CharacteristicStrategy re-ranks feature candidates by how much they look
// like a document icon: a few ruled lines, moderate contrast and textured
// pixels where the label should be.
type CharacteristicStrategy struct {
	gen       *Generator
	cfg       config.CharacteristicConfig
	label     config.LabelConfig
	cannyLow  int
	cannyHigh int
}

func NewCharacteristicStrategy(gen *Generator, cfg config.CharacteristicConfig, label config.LabelConfig, detect config.DetectionConfig) *CharacteristicStrategy {
	return &CharacteristicStrategy{
		gen:       gen,
		cfg:       cfg,
		label:     label,
		cannyLow:  detect.CannyLow,
		cannyHigh: detect.CannyHigh,
	}
}

func (s *CharacteristicStrategy) Name() string { return MethodCharacteristic }

func (s *CharacteristicStrategy) Attempt(ctx context.Context, frame *imaging.Frame, label string) (*Candidate, error) {
	var best *Candidate
	bestScore := 0.0
	for _, c := range s.gen.Candidates(frame) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score := s.composite(frame, c)
		if best == nil || score > bestScore {
			picked := c
			best, bestScore = &picked, score
		}
	}
	if best == nil || bestScore <= s.cfg.MinScore {
		return nil, nil
	}

	best.Score = bestScore
	best.Method = MethodCharacteristic
	best.Confidence = bestScore / s.maxScore()
	if best.Confidence > 1 {
		best.Confidence = 1
	}
	return best, nil
}

func (s *CharacteristicStrategy) maxScore() float64 {
	total := s.cfg.LineWeight + s.cfg.ContrastWeight + s.cfg.TextWeight
	if total <= 0 {
		return 1
	}
	return total
}

// composite scores one candidate. Each feature adds its weight when present.
func (s *CharacteristicStrategy) composite(frame *imaging.Frame, c Candidate) float64 {
	region := c.Rect().Intersect(frame.Bounds())
	if region.Empty() {
		return 0
	}

	var score float64
	edges := imaging.Canny(frame.GrayRegion(region), s.cannyLow, s.cannyHigh)
	rows := edges.RowCounts(image.Rect(0, 0, edges.Width(), edges.Height()))
	lines := detection.CountLines(rows, s.cfg.LineFactor)
	if lines >= s.cfg.MinLines && lines <= s.cfg.MaxLines {
		score += s.cfg.LineWeight
	}

	std := frame.Stats(region).Std
	if std > s.cfg.MinContrast && std < s.cfg.MaxContrast {
		score += s.cfg.ContrastWeight
	}

	textY := c.Y + c.Size/2 + s.label.Margin
	if textY < frame.Height()-s.label.Height {
		text := image.Rect(c.X-c.Size, textY, c.X+c.Size, textY+s.label.Height).Intersect(frame.Bounds())
		if frame.Stats(text).Variance > s.cfg.TextVariance {
			score += s.cfg.TextWeight
		}
	}
	return score
}

// GridStrategy takes the single best feature candidate and accepts it only
// if a fixed-size strip below it verifies as the label.
type GridStrategy struct {
	gen      *Generator
	verifier *LabelVerifier
	cfg      config.GridConfig
}

func NewGridStrategy(gen *Generator, verifier *LabelVerifier, cfg config.GridConfig) *GridStrategy {
	return &GridStrategy{gen: gen, verifier: verifier, cfg: cfg}
}

func (s *GridStrategy) Name() string { return MethodGridVerified }

func (s *GridStrategy) Attempt(ctx context.Context, frame *imaging.Frame, label string) (*Candidate, error) {
	candidates := s.gen.Candidates(frame)
	if len(candidates) == 0 {
		return nil, nil
	}
	c := candidates[0]

	textY := c.Y + s.cfg.LabelOffset
	if textY >= frame.Height()-s.cfg.LabelHeight {
		return nil, nil
	}
	r := image.Rect(c.X-s.cfg.LabelHalfWidth, textY, c.X+s.cfg.LabelHalfWidth, textY+s.cfg.LabelHeight)
	if !s.verifier.VerifyRegion(ctx, frame, r, label) {
		return nil, nil
	}
	c.Method = MethodGridVerified
	c.Confidence = gridVerifiedConfidence
	return &c, nil
}

// GenericStrategy is the unverified last resort: the most icon-like dark
// blob, or failing that the largest icon-shaped edge contour.
type GenericStrategy struct {
	blobs     detection.BlobOptions
	shapes    detection.ShapeOptions
	cannyLow  int
	cannyHigh int
}

func NewGenericStrategy(cfg config.GenericConfig, detect config.DetectionConfig) *GenericStrategy {
	levels := make([]uint8, 0, len(cfg.BlobThresholds))
	for _, t := range cfg.BlobThresholds {
		levels = append(levels, uint8(t))
	}
	return &GenericStrategy{
		blobs: detection.BlobOptions{
			Levels:  levels,
			MinArea: cfg.BlobMinArea,
			MaxArea: cfg.BlobMaxArea,
		},
		shapes: detection.ShapeOptions{
			MinSize:   cfg.ShapeMinSize,
			MaxSize:   cfg.ShapeMaxSize,
			MinAspect: cfg.ShapeMinAspect,
			MaxAspect: cfg.ShapeMaxAspect,
		},
		cannyLow:  detect.CannyLow,
		cannyHigh: detect.CannyHigh,
	}
}

func (s *GenericStrategy) Name() string { return MethodGeneric }

func (s *GenericStrategy) Attempt(ctx context.Context, frame *imaging.Frame, label string) (*Candidate, error) {
	if blobs := detection.FindDarkBlobs(frame.Gray(), s.blobs); len(blobs) > 0 {
		b := blobs[0]
		return &Candidate{
			X:          b.Center.X,
			Y:          b.Center.Y,
			Size:       maxInt(b.Bounds.X2-b.Bounds.X1, b.Bounds.Y2-b.Bounds.Y1),
			Score:      b.Score(),
			Method:     MethodGeneric,
			Confidence: genericConfidence,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shapes := detection.FindIconShapes(frame.EdgeMap(s.cannyLow, s.cannyHigh), s.shapes)
	if len(shapes) == 0 {
		return nil, nil
	}
	sh := shapes[0]
	return &Candidate{
		X:          sh.Center.X,
		Y:          sh.Center.Y,
		Size:       maxInt(sh.Width, sh.Height),
		Score:      float64(sh.Area),
		Method:     MethodGeneric,
		Confidence: genericConfidence,
	}, nil
}
