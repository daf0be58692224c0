package grounding

import (
	"reflect"
	"testing"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/imaging"
)

func TestGenerator_UniformFrame(t *testing.T) {
	gen := NewGenerator(config.Default().Detection)
	frame := imaging.NewFrameFromGray(uniformGray(320, 240, 128))

	if got := gen.Generate(frame, nil); len(got) != 0 {
		t.Errorf("uniform frame: got %d candidates, want 0", len(got))
	}
}

func TestGenerator_SmallFrame(t *testing.T) {
	gen := NewGenerator(config.Default().Detection)
	// No window fits strictly inside a frame equal to the window size.
	frame := imaging.NewFrameFromGray(textured(32, 32, 4, 7))

	if got := gen.Generate(frame, []int{32}); len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
}

func TestGenerator_Gates(t *testing.T) {
	cfg := config.Default().Detection
	gen := NewGenerator(cfg)
	frame := iconScene()

	candidates := gen.Generate(frame, nil)
	if len(candidates) == 0 {
		t.Fatal("expected candidates around the icon")
	}

	sizes := map[int]bool{32: true, 48: true, 64: true, 96: true}
	edges := frame.EdgeMap(cfg.CannyLow, cfg.CannyHigh)
	for _, c := range candidates {
		if !sizes[c.Size] {
			t.Fatalf("unexpected size %d", c.Size)
		}
		r := c.Rect()
		if !r.In(frame.Bounds()) {
			t.Fatalf("window %v outside frame", r)
		}
		if r.Min.X%(c.Size/2) != 0 || r.Min.Y%(c.Size/2) != 0 {
			t.Fatalf("window %v not on the size/2 stride grid", r)
		}
		st := frame.Stats(r)
		if st.Variance <= cfg.MinVariance || st.Variance >= cfg.MaxVariance {
			t.Errorf("%+v: variance %.1f outside gate", c, st.Variance)
		}
		if st.Mean <= cfg.MinMean || st.Mean >= cfg.MaxMean {
			t.Errorf("%+v: mean %.1f outside gate", c, st.Mean)
		}
		d := edges.Density(r)
		if d <= cfg.MinEdgeDensity || d >= cfg.MaxEdgeDensity {
			t.Errorf("%+v: edge density %.3f outside gate", c, d)
		}
		if want := st.Variance * d * (st.Std / st.Mean); c.Score != want {
			t.Errorf("%+v: score %.3f, want %.3f", c, c.Score, want)
		}
	}
}

func TestGenerator_BestNearIcon(t *testing.T) {
	gen := NewGenerator(config.Default().Detection)
	merged := gen.Candidates(iconScene())
	if len(merged) == 0 {
		t.Fatal("expected candidates")
	}
	best := merged[0]
	if d := distance(best, Candidate{X: 400, Y: 300}); d > 40 {
		t.Errorf("best candidate %+v is %.1f px from the icon", best, d)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	gen := NewGenerator(config.Default().Detection)
	a := gen.Candidates(iconScene())
	b := gen.Candidates(iconScene())
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs over the same scene differ")
	}
}

func TestGenerator_ExplicitSizes(t *testing.T) {
	gen := NewGenerator(config.Default().Detection)
	for _, c := range gen.Generate(iconScene(), []int{32}) {
		if c.Size != 32 {
			t.Fatalf("got size %d with sizes {32}", c.Size)
		}
	}
}
