package grounding

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/imaging"
)

func TestTemplateMatcher_SelfMatch(t *testing.T) {
	tests := []struct {
		name   string
		factor int
		at     image.Point
	}{
		{"coarse to fine", 2, image.Pt(60, 40)},
		{"coarse to fine odd offset", 2, image.Pt(61, 43)},
		{"exhaustive", 1, image.Pt(100, 70)},
		{"coarse factor 4", 4, image.Pt(120, 24)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene := textured(200, 150, 4, 11)
			tmpl := subGray(scene, image.Rect(tt.at.X, tt.at.Y, tt.at.X+32, tt.at.Y+32))

			cfg := config.Default().Template
			cfg.CoarseFactor = tt.factor
			c, err := NewTemplateMatcher(cfg).Match(imaging.NewFrameFromGray(scene), tmpl)
			if err != nil {
				t.Fatalf("Match failed: %v", err)
			}
			if c == nil {
				t.Fatal("template not found in its own source")
			}
			wantX, wantY := tt.at.X+16, tt.at.Y+16
			if absInt(c.X-wantX) > 2 || absInt(c.Y-wantY) > 2 {
				t.Errorf("center: got (%d,%d), want (%d,%d)", c.X, c.Y, wantX, wantY)
			}
			if c.Confidence < cfg.Threshold {
				t.Errorf("confidence %.3f below threshold", c.Confidence)
			}
			if c.Method != MethodTemplate {
				t.Errorf("method: got %q", c.Method)
			}
		})
	}
}

func TestTemplateMatcher_NoMatch(t *testing.T) {
	matcher := NewTemplateMatcher(config.Default().Template)
	tmpl := subGray(textured(64, 64, 4, 3), image.Rect(0, 0, 32, 32))

	t.Run("flat frame", func(t *testing.T) {
		c, err := matcher.Match(imaging.NewFrameFromGray(uniformGray(120, 90, 128)), tmpl)
		if err != nil || c != nil {
			t.Errorf("got (%v, %v), want no match", c, err)
		}
	})

	t.Run("flat template", func(t *testing.T) {
		c, err := matcher.Match(imaging.NewFrameFromGray(textured(120, 90, 4, 5)), uniformGray(16, 16, 90))
		if err != nil || c != nil {
			t.Errorf("got (%v, %v), want no match", c, err)
		}
	})

	t.Run("unrelated texture", func(t *testing.T) {
		c, err := matcher.Match(imaging.NewFrameFromGray(textured(120, 90, 7, 99)), tmpl)
		if err != nil {
			t.Fatalf("Match failed: %v", err)
		}
		if c != nil && c.Confidence >= 0.9 {
			t.Errorf("unexpected strong match %+v", c)
		}
	})
}

func TestTemplateMatcher_TemplateTooLarge(t *testing.T) {
	matcher := NewTemplateMatcher(config.Default().Template)
	_, err := matcher.Match(imaging.NewFrameFromGray(textured(40, 40, 4, 1)), textured(64, 20, 4, 2))
	if err == nil {
		t.Error("expected error for template wider than frame")
	}
}

func TestLoadTemplate(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := LoadTemplate(filepath.Join(t.TempDir(), "icon.png"))
		if !errors.Is(err, ErrTemplateUnavailable) {
			t.Errorf("got %v, want ErrTemplateUnavailable", err)
		}
	})

	t.Run("present", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "icon.png")
		if err := imaging.Save(textured(24, 24, 3, 8), path); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		tmpl, err := LoadTemplate(path)
		if err != nil {
			t.Fatalf("LoadTemplate failed: %v", err)
		}
		if tmpl.Bounds() != image.Rect(0, 0, 24, 24) {
			t.Errorf("bounds: got %v", tmpl.Bounds())
		}
	})

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "icon.png")
		if err := writeFile(path, []byte("not a png")); err != nil {
			t.Fatal(err)
		}
		_, err := LoadTemplate(path)
		if !errors.Is(err, ErrTemplateUnavailable) {
			t.Errorf("got %v, want ErrTemplateUnavailable", err)
		}
	})
}
