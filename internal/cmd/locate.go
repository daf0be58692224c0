package cmd

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/ironsheep/icon-locator/internal/capture"
	"github.com/ironsheep/icon-locator/internal/grounding"
	"github.com/ironsheep/icon-locator/internal/history"
	"github.com/ironsheep/icon-locator/internal/imaging"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Find the icon and print its center as JSON",
	Long: `Capture the screen (or read --image) and run the detection strategies
in priority order until one finds the icon:

  template        correlation with the reference icon
  label_verified  candidate whose label text matches
  characteristic  document-like candidate (ruled lines, contrast, text below)
  grid_verified   label check at a fixed offset below the best candidate
  generic         largest dark blob or icon-shaped contour, unverified

Screen captures are retried; an image file is searched once. Exits non-zero
when the icon is not found.`,
	Args: cobra.NoArgs,
	RunE: runLocate,
}

var (
	locateImage    string
	locateLabel    string
	locateTemplate string
	locateAnnotate string
)

func init() {
	locateCmd.Flags().StringVarP(&locateImage, "image", "i", "", "screenshot to search instead of the screen")
	locateCmd.Flags().StringVarP(&locateLabel, "label", "l", "", "label text under the icon (default from config)")
	locateCmd.Flags().StringVar(&locateTemplate, "template", "", "reference icon image (default from config)")
	locateCmd.Flags().StringVar(&locateAnnotate, "annotate", "", "save the frame with the detection marked to this path")
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := *a.cfg
	if locateTemplate != "" {
		cfg.Template.Path = locateTemplate
	}
	label := locateLabel
	if label == "" {
		label = cfg.Label.Text
	}

	var source grounding.FrameSource
	retry := cfg.Retry
	sourceName := "screen"
	if locateImage != "" {
		source = capture.NewFileSource(locateImage, nil)
		retry.Attempts = 1
		sourceName = locateImage
	} else {
		source = capture.NewScreenSource(cfg.Capture, a.logger)
	}

	chain := grounding.NewChain(source, grounding.NewStrategies(&cfg, a.recognizer, a.logger), retry, a.logger)
	start := time.Now()
	res, err := chain.Locate(cmd.Context(), label)
	if a.history != nil {
		if herr := a.history.Record(cmd.Context(), history.FromResult(label, sourceName, res, err, time.Since(start))); herr != nil {
			a.logger.Warn("failed to record history", "error", herr)
		}
	}
	if err != nil {
		if grounding.IsNotFound(err) {
			_ = writeJSON(cmd.OutOrStdout(), map[string]interface{}{"found": false, "label": label})
		}
		return err
	}

	if locateAnnotate != "" {
		annotator, err := imaging.NewAnnotator(cfg.Annotate.MarkerColor, cfg.Annotate.Radius, cfg.Annotate.Thickness, cfg.Annotate.DotRadius)
		if err != nil {
			return err
		}
		caption := fmt.Sprintf("%s (%s %.2f)", label, res.Method, res.Confidence)
		img := annotator.Mark(res.Frame(), image.Pt(res.X, res.Y), caption)
		if err := imaging.SaveAnnotated(locateAnnotate, img); err != nil {
			return err
		}
	}

	return writeJSON(cmd.OutOrStdout(), struct {
		Found bool `json:"found"`
		*grounding.Result
	}{true, res})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
