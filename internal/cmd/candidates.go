package cmd

import (
	"image"

	"github.com/ironsheep/icon-locator/internal/grounding"
	"github.com/ironsheep/icon-locator/internal/imaging"
	"github.com/spf13/cobra"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List the deduplicated icon candidates of a screenshot",
	Args:  cobra.NoArgs,
	RunE:  runCandidates,
}

var (
	candidatesImage string
	candidatesLimit int
	candidatesSizes []int
	candidatesBoxes string
)

func init() {
	candidatesCmd.Flags().StringVarP(&candidatesImage, "image", "i", "", "screenshot to scan")
	candidatesCmd.Flags().IntVarP(&candidatesLimit, "limit", "n", 20, "maximum candidates to print")
	candidatesCmd.Flags().IntSliceVar(&candidatesSizes, "sizes", nil, "window sizes in pixels (default from config)")
	candidatesCmd.Flags().StringVar(&candidatesBoxes, "annotate", "", "save the frame with the printed candidates boxed to this path")
	_ = candidatesCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(candidatesCmd)
}

func runCandidates(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	img, err := imaging.Open(candidatesImage)
	if err != nil {
		return err
	}
	frame := imaging.NewFrame(img)

	gen := grounding.NewGenerator(a.cfg.Detection)
	merged := grounding.Merge(gen.Generate(frame, candidatesSizes), a.cfg.Detection.MergeRadius)
	if candidatesLimit > 0 && len(merged) > candidatesLimit {
		merged = merged[:candidatesLimit]
	}

	if candidatesBoxes != "" {
		ac := a.cfg.Annotate
		annotator, err := imaging.NewAnnotator(ac.MarkerColor, ac.Radius, ac.Thickness, ac.DotRadius)
		if err != nil {
			return err
		}
		rects := make([]image.Rectangle, len(merged))
		for i, c := range merged {
			rects[i] = c.Rect()
		}
		if err := imaging.SaveAnnotated(candidatesBoxes, annotator.Boxes(frame, rects)); err != nil {
			return err
		}
	}
	return writeJSON(cmd.OutOrStdout(), merged)
}
