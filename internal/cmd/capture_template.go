package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/icon-locator/internal/capture"
	"github.com/ironsheep/icon-locator/internal/grounding"
	"github.com/ironsheep/icon-locator/internal/imaging"
	"github.com/spf13/cobra"
)

var captureTemplateCmd = &cobra.Command{
	Use:   "capture-template",
	Short: "Save the region around a point as the reference icon",
	Long: `Crop a square of size+margin pixels centered on --x/--y from the screen
(or --image) and save it as the template used by the template strategy.`,
	Args: cobra.NoArgs,
	RunE: runCaptureTemplate,
}

var (
	templateX      int
	templateY      int
	templateSize   int
	templateImage  string
	templateOutput string
)

func init() {
	captureTemplateCmd.Flags().IntVar(&templateX, "x", 0, "icon center X")
	captureTemplateCmd.Flags().IntVar(&templateY, "y", 0, "icon center Y")
	captureTemplateCmd.Flags().IntVar(&templateSize, "size", 0, "icon size in pixels (default from config)")
	captureTemplateCmd.Flags().StringVarP(&templateImage, "image", "i", "", "screenshot to crop instead of the screen")
	captureTemplateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "template path (default from config)")
	_ = captureTemplateCmd.MarkFlagRequired("x")
	_ = captureTemplateCmd.MarkFlagRequired("y")
	rootCmd.AddCommand(captureTemplateCmd)
}

func runCaptureTemplate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	size := templateSize
	if size <= 0 {
		size = a.cfg.Template.CaptureSize
	}
	output := templateOutput
	if output == "" {
		output = a.cfg.Template.Path
	}

	var source grounding.FrameSource
	if templateImage != "" {
		source = capture.NewFileSource(templateImage, nil)
	} else {
		source = capture.NewScreenSource(a.cfg.Capture, a.logger)
	}
	frame, err := source.Capture(cmd.Context())
	if err != nil {
		return err
	}

	r := imaging.CenteredRect(templateX, templateY, size+a.cfg.Template.CaptureMargin)
	if !r.In(frame.Bounds()) {
		return fmt.Errorf("template region %v outside frame %v", r, frame.Bounds())
	}
	region, err := imaging.CropRegion(frame.Color(), r)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}
	if err := imaging.Save(region, output); err != nil {
		return err
	}
	a.logger.Info("template saved", "path", output, "region", r.String())
	fmt.Fprintf(cmd.OutOrStdout(), "Template saved to %s (%dx%d)\n", output, r.Dx(), r.Dy())
	return nil
}
