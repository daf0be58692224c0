package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "retry.attempts")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateDetection()...)
	errors = append(errors, c.validateTemplate()...)
	errors = append(errors, c.validateLabel()...)
	errors = append(errors, c.validateGeneric()...)

	if c.Characteristic.MinLines < 0 || c.Characteristic.MaxLines < c.Characteristic.MinLines {
		errors = append(errors, ValidationError{
			Field:   "characteristic.max_lines",
			Value:   c.Characteristic.MaxLines,
			Message: "must be >= min_lines and min_lines must be non-negative",
		})
	}
	if c.Characteristic.MaxContrast <= c.Characteristic.MinContrast {
		errors = append(errors, ValidationError{
			Field:   "characteristic.max_contrast",
			Value:   c.Characteristic.MaxContrast,
			Message: "must be greater than min_contrast",
		})
	}

	if c.Grid.LabelHeight <= 0 || c.Grid.LabelHalfWidth <= 0 {
		errors = append(errors, ValidationError{
			Field:   "grid.label_height",
			Value:   fmt.Sprintf("%dx%d", c.Grid.LabelHalfWidth*2, c.Grid.LabelHeight),
			Message: "grid label region must have positive size",
		})
	}

	if c.Retry.Attempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "retry.attempts",
			Value:   c.Retry.Attempts,
			Message: "must be at least 1",
		})
	}
	if c.Retry.DelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "retry.delay_ms",
			Value:   c.Retry.DelayMs,
			Message: "must be non-negative",
		})
	}

	if c.Capture.TimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "capture.timeout_ms",
			Value:   c.Capture.TimeoutMs,
			Message: "must be positive",
		})
	}

	if _, err := colorful.Hex(c.Annotate.MarkerColor); err != nil {
		errors = append(errors, ValidationError{
			Field:   "annotate.marker_color",
			Value:   c.Annotate.MarkerColor,
			Message: "must be a hex color like #00FF00",
		})
	}
	if c.Annotate.Radius <= 0 {
		errors = append(errors, ValidationError{
			Field:   "annotate.radius",
			Value:   c.Annotate.Radius,
			Message: "must be positive",
		})
	}

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateDetection() []ValidationError {
	var errors []ValidationError
	d := c.Detection

	if len(d.WindowSizes) == 0 {
		errors = append(errors, ValidationError{
			Field:   "detection.window_sizes",
			Value:   d.WindowSizes,
			Message: "at least one window size is required",
		})
	}
	for _, size := range d.WindowSizes {
		if size < 4 {
			errors = append(errors, ValidationError{
				Field:   "detection.window_sizes",
				Value:   size,
				Message: "window sizes must be at least 4 pixels",
			})
		}
	}
	if d.StrideRatio <= 0 || d.StrideRatio > 1 {
		errors = append(errors, ValidationError{
			Field:   "detection.stride_ratio",
			Value:   d.StrideRatio,
			Message: "must be in (0, 1]",
		})
	}
	if d.MergeRadius < 0 {
		errors = append(errors, ValidationError{
			Field:   "detection.merge_radius",
			Value:   d.MergeRadius,
			Message: "must be non-negative",
		})
	}
	if d.MaxVariance <= d.MinVariance {
		errors = append(errors, ValidationError{
			Field:   "detection.max_variance",
			Value:   d.MaxVariance,
			Message: "must be greater than min_variance",
		})
	}
	if d.MaxMean <= d.MinMean {
		errors = append(errors, ValidationError{
			Field:   "detection.max_mean",
			Value:   d.MaxMean,
			Message: "must be greater than min_mean",
		})
	}
	if d.MaxEdgeDensity <= d.MinEdgeDensity {
		errors = append(errors, ValidationError{
			Field:   "detection.max_edge_density",
			Value:   d.MaxEdgeDensity,
			Message: "must be greater than min_edge_density",
		})
	}
	if d.CannyLow < 0 || d.CannyLow > d.CannyHigh {
		errors = append(errors, ValidationError{
			Field:   "detection.canny_low",
			Value:   fmt.Sprintf("%d/%d", d.CannyLow, d.CannyHigh),
			Message: "canny thresholds must satisfy 0 <= low <= high",
		})
	}
	return errors
}

func (c *Config) validateTemplate() []ValidationError {
	var errors []ValidationError
	if c.Template.Threshold <= 0 || c.Template.Threshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "template.threshold",
			Value:   c.Template.Threshold,
			Message: "must be in (0, 1]",
		})
	}
	if c.Template.CoarseFactor < 1 {
		errors = append(errors, ValidationError{
			Field:   "template.coarse_factor",
			Value:   c.Template.CoarseFactor,
			Message: "must be at least 1",
		})
	}
	if c.Template.RefinePeaks < 1 {
		errors = append(errors, ValidationError{
			Field:   "template.refine_peaks",
			Value:   c.Template.RefinePeaks,
			Message: "must be at least 1",
		})
	}
	if c.Template.CaptureSize <= 0 || c.Template.CaptureMargin < 0 {
		errors = append(errors, ValidationError{
			Field:   "template.capture_size",
			Value:   c.Template.CaptureSize,
			Message: "capture size must be positive and margin non-negative",
		})
	}
	return errors
}

func (c *Config) validateLabel() []ValidationError {
	var errors []ValidationError
	l := c.Label
	if l.Height <= 0 {
		errors = append(errors, ValidationError{
			Field:   "label.height",
			Value:   l.Height,
			Message: "must be positive",
		})
	}
	if l.DarkThreshold < 1 || l.DarkThreshold > 255 {
		errors = append(errors, ValidationError{
			Field:   "label.dark_threshold",
			Value:   l.DarkThreshold,
			Message: "must be between 1 and 255",
		})
	}
	if l.ColumnCoverage <= 0 || l.ColumnCoverage >= 1 {
		errors = append(errors, ValidationError{
			Field:   "label.column_coverage",
			Value:   l.ColumnCoverage,
			Message: "must be in (0, 1)",
		})
	}
	if (l.MinRuns > 0 || l.MaxRuns > 0) && l.MaxRuns < l.MinRuns {
		errors = append(errors, ValidationError{
			Field:   "label.max_runs",
			Value:   l.MaxRuns,
			Message: "must be >= min_runs",
		})
	}
	return errors
}

func (c *Config) validateGeneric() []ValidationError {
	var errors []ValidationError
	g := c.Generic
	if g.BlobMinArea <= 0 || g.BlobMaxArea < g.BlobMinArea {
		errors = append(errors, ValidationError{
			Field:   "generic.blob_max_area",
			Value:   fmt.Sprintf("%d..%d", g.BlobMinArea, g.BlobMaxArea),
			Message: "blob area range must be positive and ordered",
		})
	}
	for _, level := range g.BlobThresholds {
		if level < 1 || level > 255 {
			errors = append(errors, ValidationError{
				Field:   "generic.blob_thresholds",
				Value:   level,
				Message: "thresholds must be between 1 and 255",
			})
		}
	}
	if g.ShapeMinSize <= 0 || g.ShapeMaxSize < g.ShapeMinSize {
		errors = append(errors, ValidationError{
			Field:   "generic.shape_max_size",
			Value:   fmt.Sprintf("%d..%d", g.ShapeMinSize, g.ShapeMaxSize),
			Message: "shape size range must be positive and ordered",
		})
	}
	if g.ShapeMinAspect <= 0 || g.ShapeMaxAspect < g.ShapeMinAspect {
		errors = append(errors, ValidationError{
			Field:   "generic.shape_max_aspect",
			Value:   fmt.Sprintf("%.2f..%.2f", g.ShapeMinAspect, g.ShapeMaxAspect),
			Message: "aspect range must be positive and ordered",
		})
	}
	return errors
}
