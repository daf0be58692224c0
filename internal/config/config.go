// Package config holds the immutable configuration for icon detection.
//
// Values come from viper: built-in defaults registered by SetDefaults, an
// optional YAML file, and ICON_LOCATOR_* environment variables. Load builds a
// Config once and validates it; the detection pipeline only ever reads it.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// ICON_LOCATOR_RETRY_ATTEMPTS=5.
const EnvPrefix = "ICON_LOCATOR"

// Config is the complete detection configuration.
type Config struct {
	Detection      DetectionConfig      `mapstructure:"detection"`
	Template       TemplateConfig       `mapstructure:"template"`
	Label          LabelConfig          `mapstructure:"label"`
	Characteristic CharacteristicConfig `mapstructure:"characteristic"`
	Grid           GridConfig           `mapstructure:"grid"`
	Generic        GenericConfig        `mapstructure:"generic"`
	Retry          RetryConfig          `mapstructure:"retry"`
	Capture        CaptureConfig        `mapstructure:"capture"`
	OCR            OCRConfig            `mapstructure:"ocr"`
	Annotate       AnnotateConfig       `mapstructure:"annotate"`
	History        HistoryConfig        `mapstructure:"history"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Server         ServerConfig         `mapstructure:"server"`
}

// DetectionConfig controls the multi-scale candidate generator and the
// candidate deduplicator.
type DetectionConfig struct {
	// WindowSizes are the square window edges scanned, in pixels.
	WindowSizes []int `mapstructure:"window_sizes"`
	// StrideRatio is the window step as a fraction of the window size.
	StrideRatio float64 `mapstructure:"stride_ratio"`
	// MergeRadius is the minimum distance between retained candidates.
	MergeRadius float64 `mapstructure:"merge_radius"`

	// Acceptance gates; all bounds are exclusive.
	MinVariance    float64 `mapstructure:"min_variance"`
	MaxVariance    float64 `mapstructure:"max_variance"`
	MinMean        float64 `mapstructure:"min_mean"`
	MaxMean        float64 `mapstructure:"max_mean"`
	MinStd         float64 `mapstructure:"min_std"`
	MinEdgeDensity float64 `mapstructure:"min_edge_density"`
	MaxEdgeDensity float64 `mapstructure:"max_edge_density"`

	// Canny thresholds on the 0-255 gradient scale.
	CannyLow  int `mapstructure:"canny_low"`
	CannyHigh int `mapstructure:"canny_high"`
}

// TemplateConfig controls template correlation.
type TemplateConfig struct {
	Path      string  `mapstructure:"path"`
	Threshold float64 `mapstructure:"threshold"`
	// CoarseFactor is the downscale factor of the first search pass.
	// 1 searches every full-resolution position.
	CoarseFactor int `mapstructure:"coarse_factor"`
	// RefinePeaks is how many coarse peaks are refined at full resolution.
	RefinePeaks int `mapstructure:"refine_peaks"`
	// CaptureMargin is added to the icon size when capturing a new template.
	CaptureMargin int `mapstructure:"capture_margin"`
	CaptureSize   int `mapstructure:"capture_size"`
}

// LabelConfig controls label text verification.
type LabelConfig struct {
	Text string `mapstructure:"text"`
	// Margin is the gap between the icon's bottom edge and the label region.
	Margin int `mapstructure:"margin"`
	Height int `mapstructure:"height"`
	// DarkThreshold is the gray level below which a pixel counts as ink.
	DarkThreshold int `mapstructure:"dark_threshold"`
	// ColumnCoverage is the fraction of region height a column needs in ink.
	ColumnCoverage float64 `mapstructure:"column_coverage"`
	// MinRuns and MaxRuns override the stroke band derived from the label
	// length when both are positive.
	MinRuns int `mapstructure:"min_runs"`
	MaxRuns int `mapstructure:"max_runs"`
}

// CharacteristicConfig holds the weights and thresholds of document-like
// candidate scoring.
type CharacteristicConfig struct {
	LineFactor     float64 `mapstructure:"line_factor"`
	MinLines       int     `mapstructure:"min_lines"`
	MaxLines       int     `mapstructure:"max_lines"`
	LineWeight     float64 `mapstructure:"line_weight"`
	MinContrast    float64 `mapstructure:"min_contrast"`
	MaxContrast    float64 `mapstructure:"max_contrast"`
	ContrastWeight float64 `mapstructure:"contrast_weight"`
	TextVariance   float64 `mapstructure:"text_variance"`
	TextWeight     float64 `mapstructure:"text_weight"`
	MinScore       float64 `mapstructure:"min_score"`
}

// GridConfig is the fixed label geometry used by the grid scan.
type GridConfig struct {
	LabelOffset    int `mapstructure:"label_offset"`
	LabelHalfWidth int `mapstructure:"label_half_width"`
	LabelHeight    int `mapstructure:"label_height"`
}

// GenericConfig controls the unverified blob and shape fallback.
type GenericConfig struct {
	BlobMinArea    int     `mapstructure:"blob_min_area"`
	BlobMaxArea    int     `mapstructure:"blob_max_area"`
	BlobThresholds []int   `mapstructure:"blob_thresholds"`
	ShapeMinSize   int     `mapstructure:"shape_min_size"`
	ShapeMaxSize   int     `mapstructure:"shape_max_size"`
	ShapeMinAspect float64 `mapstructure:"shape_min_aspect"`
	ShapeMaxAspect float64 `mapstructure:"shape_max_aspect"`
}

// RetryConfig bounds the attempt loop.
type RetryConfig struct {
	Attempts int `mapstructure:"attempts"`
	DelayMs  int `mapstructure:"delay_ms"`
}

// Delay returns the pause between attempts.
func (c *RetryConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// CaptureConfig controls screen capture.
type CaptureConfig struct {
	Display int `mapstructure:"display"`
	// FallbackCommands are tried in order when in-process capture fails.
	// "{file}" is replaced with the transient PNG path.
	FallbackCommands []string `mapstructure:"fallback_commands"`
	TimeoutMs        int      `mapstructure:"timeout_ms"`
}

// Timeout returns the per-command timeout for fallback capture.
func (c *CaptureConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// OCRConfig controls the optional text recognizer.
type OCRConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Language string `mapstructure:"language"`
	// TessdataPrefix overrides TESSDATA_PREFIX when set.
	TessdataPrefix string `mapstructure:"tessdata_prefix"`
}

// AnnotateConfig controls diagnostic screenshots.
type AnnotateConfig struct {
	Dir         string `mapstructure:"dir"`
	MarkerColor string `mapstructure:"marker_color"`
	Radius      int    `mapstructure:"radius"`
	Thickness   int    `mapstructure:"thickness"`
	DotRadius   int    `mapstructure:"dot_radius"`
}

// HistoryConfig controls the detection history store.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Path of the SQLite database. Empty means history.db in DataDir().
	Path string `mapstructure:"path"`
}

// ResolvePath returns the database path, applying the default location.
func (c *HistoryConfig) ResolvePath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(DataDir(), "history.db")
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// File is the JSON log destination. Empty logs to stderr.
	File string `mapstructure:"file"`
}

// ServerConfig controls the tool server transports.
type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Detection: DetectionConfig{
			WindowSizes:    []int{32, 48, 64, 96},
			StrideRatio:    0.5,
			MergeRadius:    50,
			MinVariance:    300,
			MaxVariance:    8000,
			MinMean:        40,
			MaxMean:        220,
			MinStd:         15,
			MinEdgeDensity: 0.05,
			MaxEdgeDensity: 0.5,
			CannyLow:       50,
			CannyHigh:      150,
		},
		Template: TemplateConfig{
			Path:          filepath.Join("resources", "icons", "notepad_icon.png"),
			Threshold:     0.7,
			CoarseFactor:  2,
			RefinePeaks:   5,
			CaptureMargin: 20,
			CaptureSize:   64,
		},
		Label: LabelConfig{
			Text:           "Notepad",
			Margin:         30,
			Height:         30,
			DarkThreshold:  128,
			ColumnCoverage: 0.3,
		},
		Characteristic: CharacteristicConfig{
			LineFactor:     1.5,
			MinLines:       2,
			MaxLines:       5,
			LineWeight:     10,
			MinContrast:    20,
			MaxContrast:    60,
			ContrastWeight: 5,
			TextVariance:   500,
			TextWeight:     10,
			MinScore:       15,
		},
		Grid: GridConfig{
			LabelOffset:    40,
			LabelHalfWidth: 60,
			LabelHeight:    30,
		},
		Generic: GenericConfig{
			BlobMinArea:    400,
			BlobMaxArea:    10000,
			BlobThresholds: []int{64, 96, 128},
			ShapeMinSize:   20,
			ShapeMaxSize:   150,
			ShapeMinAspect: 0.7,
			ShapeMaxAspect: 1.3,
		},
		Retry: RetryConfig{
			Attempts: 3,
			DelayMs:  1000,
		},
		Capture: CaptureConfig{
			Display: 0,
			FallbackCommands: []string{
				"gnome-screenshot -f {file}",
				"scrot -o {file}",
				"import -window root {file}",
				"screencapture -x {file}",
			},
			TimeoutMs: 10000,
		},
		OCR: OCRConfig{
			Enabled:  true,
			Language: "eng",
		},
		Annotate: AnnotateConfig{
			Dir:         "screenshots",
			MarkerColor: "#00FF00",
			Radius:      30,
			Thickness:   3,
			DotRadius:   5,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			HTTPAddr: "127.0.0.1:8765",
		},
	}
}

// SetDefaults registers every default with viper so that environment
// variables and config files can override individual keys.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("detection.window_sizes", defaults.Detection.WindowSizes)
	viper.SetDefault("detection.stride_ratio", defaults.Detection.StrideRatio)
	viper.SetDefault("detection.merge_radius", defaults.Detection.MergeRadius)
	viper.SetDefault("detection.min_variance", defaults.Detection.MinVariance)
	viper.SetDefault("detection.max_variance", defaults.Detection.MaxVariance)
	viper.SetDefault("detection.min_mean", defaults.Detection.MinMean)
	viper.SetDefault("detection.max_mean", defaults.Detection.MaxMean)
	viper.SetDefault("detection.min_std", defaults.Detection.MinStd)
	viper.SetDefault("detection.min_edge_density", defaults.Detection.MinEdgeDensity)
	viper.SetDefault("detection.max_edge_density", defaults.Detection.MaxEdgeDensity)
	viper.SetDefault("detection.canny_low", defaults.Detection.CannyLow)
	viper.SetDefault("detection.canny_high", defaults.Detection.CannyHigh)

	viper.SetDefault("template.path", defaults.Template.Path)
	viper.SetDefault("template.threshold", defaults.Template.Threshold)
	viper.SetDefault("template.coarse_factor", defaults.Template.CoarseFactor)
	viper.SetDefault("template.refine_peaks", defaults.Template.RefinePeaks)
	viper.SetDefault("template.capture_margin", defaults.Template.CaptureMargin)
	viper.SetDefault("template.capture_size", defaults.Template.CaptureSize)

	viper.SetDefault("label.text", defaults.Label.Text)
	viper.SetDefault("label.margin", defaults.Label.Margin)
	viper.SetDefault("label.height", defaults.Label.Height)
	viper.SetDefault("label.dark_threshold", defaults.Label.DarkThreshold)
	viper.SetDefault("label.column_coverage", defaults.Label.ColumnCoverage)
	viper.SetDefault("label.min_runs", defaults.Label.MinRuns)
	viper.SetDefault("label.max_runs", defaults.Label.MaxRuns)

	viper.SetDefault("characteristic.line_factor", defaults.Characteristic.LineFactor)
	viper.SetDefault("characteristic.min_lines", defaults.Characteristic.MinLines)
	viper.SetDefault("characteristic.max_lines", defaults.Characteristic.MaxLines)
	viper.SetDefault("characteristic.line_weight", defaults.Characteristic.LineWeight)
	viper.SetDefault("characteristic.min_contrast", defaults.Characteristic.MinContrast)
	viper.SetDefault("characteristic.max_contrast", defaults.Characteristic.MaxContrast)
	viper.SetDefault("characteristic.contrast_weight", defaults.Characteristic.ContrastWeight)
	viper.SetDefault("characteristic.text_variance", defaults.Characteristic.TextVariance)
	viper.SetDefault("characteristic.text_weight", defaults.Characteristic.TextWeight)
	viper.SetDefault("characteristic.min_score", defaults.Characteristic.MinScore)

	viper.SetDefault("grid.label_offset", defaults.Grid.LabelOffset)
	viper.SetDefault("grid.label_half_width", defaults.Grid.LabelHalfWidth)
	viper.SetDefault("grid.label_height", defaults.Grid.LabelHeight)

	viper.SetDefault("generic.blob_min_area", defaults.Generic.BlobMinArea)
	viper.SetDefault("generic.blob_max_area", defaults.Generic.BlobMaxArea)
	viper.SetDefault("generic.blob_thresholds", defaults.Generic.BlobThresholds)
	viper.SetDefault("generic.shape_min_size", defaults.Generic.ShapeMinSize)
	viper.SetDefault("generic.shape_max_size", defaults.Generic.ShapeMaxSize)
	viper.SetDefault("generic.shape_min_aspect", defaults.Generic.ShapeMinAspect)
	viper.SetDefault("generic.shape_max_aspect", defaults.Generic.ShapeMaxAspect)

	viper.SetDefault("retry.attempts", defaults.Retry.Attempts)
	viper.SetDefault("retry.delay_ms", defaults.Retry.DelayMs)

	viper.SetDefault("capture.display", defaults.Capture.Display)
	viper.SetDefault("capture.fallback_commands", defaults.Capture.FallbackCommands)
	viper.SetDefault("capture.timeout_ms", defaults.Capture.TimeoutMs)

	viper.SetDefault("ocr.enabled", defaults.OCR.Enabled)
	viper.SetDefault("ocr.language", defaults.OCR.Language)
	viper.SetDefault("ocr.tessdata_prefix", defaults.OCR.TessdataPrefix)

	viper.SetDefault("annotate.dir", defaults.Annotate.Dir)
	viper.SetDefault("annotate.marker_color", defaults.Annotate.MarkerColor)
	viper.SetDefault("annotate.radius", defaults.Annotate.Radius)
	viper.SetDefault("annotate.thickness", defaults.Annotate.Thickness)
	viper.SetDefault("annotate.dot_radius", defaults.Annotate.DotRadius)

	viper.SetDefault("history.enabled", defaults.History.Enabled)
	viper.SetDefault("history.path", defaults.History.Path)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)

	viper.SetDefault("server.http_addr", defaults.Server.HTTPAddr)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "icon-locator")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".icon-locator"
	}
	return filepath.Join(home, ".config", "icon-locator")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the directory for persistent state such as history.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "icon-locator")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".icon-locator"
	}
	return filepath.Join(home, ".local", "share", "icon-locator")
}
