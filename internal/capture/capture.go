package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/imaging"
	"github.com/ironsheep/icon-locator/internal/logging"
)

// ErrNoDisplay is returned by the in-process grabber when no active display
// can be found, e.g. on a headless host.
var ErrNoDisplay = errors.New("no active display")

// CaptureError reports that neither the in-process grab nor any fallback
// command produced an image.
type CaptureError struct {
	Primary  error
	Fallback error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("failed to capture screen: primary: %v; fallback: %v", e.Primary, e.Fallback)
}

// Unwrap exposes both causes to errors.Is and errors.As.
func (e *CaptureError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Primary != nil {
		errs = append(errs, e.Primary)
	}
	if e.Fallback != nil {
		errs = append(errs, e.Fallback)
	}
	return errs
}

// ScreenSource captures the live screen.
type ScreenSource struct {
	display  int
	commands []string
	timeout  time.Duration
	logger   *logging.Logger

	grab func(display int) (image.Image, error)
	run  func(ctx context.Context, name string, args ...string) error
}

// NewScreenSource creates a screen source from the capture configuration.
// A nil logger discards log output.
func NewScreenSource(cfg config.CaptureConfig, logger *logging.Logger) *ScreenSource {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &ScreenSource{
		display:  cfg.Display,
		commands: cfg.FallbackCommands,
		timeout:  cfg.Timeout(),
		logger:   logger,
		grab:     grabDisplay,
		run:      runCommand,
	}
}

// Capture returns a fresh frame of the configured display.
func (s *ScreenSource) Capture(ctx context.Context) (*imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, primaryErr := s.grab(s.display)
	if primaryErr == nil {
		return imaging.NewFrame(img), nil
	}
	s.logger.Debug("in-process capture failed", "display", s.display, "error", primaryErr)

	img, fallbackErr := s.captureWithCommands(ctx)
	if fallbackErr == nil {
		return imaging.NewFrame(img), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, &CaptureError{Primary: primaryErr, Fallback: fallbackErr}
}

// captureWithCommands tries each fallback command in order until one writes
// a decodable image.
func (s *ScreenSource) captureWithCommands(ctx context.Context) (image.Image, error) {
	if len(s.commands) == 0 {
		return nil, errors.New("no fallback commands configured")
	}

	errs := make([]error, 0, len(s.commands))
	for _, command := range s.commands {
		img, err := s.captureWithCommand(ctx, command)
		if err == nil {
			return img, nil
		}
		s.logger.Debug("fallback capture failed", "command", command, "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

func (s *ScreenSource) captureWithCommand(ctx context.Context, command string) (image.Image, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("empty fallback command")
	}

	tmp, err := os.CreateTemp("", "icon-locator-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	args := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		args = append(args, strings.ReplaceAll(f, "{file}", path))
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.run(runCtx, fields[0], args...); err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", fields[0], err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s output: %w", fields[0], err)
	}
	return img, nil
}

func grabDisplay(display int) (img image.Image, err error) {
	// The X11 backend can panic when no server is reachable.
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("screen grab panicked: %v", r)
		}
	}()

	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplay
	}
	if display < 0 || display >= n {
		return nil, fmt.Errorf("display %d out of range (%d active)", display, n)
	}
	rgba, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(display))
	if err != nil {
		return nil, fmt.Errorf("failed to grab display %d: %w", display, err)
	}
	return rgba, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, path, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// FileSource reads frames from an image file. Every Capture returns the same
// decoded frame when a cache is supplied.
type FileSource struct {
	path  string
	cache *imaging.FrameCache
}

// NewFileSource creates a source for path. cache may be nil.
func NewFileSource(path string, cache *imaging.FrameCache) *FileSource {
	return &FileSource{path: path, cache: cache}
}

// Path returns the image path.
func (s *FileSource) Path() string { return s.path }

// Capture decodes the image file into a frame.
func (s *FileSource) Capture(ctx context.Context) (*imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cache != nil {
		f, err := s.cache.Load(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load frame: %w", err)
		}
		return f, nil
	}
	img, err := imaging.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load frame: %w", err)
	}
	return imaging.NewFrame(img), nil
}
