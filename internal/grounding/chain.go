package grounding

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/imaging"
	"github.com/ironsheep/icon-locator/internal/logging"
)

// FrameSource supplies a fresh frame for every attempt.
type FrameSource interface {
	Capture(ctx context.Context) (*imaging.Frame, error)
}

// State is the chain's position in a Locate run.
type State int32

const (
	StateIdle State = iota
	StateAttempting
	StateSuccess
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttempting:
		return "attempting"
	case StateSuccess:
		return "success"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Result is the located icon.
type Result struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Size       int     `json:"size"`
	Method     string  `json:"method"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`

	// Attempts is the number of attempts made, including the successful one.
	Attempts int    `json:"attempts"`
	RunID    string `json:"run_id"`

	frame *imaging.Frame
}

// Frame returns the frame the icon was found in.
func (r *Result) Frame() *imaging.Frame {
	return r.frame
}

// Chain runs strategies in priority order over fresh frames until one of
// them finds the icon or the attempts run out.
type Chain struct {
	source     FrameSource
	strategies []Strategy
	attempts   int
	delay      time.Duration
	logger     *logging.Logger

	state atomic.Int32
	sleep func(ctx context.Context, d time.Duration) error
}

// NewChain creates a chain. A nil logger discards log output.
func NewChain(source FrameSource, strategies []Strategy, retry config.RetryConfig, logger *logging.Logger) *Chain {
	if logger == nil {
		logger = logging.NopLogger()
	}
	attempts := retry.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return &Chain{
		source:     source,
		strategies: strategies,
		attempts:   attempts,
		delay:      retry.Delay(),
		logger:     logger,
		sleep:      sleepContext,
	}
}

// State returns the state of the current or most recent run.
func (c *Chain) State() State {
	return State(c.state.Load())
}

func (c *Chain) setState(log *logging.Logger, s State) {
	c.state.Store(int32(s))
	log.Debug("chain state", "state", s.String())
}

// Locate searches for the icon labelled label.
//
// Each attempt captures a new frame and tries every strategy in order; the
// first candidate returned wins. A failed capture uses up an attempt. The
// chain sleeps between attempts but not after the last one, and returns a
// *NotFoundError matching ErrNotFound once all attempts are spent.
// Cancelling ctx stops the run with the context's error.
func (c *Chain) Locate(ctx context.Context, label string) (*Result, error) {
	runID := uuid.NewString()
	log := c.logger.WithRun(runID)
	c.setState(log, StateIdle)
	log.Info("locate started", "label", label, "attempts", c.attempts)

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.setState(log, StateAttempting)
		alog := log.WithAttempt(attempt)

		cand, frame, err := c.attempt(ctx, alog, label)
		if err != nil {
			return nil, err
		}
		if cand != nil {
			c.setState(log, StateSuccess)
			res := &Result{
				X:          cand.X,
				Y:          cand.Y,
				Size:       cand.Size,
				Method:     cand.Method,
				Confidence: cand.Confidence,
				Label:      label,
				Attempts:   attempt,
				RunID:      runID,
				frame:      frame,
			}
			alog.Info("icon located", "x", res.X, "y", res.Y, "method", res.Method, "confidence", res.Confidence)
			return res, nil
		}

		if attempt < c.attempts {
			alog.Info("attempt failed, retrying", "delay", c.delay.String())
			if err := c.sleep(ctx, c.delay); err != nil {
				return nil, err
			}
		}
	}

	c.setState(log, StateExhausted)
	log.Warn("icon not found", "attempts", c.attempts)
	return nil, &NotFoundError{RunID: runID, Attempts: c.attempts}
}

// attempt captures one frame and runs the strategies over it. It returns an
// error only when ctx is done.
func (c *Chain) attempt(ctx context.Context, log *logging.Logger, label string) (*Candidate, *imaging.Frame, error) {
	frame, err := c.source.Capture(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		log.Warn("capture failed", "error", err)
		return nil, nil, nil
	}
	log.Debug("frame captured", "width", frame.Width(), "height", frame.Height())

	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		stratLog := log.WithStrategy(s.Name())
		start := time.Now()
		cand, err := runStrategy(ctx, s, frame, label)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		if err != nil {
			stratLog.Error("strategy failed", "error", err)
			continue
		}
		if cand == nil {
			stratLog.Debug("no match", "elapsed", time.Since(start).String())
			continue
		}
		if cand.Method == "" {
			cand.Method = s.Name()
		}
		stratLog.Debug("match", "x", cand.X, "y", cand.Y, "score", cand.Score, "elapsed", time.Since(start).String())
		return cand, frame, nil
	}
	return nil, nil, nil
}

// runStrategy converts a panic inside a strategy into an error.
func runStrategy(ctx context.Context, s Strategy, frame *imaging.Frame, label string) (cand *Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cand, err = nil, fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Attempt(ctx, frame, label)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsNotFound reports whether err is the chain's negative result.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
