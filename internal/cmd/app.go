package cmd

import (
	"fmt"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/grounding"
	"github.com/ironsheep/icon-locator/internal/history"
	"github.com/ironsheep/icon-locator/internal/logging"
	"github.com/ironsheep/icon-locator/internal/ocr"
)

// app holds what every command needs: the loaded configuration and the
// collaborators built from it.
type app struct {
	cfg        *config.Config
	logger     *logging.Logger
	recognizer grounding.Recognizer
	history    *history.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	if cfg.OCR.Enabled {
		t := ocr.NewTesseract(cfg.OCR.Language, cfg.OCR.TessdataPrefix)
		if t.Available() {
			a.recognizer = t
		} else {
			logger.Info("tesseract not available, labels are verified by stroke counting")
		}
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.ResolvePath())
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			a.history = store
		}
	}

	return a, nil
}

func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history", "error", err)
		}
	}
	_ = a.logger.Close()
}
