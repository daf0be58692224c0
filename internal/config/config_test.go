package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if got := cfg.Detection.WindowSizes; len(got) != 4 || got[0] != 32 || got[3] != 96 {
		t.Errorf("window sizes: got %v, want [32 48 64 96]", got)
	}
	if cfg.Detection.MergeRadius != 50 {
		t.Errorf("merge radius: got %v, want 50", cfg.Detection.MergeRadius)
	}
	if cfg.Template.Threshold != 0.7 {
		t.Errorf("template threshold: got %v, want 0.7", cfg.Template.Threshold)
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("retry attempts: got %d, want 3", cfg.Retry.Attempts)
	}
	if cfg.Retry.Delay() != time.Second {
		t.Errorf("retry delay: got %v, want 1s", cfg.Retry.Delay())
	}
	if cfg.Label.Text != "Notepad" {
		t.Errorf("label text: got %q", cfg.Label.Text)
	}
	if cfg.Characteristic.MinScore != 15 {
		t.Errorf("characteristic min score: got %v, want 15", cfg.Characteristic.MinScore)
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("defaults should validate, got %v", ValidationErrors(errs))
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults with env override", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()
		SetDefaults()
		viper.SetEnvPrefix(EnvPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()
		t.Setenv("ICON_LOCATOR_RETRY_ATTEMPTS", "5")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Retry.Attempts != 5 {
			t.Errorf("retry attempts: got %d, want 5", cfg.Retry.Attempts)
		}
		if cfg.Template.CoarseFactor != 2 {
			t.Errorf("coarse factor: got %d, want 2", cfg.Template.CoarseFactor)
		}
	})

	t.Run("config file values", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()
		SetDefaults()

		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "label:\n  text: Terminal\ndetection:\n  window_sizes: [24, 40]\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			t.Fatalf("ReadInConfig failed: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Label.Text != "Terminal" {
			t.Errorf("label text: got %q, want Terminal", cfg.Label.Text)
		}
		if len(cfg.Detection.WindowSizes) != 2 || cfg.Detection.WindowSizes[1] != 40 {
			t.Errorf("window sizes: got %v", cfg.Detection.WindowSizes)
		}
		if cfg.Label.Margin != 30 {
			t.Errorf("unset keys keep defaults: margin got %d", cfg.Label.Margin)
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		viper.Reset()
		defer viper.Reset()
		SetDefaults()
		viper.Set("retry.attempts", 0)
		viper.Set("annotate.marker_color", "green")

		_, err := Load()
		if err == nil {
			t.Fatal("expected validation error")
		}
		verrs, ok := err.(ValidationErrors)
		if !ok {
			t.Fatalf("error type: got %T, want ValidationErrors", err)
		}
		if len(verrs) != 2 {
			t.Errorf("validation errors: got %d, want 2: %v", len(verrs), verrs)
		}
	})
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := ConfigDir(); got != "/custom/config/icon-locator" {
			t.Errorf("ConfigDir() = %q", got)
		}
		if got := ConfigFile(); got != "/custom/config/icon-locator/config.yaml" {
			t.Errorf("ConfigFile() = %q", got)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		want := filepath.Join(home, ".config", "icon-locator")
		if got := ConfigDir(); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})
}

func TestHistoryResolvePath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	h := HistoryConfig{}
	if got := h.ResolvePath(); got != "/data/icon-locator/history.db" {
		t.Errorf("default path: got %q", got)
	}
	h.Path = "/tmp/custom.db"
	if got := h.ResolvePath(); got != "/tmp/custom.db" {
		t.Errorf("explicit path: got %q", got)
	}
}
