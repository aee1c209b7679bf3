package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/incubatio/internal/logger"
	"github.com/Faultbox/incubatio/pkg/texpack"
)

// Load builds the effective config: defaults, then the config file, then
// flags. The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Output.Interval <= 0 {
		return fmt.Errorf("output.interval must be positive, got %v", c.Output.Interval)
	}
	if c.Output.Name == "" {
		return errors.New("output.name must not be empty")
	}
	if c.Output.Preview != "" {
		if _, err := texpack.ParseFormat(c.Output.Preview); err != nil {
			return fmt.Errorf("output.preview: %w", err)
		}
	}
	if c.Output.PreviewScale < 1 {
		return fmt.Errorf("output.preview_scale must be at least 1, got %d", c.Output.PreviewScale)
	}
	for idx := range c.Bones.Offsets {
		if idx < 0 {
			return fmt.Errorf("bones.offsets: negative joint index %d", idx)
		}
	}
	if c.Bones.Override.Enabled && c.Bones.Override.Bone < 0 {
		return fmt.Errorf("bones.override.bone: negative joint index %d", c.Bones.Override.Bone)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// findConfigFile returns the first existing file of ./texpack.yaml and the
// user config, or "".
func findConfigFile() string {
	for _, path := range []string{
		"texpack.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Incubatio")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Incubatio")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "incubatio")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "incubatio")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are errors so a
// misspelled section does not silently fall back to defaults. An empty file
// changes nothing.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
