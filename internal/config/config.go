// Package config loads websteps settings from a YAML file and the
// environment. Command-line flags are layered on top by cmd.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/websteps/internal/logging"
)

// DefaultFile is read when no --config is given and it exists in the
// working directory.
const DefaultFile = "websteps.yaml"

// Config holds every setting the CLI and server understand.
type Config struct {
	Driver          string        `yaml:"driver"`
	BaseURL         string        `yaml:"base_url"`
	Headless        bool          `yaml:"headless"`
	BrowserPath     string        `yaml:"browser_path"`
	UserAgent       string        `yaml:"user_agent"`
	Timeout         time.Duration `yaml:"timeout"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	StopOnError     bool          `yaml:"stop_on_error"`
	ScreenshotDir   string        `yaml:"screenshot_dir"`
	ScreenshotScale float64       `yaml:"screenshot_scale"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	MetricsAddr     string        `yaml:"metrics_addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Driver:          "chrome",
		Headless:        true,
		Timeout:         30 * time.Second,
		PollInterval:    200 * time.Millisecond,
		StopOnError:     true,
		ScreenshotScale: 1,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads path over the defaults, then applies WEBSTEPS_* environment
// overrides. Keys absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("loading config from %s: parsing YAML: %w", path, err)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Resolve loads path when it is set. Otherwise it loads DefaultFile if
// present, or falls back to the defaults plus environment overrides.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := Load(DefaultFile)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	cfg = Default()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"WEBSTEPS_DRIVER":         &cfg.Driver,
		"WEBSTEPS_BASE_URL":       &cfg.BaseURL,
		"WEBSTEPS_BROWSER_PATH":   &cfg.BrowserPath,
		"WEBSTEPS_SCREENSHOT_DIR": &cfg.ScreenshotDir,
		"WEBSTEPS_LOG_LEVEL":      &cfg.LogLevel,
		"WEBSTEPS_LOG_FORMAT":     &cfg.LogFormat,
		"WEBSTEPS_METRICS_ADDR":   &cfg.MetricsAddr,
	}
	for key, field := range strs {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
	if v := os.Getenv("WEBSTEPS_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("WEBSTEPS_HEADLESS: %w", err)
		}
		cfg.Headless = b
	}
	if v := os.Getenv("WEBSTEPS_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WEBSTEPS_POLL_INTERVAL: %w", err)
		}
		cfg.PollInterval = d
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("driver must be set")
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must not be negative, got %s", c.PollInterval)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.ScreenshotScale <= 0 || c.ScreenshotScale > 1 {
		return fmt.Errorf("screenshot_scale must be in (0, 1], got %g", c.ScreenshotScale)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}
