package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"smile/pkg/utils"
)

// Config holds the settings shared by the console, desktop and remote
// front-ends.
type Config struct {
	// MaxSteps bounds the instructions executed per run; 0 means no limit.
	MaxSteps int           `yaml:"max_steps"`
	Trace    bool          `yaml:"trace"`
	Desktop  DesktopConfig `yaml:"desktop"`
	Remote   RemoteConfig  `yaml:"remote"`

	// Path is the absolute path the configuration was loaded from.
	Path string `yaml:"-"`
}

// DesktopConfig sizes the windowed console. Columns and Rows count text
// cells; Scale multiplies the window size.
type DesktopConfig struct {
	Title   string  `yaml:"title"`
	Columns int     `yaml:"columns"`
	Rows    int     `yaml:"rows"`
	Scale   float64 `yaml:"scale"`
}

// RemoteConfig configures the websocket front-end. MaxSteps applies to
// each session in place of the top-level limit and must be positive so
// that a looping program cannot hold a session slot forever.
type RemoteConfig struct {
	Addr        string `yaml:"addr"`
	Path        string `yaml:"path"`
	MaxSessions int    `yaml:"max_sessions"`
	MaxSteps    int    `yaml:"max_steps"`
}

// DefaultRemoteMaxSteps is the per-session instruction budget.
const DefaultRemoteMaxSteps = 1_000_000

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Desktop: DesktopConfig{
			Title:   "SMILE",
			Columns: 64,
			Rows:    32,
			Scale:   2,
		},
		Remote: RemoteConfig{
			Addr:        ":8080",
			Path:        "/run",
			MaxSessions: 16,
			MaxSteps:    DefaultRemoteMaxSteps,
		},
	}
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load overlays the YAML file at path on Default. An empty path returns the
// defaults unchanged. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	absPath, _, err := utils.GetPathInfo(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	if err := cfg.decode(file); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	cfg.Path = absPath
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var issues []string
	if c.MaxSteps < 0 {
		issues = append(issues, fmt.Sprintf("max_steps must not be negative (got %d)", c.MaxSteps))
	}
	if c.Desktop.Columns <= 0 || c.Desktop.Rows <= 0 {
		issues = append(issues, fmt.Sprintf("desktop grid must be positive (got %dx%d)", c.Desktop.Columns, c.Desktop.Rows))
	}
	if c.Desktop.Scale <= 0 {
		issues = append(issues, "desktop.scale must be positive")
	}
	if c.Remote.Path == "" || !strings.HasPrefix(c.Remote.Path, "/") {
		issues = append(issues, fmt.Sprintf("remote.path must start with '/' (got %q)", c.Remote.Path))
	}
	if c.Remote.MaxSessions < 0 {
		issues = append(issues, "remote.max_sessions must not be negative")
	}
	if c.Remote.MaxSteps <= 0 {
		issues = append(issues, fmt.Sprintf("remote.max_steps must be positive (got %d)", c.Remote.MaxSteps))
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
