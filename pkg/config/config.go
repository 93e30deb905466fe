// Package config handles loading and saving sk configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/skein/config.yaml
//   - Data:    ~/.local/share/skein/
//   - State:   ~/.local/state/skein/ (view state fallback)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// UIConfig holds display preference settings.
type UIConfig struct {
	IndentWidth   int     `yaml:"indent_width,omitempty"`   // Columns of offset per reply depth
	MaxIndent     int     `yaml:"max_indent,omitempty"`     // Depth cap for the offset
	CollapseDepth int     `yaml:"collapse_depth,omitempty"` // Auto-collapse below this depth on open (0 = fully expanded)
	ShowDeleted   *bool   `yaml:"show_deleted,omitempty"`   // Deleted comments visible by default
	TimeFormat    string  `yaml:"time_format,omitempty"`    // relative, absolute
	Theme         string  `yaml:"theme,omitempty"`          // auto, dark, light
	SplitRatio    float64 `yaml:"split_ratio,omitempty"`    // Detail pane ratio (0.2-0.8)
}

// Config is the top-level configuration for sk.
type Config struct {
	UI UIConfig `yaml:"ui,omitempty"`

	// DefaultSource is opened when sk is run without a path argument and
	// discovery finds nothing in the working directory.
	DefaultSource string `yaml:"default_source,omitempty"`

	// Columns selects the row cells left of the body snippet, in order.
	// Known names: pinned, author, score, age, avatar, replies.
	Columns []string `yaml:"columns,omitempty"`

	// Icons maps numeric avatar ids to glyphs; an id beyond the list wraps
	// around.
	Icons []string `yaml:"icons,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			IndentWidth: 2,
			MaxIndent:   12,
			TimeFormat:  "relative",
			Theme:       "auto",
			SplitRatio:  0.4,
		},
		Columns: []string{"pinned", "author", "score", "age"},
		Icons:   []string{"●", "◆", "▲", "■", "◇", "○"},
	}
}

// ConfigDir returns the XDG config directory for sk.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "skein")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "skein")
}

// DataDir returns the XDG data directory for sk.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "skein")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "skein")
}

// StateDir returns the XDG state directory for sk.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "skein")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "skein")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DefaultSource = expandHome(cfg.DefaultSource)
	cfg.normalize()
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DeletedVisible resolves the show_deleted setting, defaulting to true.
func (c Config) DeletedVisible() bool {
	if c.UI.ShowDeleted == nil {
		return true
	}
	return *c.UI.ShowDeleted
}

// RelativeTime reports whether timestamps render as "3h ago" rather than
// absolute dates.
func (c Config) RelativeTime() bool {
	return !strings.EqualFold(c.UI.TimeFormat, "absolute")
}

// Icon resolves a numeric avatar id against the icon set, wrapping around.
func (c Config) Icon(id int) string {
	if len(c.Icons) == 0 || id < 0 {
		return ""
	}
	return c.Icons[id%len(c.Icons)]
}

// normalize clamps out-of-range values back to usable ones rather than
// failing the load over a typo.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.UI.IndentWidth < 0 || c.UI.IndentWidth > 8 {
		c.UI.IndentWidth = def.UI.IndentWidth
	}
	if c.UI.MaxIndent < 1 || c.UI.MaxIndent > 64 {
		c.UI.MaxIndent = def.UI.MaxIndent
	}
	if c.UI.CollapseDepth < 0 {
		c.UI.CollapseDepth = 0
	}
	if c.UI.SplitRatio < 0.2 || c.UI.SplitRatio > 0.8 {
		c.UI.SplitRatio = def.UI.SplitRatio
	}
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		c.UI.Theme = def.UI.Theme
	}
	if len(c.Columns) == 0 {
		c.Columns = def.Columns
	}
	if len(c.Icons) == 0 {
		c.Icons = def.Icons
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
