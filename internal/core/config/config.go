// Package config handles configuration loading and validation for tinydiff.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/colonyops/tinydiff/internal/core/styles"
	"gopkg.in/yaml.v3"
)

// Diff styles.
const (
	StyleSplit   = "split"
	StyleUnified = "unified"
)

// ThemeAuto picks a dark or light theme from the terminal background.
const ThemeAuto = "auto"

// Config holds the application configuration.
type Config struct {
	GitPath  string         `yaml:"git_path" toml:"git_path"`
	Diff     DiffConfig     `yaml:"diff" toml:"diff"`
	Tree     TreeConfig     `yaml:"tree" toml:"tree"`
	TUI      TUIConfig      `yaml:"tui" toml:"tui"`
	Watch    WatchConfig    `yaml:"watch" toml:"watch"`
	Comments CommentsConfig `yaml:"comments" toml:"comments"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	DataDir  string         `yaml:"-" toml:"-"` // set by caller, not from config file
}

// DiffConfig controls how diffs are rendered.
type DiffConfig struct {
	Style           string `yaml:"style" toml:"style"` // split or unified, used until a preference is saved
	ExpandUnchanged bool   `yaml:"expand_unchanged" toml:"expand_unchanged"`
	// Prerender pipes large diffs through delta before display.
	Prerender        bool          `yaml:"prerender" toml:"prerender"`
	PrerenderTimeout time.Duration `yaml:"prerender_timeout" toml:"prerender_timeout"`
	DeltaPath        string        `yaml:"delta_path" toml:"delta_path"`
}

// TreeConfig controls the file tree.
type TreeConfig struct {
	// Ignore hides changed files matching any doublestar glob.
	Ignore []string `yaml:"ignore" toml:"ignore"`
}

// TUIConfig controls terminal presentation.
type TUIConfig struct {
	Theme string `yaml:"theme" toml:"theme"`
	Icons bool   `yaml:"icons" toml:"icons"`
}

// WatchConfig controls filesystem watching.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" toml:"enabled"`
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// CommentsConfig controls comment persistence.
type CommentsConfig struct {
	// Dir is the repository-relative directory holding comments.json.
	Dir string `yaml:"dir" toml:"dir"`
}

// DatabaseConfig holds settings database options.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns" toml:"max_open_conns"`
	BusyTimeout  int `yaml:"busy_timeout" toml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GitPath: "git",
		Diff: DiffConfig{
			Style:            StyleSplit,
			Prerender:        false,
			PrerenderTimeout: 10 * time.Second,
			DeltaPath:        "delta",
		},
		Tree: TreeConfig{Ignore: []string{}},
		TUI:  TUIConfig{Theme: ThemeAuto, Icons: true},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 150 * time.Millisecond,
		},
		Comments: CommentsConfig{Dir: ".tinydiff"},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// Files ending in .toml are parsed as TOML, anything else as YAML. If
// configPath is empty or doesn't exist, returns defaults with the provided
// dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := decode(configPath, data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), cfg)
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.GitPath == "" {
		c.GitPath = defaults.GitPath
	}
	if c.Diff.Style == "" {
		c.Diff.Style = defaults.Diff.Style
	}
	if c.Diff.PrerenderTimeout == 0 {
		c.Diff.PrerenderTimeout = defaults.Diff.PrerenderTimeout
	}
	if c.Diff.DeltaPath == "" {
		c.Diff.DeltaPath = defaults.Diff.DeltaPath
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaults.Watch.Debounce
	}
	if c.Comments.Dir == "" {
		c.Comments.Dir = defaults.Comments.Dir
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.GitPath == "" {
		return fmt.Errorf("git_path cannot be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	switch c.Diff.Style {
	case StyleSplit, StyleUnified:
	default:
		return fmt.Errorf("diff.style must be %q or %q, got %q", StyleSplit, StyleUnified, c.Diff.Style)
	}

	if c.Diff.PrerenderTimeout < 0 {
		return fmt.Errorf("diff.prerender_timeout cannot be negative")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok && c.TUI.Theme != ThemeAuto {
		return fmt.Errorf("tui.theme must be auto or one of %s, got %q",
			strings.Join(styles.ThemeNames(), ", "), c.TUI.Theme)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce cannot be negative")
	}

	if filepath.IsAbs(c.Comments.Dir) || hasParentSegment(c.Comments.Dir) {
		return fmt.Errorf("comments.dir must be a path inside the repository, got %q", c.Comments.Dir)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	return nil
}

func hasParentSegment(p string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "tinydiff.log")
}

// BusyTimeoutDuration returns the database busy timeout as a duration.
func (d DatabaseConfig) BusyTimeoutDuration() time.Duration {
	return time.Duration(d.BusyTimeout) * time.Millisecond
}
