package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pders01/lull/internal/validation"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Operations lists the operation kinds the action can be wired to.
var Operations = []string{"random", "feed", "available", "match"}

type Config struct {
	Action   ActionConfig   `mapstructure:"action"`
	Random   RandomConfig   `mapstructure:"random"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
}

type ActionConfig struct {
	Debounce   time.Duration `mapstructure:"debounce"`
	ResetDelay time.Duration `mapstructure:"reset_delay"`
	Operation  string        `mapstructure:"operation"`
	StaleGuard bool          `mapstructure:"stale_guard"`
}

type RandomConfig struct {
	Delay     time.Duration `mapstructure:"delay"`
	Threshold float64       `mapstructure:"threshold"`
}

type FeedConfig struct {
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	AllowLocalhost bool          `mapstructure:"allow_localhost"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type UIConfig struct {
	Colors      UIColors `mapstructure:"colors"`
	Placeholder string   `mapstructure:"placeholder"`
	Initial     string   `mapstructure:"initial"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Warning   string `mapstructure:"warning"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type KeyConfig struct {
	Quit  string `mapstructure:"quit"`
	Clear string `mapstructure:"clear"`
	Help  string `mapstructure:"help"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Action: ActionConfig{
			Debounce:   1500 * time.Millisecond,
			ResetDelay: 1 * time.Second,
			Operation:  "random",
		},
		Random: RandomConfig{
			Delay:     1 * time.Second,
			Threshold: 0.5,
		},
		Feed: FeedConfig{
			HTTPTimeout: 10 * time.Second,
			UserAgent:   "lull/1.0 (https://github.com/pders01/lull)",
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(homeDir, ".lull.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(homeDir, ".lull", "index.bleve"),
		},
		Log: LogConfig{
			Level: "off",
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Warning:   "#FBBF24",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Placeholder: "type something",
			Initial:     "default value",
		},
		Keys: KeyConfig{
			Quit:  "ctrl+c",
			Clear: "ctrl+u",
			Help:  "f1",
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "lull", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range flatten("", toMap(defaultConfig())) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LULL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := expandPaths(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func expandPaths(cfg *Config) error {
	for _, p := range []*string{&cfg.Database.Path, &cfg.Database.SearchIndex, &cfg.Log.Path} {
		if *p == "" {
			continue
		}
		expanded, err := validation.ExpandPath(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate reports the first setting the application cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Action.Debounce <= 0:
		return fmt.Errorf("%w: action.debounce must be positive, got %s", ErrInvalid, c.Action.Debounce)
	case c.Action.ResetDelay <= 0:
		return fmt.Errorf("%w: action.reset_delay must be positive, got %s", ErrInvalid, c.Action.ResetDelay)
	case c.Random.Delay < 0:
		return fmt.Errorf("%w: random.delay must not be negative", ErrInvalid)
	case c.Random.Threshold < 0 || c.Random.Threshold > 1:
		return fmt.Errorf("%w: random.threshold must be within [0, 1], got %g", ErrInvalid, c.Random.Threshold)
	case c.Feed.HTTPTimeout <= 0:
		return fmt.Errorf("%w: feed.http_timeout must be positive", ErrInvalid)
	}

	for _, op := range Operations {
		if c.Action.Operation == op {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown action.operation %q (want one of %s)",
		ErrInvalid, c.Action.Operation, strings.Join(Operations, ", "))
}

// toMap renders cfg with durations as strings, the form both viper and the
// TOML encoder write out.
func toMap(cfg *Config) map[string]any {
	return map[string]any{
		"action": map[string]any{
			"debounce":    cfg.Action.Debounce.String(),
			"reset_delay": cfg.Action.ResetDelay.String(),
			"operation":   cfg.Action.Operation,
			"stale_guard": cfg.Action.StaleGuard,
		},
		"random": map[string]any{
			"delay":     cfg.Random.Delay.String(),
			"threshold": cfg.Random.Threshold,
		},
		"feed": map[string]any{
			"http_timeout":    cfg.Feed.HTTPTimeout.String(),
			"user_agent":      cfg.Feed.UserAgent,
			"allow_localhost": cfg.Feed.AllowLocalhost,
		},
		"database": map[string]any{
			"path":         cfg.Database.Path,
			"timeout":      cfg.Database.Timeout.String(),
			"search_index": cfg.Database.SearchIndex,
		},
		"log": map[string]any{
			"level": cfg.Log.Level,
			"path":  cfg.Log.Path,
		},
		"ui": map[string]any{
			"placeholder": cfg.UI.Placeholder,
			"initial":     cfg.UI.Initial,
			"colors": map[string]any{
				"primary":   cfg.UI.Colors.Primary,
				"secondary": cfg.UI.Colors.Secondary,
				"accent":    cfg.UI.Colors.Accent,
				"text":      cfg.UI.Colors.Text,
				"muted":     cfg.UI.Colors.Muted,
				"warning":   cfg.UI.Colors.Warning,
				"error":     cfg.UI.Colors.Error,
				"success":   cfg.UI.Colors.Success,
			},
		},
		"keys": map[string]any{
			"quit":  cfg.Keys.Quit,
			"clear": cfg.Keys.Clear,
			"help":  cfg.Keys.Help,
		},
	}
}

func flatten(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = v
	}
	return out
}

// ToTOML renders the effective configuration.
func (c *Config) ToTOML() ([]byte, error) {
	data, err := toml.Marshal(toMap(c))
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

func Save(config *Config, path string) error {
	v := viper.New()
	for section, values := range toMap(config) {
		v.Set(section, values)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
