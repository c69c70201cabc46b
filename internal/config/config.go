package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	AppName         = "LocalFM CLI"
	AppTagline      = "Terminal player for your local music"
	AppDescription  = "A terminal-based single-track player for a local audio library"
	AppProjectShort = "github.com/glebovdev/localfm-cli"

	ConfigDir      = ".config/localfm"
	ConfigFileName = "config.yml"

	DefaultBarWidth = 50
	MinBarWidth     = 10
	MaxBarWidth     = 200

	DefaultTickMillis = 100
	MinTickMillis     = 20
	MaxTickMillis     = 1000
)

// AppVersion can be overridden at build time using ldflags:
// go build -ldflags "-X github.com/glebovdev/localfm-cli/internal/config.AppVersion=1.0.0"
var AppVersion = "dev"

type Config struct {
	// Extensions lists the file extensions (with leading dot) accepted when
	// scanning the library directory.
	Extensions []string `yaml:"extensions" env:"LOCALFM_EXTENSIONS" envSeparator:","`
	PauseKey   string   `yaml:"pause_key" env:"LOCALFM_PAUSE_KEY"`
	QuitKey    string   `yaml:"quit_key" env:"LOCALFM_QUIT_KEY"`
	BarWidth   int      `yaml:"bar_width" env:"LOCALFM_BAR_WIDTH"`
	TickMillis int      `yaml:"tick_ms" env:"LOCALFM_TICK_MS"`
}

// ClampBarWidth ensures the progress bar width is within [MinBarWidth, MaxBarWidth].
func ClampBarWidth(width int) int {
	if width < MinBarWidth {
		return MinBarWidth
	}
	if width > MaxBarWidth {
		return MaxBarWidth
	}
	return width
}

// ClampTickMillis ensures the polling interval is within [MinTickMillis, MaxTickMillis].
func ClampTickMillis(ms int) int {
	if ms < MinTickMillis {
		return MinTickMillis
	}
	if ms > MaxTickMillis {
		return MaxTickMillis
	}
	return ms
}

// TickInterval returns the polling interval shared by the stream worker and
// the control loop.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(ClampTickMillis(c.TickMillis)) * time.Millisecond
}

// PauseRune returns the pause/resume key, falling back to the default when
// the configured value is empty or longer than one rune.
func (c *Config) PauseRune() rune {
	return firstRune(c.PauseKey, 'p')
}

// QuitRune returns the quit key. Escape always quits regardless of this value.
func (c *Config) QuitRune() rune {
	return firstRune(c.QuitKey, 'q')
}

func firstRune(s string, fallback rune) rune {
	runes := []rune(s)
	if len(runes) != 1 {
		return fallback
	}
	return runes[0]
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(home, ConfigDir, ConfigFileName)
	return configPath, nil
}

// Load reads the config file if present, then applies LOCALFM_* environment
// overrides on top. A missing file falls back to defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	cfg.BarWidth = ClampBarWidth(cfg.BarWidth)
	cfg.TickMillis = ClampTickMillis(cfg.TickMillis)

	return cfg, nil
}

// EnsureConfigFile writes the default configuration on first run so users
// have a file to edit. An existing file is left untouched.
func EnsureConfigFile() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	return DefaultConfig().Save()
}

// Save writes the configuration to disk atomically using temp file + rename.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	tmpPath = "" // Prevent defer from removing the final file
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Extensions: []string{".flac", ".mp3", ".ogg", ".wav"},
		PauseKey:   "p",
		QuitKey:    "q",
		BarWidth:   DefaultBarWidth,
		TickMillis: DefaultTickMillis,
	}
}
