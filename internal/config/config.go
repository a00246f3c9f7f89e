package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/jeanpaul/recall/internal/srs"
)

type Config struct {
	Database  string       `yaml:"database" mapstructure:"database"`
	Delimiter string       `yaml:"delimiter" mapstructure:"delimiter"`
	Speech    SpeechConfig `yaml:"speech" mapstructure:"speech"`
	Table     TableConfig  `yaml:"table" mapstructure:"table"`
	Review    ReviewConfig `yaml:"review" mapstructure:"review"`
}

type SpeechConfig struct {
	Command        string `yaml:"command" mapstructure:"command"`
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

type TableConfig struct {
	Steps        int `yaml:"steps" mapstructure:"steps"`
	HorizonHours int `yaml:"horizon_hours" mapstructure:"horizon_hours"`
}

type ReviewConfig struct {
	Typed        bool `yaml:"typed" mapstructure:"typed"`
	SessionLimit int  `yaml:"session_limit" mapstructure:"session_limit"`
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func DefaultConfig() *Config {
	return &Config{
		Delimiter: ",",
		Speech: SpeechConfig{
			Enabled:        true,
			TimeoutSeconds: 10,
		},
		Table: TableConfig{
			Steps:        srs.DefaultSteps,
			HorizonHours: srs.DefaultHorizonHours,
		},
	}
}

// Path returns where the config file is expected.
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "recall", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "recall", "config.yaml")
}

// DefaultDatabasePath returns where the collection lives when the
// config does not name a database.
func DefaultDatabasePath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "recall", "recall.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "recall", "recall.db")
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths
	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "recall"))
	}
	home, _ := os.UserHomeDir()
	viper.AddConfigPath(filepath.Join(home, ".config", "recall"))

	// Environment variables: RECALL_DELIMITER, RECALL_SPEECH_COMMAND, ...
	viper.SetEnvPrefix("RECALL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Registering defaults makes AutomaticEnv see every key even when
	// no config file exists.
	viper.SetDefault("database", cfg.Database)
	viper.SetDefault("delimiter", cfg.Delimiter)
	viper.SetDefault("speech.command", cfg.Speech.Command)
	viper.SetDefault("speech.enabled", cfg.Speech.Enabled)
	viper.SetDefault("speech.timeout_seconds", cfg.Speech.TimeoutSeconds)
	viper.SetDefault("table.steps", cfg.Table.Steps)
	viper.SetDefault("table.horizon_hours", cfg.Table.HorizonHours)
	viper.SetDefault("review.typed", cfg.Review.Typed)
	viper.SetDefault("review.session_limit", cfg.Review.SessionLimit)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error produced
			return nil, err
		}
		// Config file not found; ignore and use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Manual expansion for keys in config file
	cfg.Database = expandEnv(cfg.Database)
	cfg.Speech.Command = expandEnv(cfg.Speech.Command)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("config: delimiter %q must be a single character", c.Delimiter)
	}
	if c.Table.Steps < 1 {
		c.Table.Steps = srs.DefaultSteps
	}
	if c.Table.HorizonHours < 1 {
		c.Table.HorizonHours = srs.DefaultHorizonHours
	}
	if c.Speech.TimeoutSeconds < 1 {
		c.Speech.TimeoutSeconds = 10
	}
	if c.Review.SessionLimit < 0 {
		c.Review.SessionLimit = 0
	}
	return nil
}

// DatabasePath resolves the collection location, falling back to the
// XDG data directory when the config leaves it unset.
func (c *Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return DefaultDatabasePath()
}

// DelimiterRune returns the import field separator as a rune.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// SpeechTimeout returns the per-utterance timeout as a duration.
func (c *Config) SpeechTimeout() time.Duration {
	return time.Duration(c.Speech.TimeoutSeconds) * time.Second
}
