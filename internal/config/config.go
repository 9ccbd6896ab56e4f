package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SWEEP_PASSWORD.
	EnvPrefix = "SWEEP"

	// FileName is the config file inside the config directory.
	FileName = "config.json"

	DefaultTimeoutSeconds    = 20
	DefaultListingRetries    = 3
	DefaultRequestsPerMinute = 60
	DefaultLogFile           = "cleanup_log.txt"
	DefaultUserAgent         = "sweep:nsfw-cleaner:v1 (script)"
)

// Config represents the sweep configuration
type Config struct {
	ClientID          string `json:"client_id" mapstructure:"client_id"`
	ClientSecret      string `json:"client_secret" mapstructure:"client_secret"`
	Username          string `json:"username" mapstructure:"username"`
	Password          string `json:"password" mapstructure:"password"`
	UserAgent         string `json:"user_agent" mapstructure:"user_agent"`
	TimeoutSeconds    int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`         // per-operation budget
	MaxPasses         int    `json:"max_passes,omitempty" mapstructure:"max_passes"`         // 0 = until converged
	ListingRetries    int    `json:"listing_retries" mapstructure:"listing_retries"`         // consecutive listing failures tolerated
	RequestsPerMinute int    `json:"requests_per_minute" mapstructure:"requests_per_minute"` // client-side throttle
	LogFile           string `json:"log_file" mapstructure:"log_file"`
	Journal           bool   `json:"journal" mapstructure:"journal"`                     // also record events in sqlite
	JournalPath       string `json:"journal_path,omitempty" mapstructure:"journal_path"` // empty = ~/.sweep/sweep.db
}

// keys lists every config key; each can be overridden by SWEEP_<KEY>.
var keys = []string{
	"client_id",
	"client_secret",
	"username",
	"password",
	"user_agent",
	"timeout_seconds",
	"max_passes",
	"listing_retries",
	"requests_per_minute",
	"log_file",
	"journal",
	"journal_path",
}

// Default returns a config populated with defaults only.
func Default() *Config {
	return &Config{
		UserAgent:         DefaultUserAgent,
		TimeoutSeconds:    DefaultTimeoutSeconds,
		ListingRetries:    DefaultListingRetries,
		RequestsPerMinute: DefaultRequestsPerMinute,
		LogFile:           DefaultLogFile,
		Journal:           true,
	}
}

// DefaultDir returns ~/.sweep.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sweep"), nil
}

// Path returns the config file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// LoadConfig reads config.json from the specified directory and applies
// SWEEP_* environment overrides. A missing file is not an error: defaults
// and the environment are enough to run.
func LoadConfig(dir string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(Path(dir))
	vp.SetConfigType("json")

	def := Default()
	vp.SetDefault("user_agent", def.UserAgent)
	vp.SetDefault("timeout_seconds", def.TimeoutSeconds)
	vp.SetDefault("listing_retries", def.ListingRetries)
	vp.SetDefault("requests_per_minute", def.RequestsPerMinute)
	vp.SetDefault("log_file", def.LogFile)
	vp.SetDefault("journal", def.Journal)

	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := vp.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := vp.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Holds the account password
	if err := os.WriteFile(Path(dir), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Timeout returns the per-operation time budget.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports which credentials are missing.
func (c *Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s (run 'sweep config init' or set %s_* variables)", strings.Join(missing, ", "), EnvPrefix)
	}
	return nil
}

// Masked returns a copy safe to print.
func (c *Config) Masked() *Config {
	out := *c
	out.ClientSecret = mask(c.ClientSecret)
	out.Password = mask(c.Password)
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-2)
}
