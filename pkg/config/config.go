// Package config provides configuration management for the dnfv client. It
// handles loading, validating, and saving application settings, supports
// YAML configuration files, and lets the DNFV_* environment variables
// override file values so cron deployments never have to write credentials
// to disk.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deltaneutral/dnfvault/pkg/errors"
	"github.com/deltaneutral/dnfvault/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	// Auth holds the vault credentials. Never logged.
	Auth Auth `yaml:"auth"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// Auth holds the login credentials for the vault API.
type Auth struct {
	Email    string `yaml:"email,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// OutputDir is where downloads land. Defaults to ~/dnfilevault-downloads.
	OutputDir string `yaml:"output_dir,omitempty"`

	// BaseURL pins a specific API server and skips endpoint discovery.
	BaseURL string `yaml:"base_url,omitempty"`

	// Days limits syncing to files created within the last N days.
	// Zero means everything.
	Days int `yaml:"days,omitempty"`

	// Groups restricts group syncing to the named groups
	// (case-insensitive). Empty means all groups.
	Groups []string `yaml:"groups,omitempty"`

	// Verify selects the skip gate: existence, size, or checksum.
	Verify string `yaml:"verify"`

	// Concurrency is the download worker count; 1 means sequential.
	Concurrency int `yaml:"concurrency"`

	// Extract unpacks downloaded archives next to the archive file.
	Extract bool `yaml:"extract,omitempty"`

	// Network settings
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	CDNTimeout      time.Duration `yaml:"cdn_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`

	// Output settings
	LogLevel string `yaml:"log_level"`
}

// Default configuration values.
const (
	// DefaultHTTPTimeout bounds login and metadata calls.
	DefaultHTTPTimeout = 60 * time.Second

	// DefaultCDNTimeout bounds direct CDN fetches.
	DefaultCDNTimeout = 2 * time.Minute

	// DefaultDownloadTimeout bounds authenticated API downloads.
	DefaultDownloadTimeout = 10 * time.Minute

	// DefaultConcurrency keeps downloads sequential unless asked.
	DefaultConcurrency = 1

	// VerifyExistence, VerifySize and VerifyChecksum name the skip gates.
	VerifyExistence = "existence"
	VerifySize      = "size"
	VerifyChecksum  = "checksum"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	outputDir, err := fsutil.GetDefaultOutputDir()
	if err != nil {
		outputDir = "dnfilevault-downloads"
	}

	return &Config{
		Settings: Settings{
			OutputDir:       outputDir,
			Verify:          VerifySize,
			Concurrency:     DefaultConcurrency,
			HTTPTimeout:     DefaultHTTPTimeout,
			CDNTimeout:      DefaultCDNTimeout,
			DownloadTimeout: DefaultDownloadTimeout,
			LogLevel:        "info",
		},
	}
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to determine config directory")
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults, matching how the hosted scripts behave with no local setup.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()
	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// ApplyEnv overrides configuration with the DNFV_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DNFV_EMAIL"); v != "" {
		c.Auth.Email = v
	}
	if v := os.Getenv("DNFV_PASSWORD"); v != "" {
		c.Auth.Password = v
	}
	if v := os.Getenv("DNFV_OUT_DIR"); v != "" {
		c.Settings.OutputDir = v
	}
	if v := os.Getenv("DNFV_BASE_URL"); v != "" {
		c.Settings.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("DNFV_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			c.Settings.Days = days
		}
	}
	if v := os.Getenv("DNFV_GROUPS"); v != "" {
		groups := []string{}
		for _, g := range strings.Split(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
		c.Settings.Groups = groups
	}
}

// applyDefaults fills zero values with defaults after a file load.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Settings.OutputDir == "" {
		c.Settings.OutputDir = defaults.Settings.OutputDir
	}
	if c.Settings.Verify == "" {
		c.Settings.Verify = defaults.Settings.Verify
	}
	if c.Settings.Concurrency <= 0 {
		c.Settings.Concurrency = defaults.Settings.Concurrency
	}
	if c.Settings.HTTPTimeout <= 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.CDNTimeout <= 0 {
		c.Settings.CDNTimeout = defaults.Settings.CDNTimeout
	}
	if c.Settings.DownloadTimeout <= 0 {
		c.Settings.DownloadTimeout = defaults.Settings.DownloadTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	c.Settings.BaseURL = strings.TrimRight(c.Settings.BaseURL, "/")
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Settings.Verify {
	case VerifyExistence, VerifySize, VerifyChecksum:
		// Valid gate
	default:
		return fmt.Errorf("unknown verify mode %q (want %s, %s or %s)",
			c.Settings.Verify, VerifyExistence, VerifySize, VerifyChecksum)
	}
	if c.Settings.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Settings.Concurrency)
	}
	if c.Settings.Days < 0 {
		return fmt.Errorf("days cannot be negative, got %d", c.Settings.Days)
	}
	return nil
}

// HasCredentials reports whether both credential fields are set.
func (c *Config) HasCredentials() bool {
	return c.Auth.Email != "" && c.Auth.Password != ""
}

// GroupWanted reports whether the named group passes the configured group
// filter.
func (c *Config) GroupWanted(name string) bool {
	if len(c.Settings.Groups) == 0 {
		return true
	}
	for _, g := range c.Settings.Groups {
		if strings.EqualFold(strings.TrimSpace(g), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// SaveConfig saves configuration to a file via a temp file and rename, so a
// crash never leaves a torn config behind.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	// Credentials live here, keep the file private.
	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeSecure)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(err, "failed to close config file")
	}

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(err, "failed to move config into place")
	}
	return nil
}
