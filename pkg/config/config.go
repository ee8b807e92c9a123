package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"labelsync/pkg/labels"
)

// Config represents the labelsync configuration
type Config struct {
	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`
	Sync   SyncConfig   `mapstructure:"sync" yaml:"sync"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// GitHubConfig holds the connection settings
type GitHubConfig struct {
	Token      string `mapstructure:"token" yaml:"token,omitempty"`
	Repository string `mapstructure:"repository" yaml:"repository,omitempty"`
	Ref        string `mapstructure:"ref" yaml:"ref,omitempty"`
	APIURL     string `mapstructure:"api_url" yaml:"api_url,omitempty"`
}

// SyncConfig holds the reconciliation settings
type SyncConfig struct {
	Mode       string `mapstructure:"mode" yaml:"mode"`
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	Format     string `mapstructure:"format" yaml:"format"`
	Debug      string `mapstructure:"debug" yaml:"debug,omitempty"`
	DryRun     bool   `mapstructure:"dry_run" yaml:"dry_run"`
	RemoteFile bool   `mapstructure:"remote_file" yaml:"remote_file"`
	Output     string `mapstructure:"output" yaml:"output"`
}

// LogConfig holds the logger settings
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// EnvPrefix prefixes environment variables read through AutomaticEnv,
// e.g. LABELSYNC_SYNC_MODE
const EnvPrefix = "LABELSYNC"

// envBindings lists the GitHub Actions variables each key is read from, in
// order of preference
var envBindings = map[string][]string{
	"github.token":      {"INPUT_TOKEN", "GITHUB_TOKEN"},
	"github.repository": {"INPUT_REPOSITORY", "GITHUB_REPOSITORY"},
	"github.ref":        {"INPUT_REF", "GITHUB_SHA"},
	"github.api_url":    {"GITHUB_API_URL"},
	"sync.mode":         {"INPUT_MODE"},
	"sync.file":         {"INPUT_FILE"},
	"sync.debug":        {"INPUT_DEBUG"},
}

// Setup registers defaults and environment bindings on v
func Setup(v *viper.Viper) error {
	v.SetDefault("sync.mode", string(labels.ModeNormal))
	v.SetDefault("sync.format", string(labels.FormatAuto))
	v.SetDefault("sync.output", "table")
	v.SetDefault("sync.dry_run", false)
	v.SetDefault("sync.remote_file", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envBindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}
	return nil
}

// ReadFile reads the config file at path, or the default location when path
// is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		defaultPath, err := GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(defaultPath); err != nil {
			return nil
		}
		path = defaultPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from everything registered on v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	cfg.GitHub.Token = strings.TrimSpace(cfg.GitHub.Token)

	if cfg.Sync.Mode == "" {
		cfg.Sync.Mode = string(labels.ModeNormal)
	}

	if cfg.Sync.Format == "" {
		cfg.Sync.Format = string(labels.FormatAuto)
	}

	if cfg.Sync.Output == "" {
		cfg.Sync.Output = "table"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = "auto"
	}
}

// IsDryRun reports whether changes should only be planned. INPUT_DEBUG=enable
// is the GitHub Action spelling of --dry-run.
func (c *Config) IsDryRun() bool {
	return c.Sync.DryRun || strings.EqualFold(c.Sync.Debug, "enable")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if _, err := labels.ParseMode(c.Sync.Mode); err != nil {
		errs = append(errs, err)
	}

	if _, err := labels.ParseFormat(c.Sync.Format); err != nil {
		errs = append(errs, err)
	}

	switch c.Sync.Output {
	case "table", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("invalid output %q: must be table, json or yaml", c.Sync.Output))
	}

	switch strings.ToLower(c.Sync.Debug) {
	case "", "enable", "disable":
	default:
		errs = append(errs, fmt.Errorf("invalid debug value %q: must be enable or disable", c.Sync.Debug))
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err))
	}

	switch c.Log.Format {
	case "auto", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be auto, console or json", c.Log.Format))
	}

	if c.GitHub.Repository != "" {
		if _, err := labels.ParseRepository(c.GitHub.Repository); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ValidateForSync checks the settings a sync run needs on top of Validate
func (c *Config) ValidateForSync() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.GitHub.Repository == "" {
		return fmt.Errorf("repository is required: use --repo owner/name or set GITHUB_REPOSITORY")
	}

	token, err := labels.ResolveToken(c.GitHub.Token)
	if err != nil {
		return fmt.Errorf("GitHub token is required: %w", err)
	}
	c.GitHub.Token = token

	return nil
}

// SaveConfig saves configuration to the default location
func (c *Config) SaveConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveConfigToPath(configPath)
}

// SaveConfigToPath saves configuration to a specific path
func (c *Config) SaveConfigToPath(path string) error {
	// Create config directory if it doesn't exist
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".labelsync", "config.yaml"), nil
}
