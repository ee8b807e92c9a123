package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the config reads so the host environment
// (e.g. a CI runner) cannot leak into a test. Viper ignores empty values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, names := range envBindings {
		for _, name := range names {
			t.Setenv(name, "")
		}
	}
	for _, name := range []string{"LABELSYNC_SYNC_MODE", "LABELSYNC_LOG_LEVEL", "LABELSYNC_GITHUB_TOKEN"} {
		t.Setenv(name, "")
	}
}

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	clearEnv(t)
	v := viper.New()
	require.NoError(t, Setup(v))
	return v
}

func TestLoadDefaults(t *testing.T) {
	v := newViper(t)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "normal", cfg.Sync.Mode)
	assert.Equal(t, "auto", cfg.Sync.Format)
	assert.Equal(t, "table", cfg.Sync.Output)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.False(t, cfg.IsDryRun())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	v := newViper(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `github:
  token: "  ghp_from_file  "
  repository: octo/hello
sync:
  mode: delete
  output: json
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	require.NoError(t, ReadFile(v, path))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "ghp_from_file", cfg.GitHub.Token)
	assert.Equal(t, "octo/hello", cfg.GitHub.Repository)
	assert.Equal(t, "delete", cfg.Sync.Mode)
	assert.Equal(t, "json", cfg.Sync.Output)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.ValidateForSync())
}

func TestReadFileMissingExplicitPath(t *testing.T) {
	v := newViper(t)

	err := ReadFile(v, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReadFileMissingDefaultIsIgnored(t *testing.T) {
	v := newViper(t)
	t.Setenv("HOME", t.TempDir())

	assert.NoError(t, ReadFile(v, ""))
}

func TestActionEnvironment(t *testing.T) {
	v := newViper(t)

	t.Setenv("INPUT_TOKEN", "action-token")
	t.Setenv("GITHUB_TOKEN", "fallback-token")
	t.Setenv("GITHUB_REPOSITORY", "octo/hello")
	t.Setenv("GITHUB_SHA", "abc123")
	t.Setenv("INPUT_MODE", "delete")
	t.Setenv("INPUT_FILE", ".github/labels.json")
	t.Setenv("INPUT_DEBUG", "enable")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "action-token", cfg.GitHub.Token)
	assert.Equal(t, "octo/hello", cfg.GitHub.Repository)
	assert.Equal(t, "abc123", cfg.GitHub.Ref)
	assert.Equal(t, "delete", cfg.Sync.Mode)
	assert.Equal(t, ".github/labels.json", cfg.Sync.File)
	assert.True(t, cfg.IsDryRun())
	assert.NoError(t, cfg.ValidateForSync())
}

func TestGitHubTokenFallback(t *testing.T) {
	v := newViper(t)
	t.Setenv("GITHUB_TOKEN", "fallback-token")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "fallback-token", cfg.GitHub.Token)
}

func TestPrefixedEnvironment(t *testing.T) {
	v := newViper(t)
	t.Setenv("LABELSYNC_LOG_LEVEL", "warn")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestFlagOverridesEnvironment(t *testing.T) {
	v := newViper(t)
	t.Setenv("INPUT_MODE", "delete")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("mode", "normal", "")
	require.NoError(t, v.BindPFlag("sync.mode", flags.Lookup("mode")))

	// An unchanged flag leaves the environment in charge
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "delete", cfg.Sync.Mode)

	require.NoError(t, flags.Parse([]string{"--mode", "normal"}))
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "normal", cfg.Sync.Mode)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Sync.Mode = "purge" },
			wantErr: "mode",
		},
		{
			name:    "invalid format",
			mutate:  func(c *Config) { c.Sync.Format = "toml" },
			wantErr: "format",
		},
		{
			name:    "invalid output",
			mutate:  func(c *Config) { c.Sync.Output = "xml" },
			wantErr: "invalid output",
		},
		{
			name:    "invalid debug",
			mutate:  func(c *Config) { c.Sync.Debug = "maybe" },
			wantErr: "invalid debug value",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "invalid repository",
			mutate:  func(c *Config) { c.GitHub.Repository = "no-slash" },
			wantErr: "repository",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateForSync(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	err := cfg.ValidateForSync()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository is required")

	cfg.GitHub.Repository = "octo/hello"
	err = cfg.ValidateForSync()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")

	cfg.GitHub.Token = "token"
	assert.NoError(t, cfg.ValidateForSync())
}

func TestSaveConfigToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &Config{
		GitHub: GitHubConfig{Repository: "octo/hello"},
		Sync:   SyncConfig{Mode: "delete"},
	}
	require.NoError(t, cfg.SaveConfigToPath(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	v := newViper(t)
	require.NoError(t, ReadFile(v, path))
	loaded, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "octo/hello", loaded.GitHub.Repository)
	assert.Equal(t, "delete", loaded.Sync.Mode)
}

func TestGetConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".labelsync", "config.yaml"), path)
}
