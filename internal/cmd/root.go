package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"labelsync/internal/observability"
	"labelsync/pkg/config"
)

const appName = "labelsync"

// rootOptions carries state shared by every subcommand of one invocation
type rootOptions struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
}

// NewRootCommand builds the labelsync command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New(), logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Synchronize GitHub issue labels from a JSON or YAML file",
		Long: `Labelsync keeps the issue labels of a GitHub repository in line with a
label file checked into the repository (by default .github/labels.yml).

It creates missing labels, updates colors and descriptions, renames labels
that declare their previous name, and in delete mode removes labels that are
neither declared nor ignored.

It runs as a GitHub Action (reading INPUT_* and GITHUB_* variables) or locally
with a personal access token.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.initConfig,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ~/.labelsync/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "auto", "log format: auto, console or json")
	bindFlag(opts.v, "log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag(opts.v, "log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(newSyncCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newInitCommand(opts))

	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initConfig layers config file, environment and flags, then sets up logging
func (o *rootOptions) initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.Setup(o.v); err != nil {
		return err
	}

	if err := config.ReadFile(o.v, o.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(o.v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	o.cfg = cfg

	logger, err := observability.InitLogger(appName, observability.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	o.logger = logger

	if used := o.v.ConfigFileUsed(); used != "" {
		o.logger.Debug().Str("path", used).Msg("using config file")
	}
	return nil
}

// bindFlag lets flag override the config key when the flag is set
func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	_ = v.BindPFlag(key, flag)
}
