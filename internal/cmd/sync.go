package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"labelsync/pkg/config"
	"labelsync/pkg/labels"
)

// syncClient is what a sync run needs from GitHub
type syncClient interface {
	labels.APIClient
	CheckAccess(ctx context.Context, repo labels.Repository) (*labels.AccessInfo, error)
}

// newSyncClient is replaced in tests
var newSyncClient = func(cfg *config.Config) (syncClient, error) {
	return labels.NewClient(cfg.GitHub.Token, labels.WithBaseURL(cfg.GitHub.APIURL))
}

func newSyncCommand(opts *rootOptions) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize repository labels with a label file",
		Long: `Read the desired labels from a JSON or YAML file and bring the labels of a
GitHub repository in line with it.

In normal mode labels are created, updated and renamed but never deleted.
In delete mode labels that are neither declared nor ignored are deleted too.

Examples:
  # Preview changes for a repository
  labelsync sync --repo octo/hello --dry-run

  # Apply a JSON file and delete undeclared labels
  labelsync sync --repo octo/hello --file labels.json --mode delete

  # Read the label file from the repository at a commit (GitHub Action)
  labelsync sync --remote-file --ref "$GITHUB_SHA"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := syncCmd.Flags()
	flags.String("file", "", "label file path (default .github/labels.yml, or .github/labels.json with --format json)")
	flags.String("format", "auto", "label file format: auto, json or yaml")
	flags.String("mode", "normal", "sync mode: normal (never delete) or delete (remove undeclared labels)")
	flags.String("repo", "", "repository in owner/name form (default $GITHUB_REPOSITORY)")
	flags.Bool("dry-run", false, "show planned changes without applying them")
	flags.Bool("remote-file", false, "read the label file from the repository instead of the local disk")
	flags.String("ref", "", "commit, branch or tag to read the remote label file from (default $GITHUB_SHA)")
	flags.StringP("output", "o", "table", "output format: table, json or yaml")

	bindFlag(opts.v, "sync.file", flags.Lookup("file"))
	bindFlag(opts.v, "sync.format", flags.Lookup("format"))
	bindFlag(opts.v, "sync.mode", flags.Lookup("mode"))
	bindFlag(opts.v, "github.repository", flags.Lookup("repo"))
	bindFlag(opts.v, "sync.dry_run", flags.Lookup("dry-run"))
	bindFlag(opts.v, "sync.remote_file", flags.Lookup("remote-file"))
	bindFlag(opts.v, "github.ref", flags.Lookup("ref"))
	bindFlag(opts.v, "sync.output", flags.Lookup("output"))

	return syncCmd
}

func runSync(ctx context.Context, opts *rootOptions, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.cfg

	if err := cfg.ValidateForSync(); err != nil {
		return err
	}

	repo, err := labels.ParseRepository(cfg.GitHub.Repository)
	if err != nil {
		return err
	}
	mode, err := labels.ParseMode(cfg.Sync.Mode)
	if err != nil {
		return err
	}
	format, err := labels.ParseFormat(cfg.Sync.Format)
	if err != nil {
		return err
	}
	dryRun := cfg.IsDryRun()

	logger := opts.logger.With().Str("repository", repo.String()).Str("mode", string(mode)).Logger()

	client, err := newSyncClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	desired, source, err := loadDesiredState(ctx, client, cfg, repo, format)
	if err != nil {
		return fmt.Errorf("failed to load labels from %s: %w", source, err)
	}
	logger.Info().
		Str("source", source).
		Int("labels", len(desired.Labels)).
		Int("ignores", len(desired.Ignores)).
		Msg("loaded desired labels")

	reconciler := labels.NewReconciler(client, repo, logger)

	plan, err := reconciler.Plan(ctx, desired, mode)
	if err != nil {
		printAuthHelp(errOut, err)
		return err
	}
	logger.Info().
		Int("operations", len(plan.Operations)).
		Int("skipped", len(plan.Skipped)).
		Bool("dry_run", dryRun).
		Msg("computed label plan")

	report := &syncReport{Repository: repo.String(), Mode: mode, DryRun: dryRun, Plan: plan}
	tableOutput := cfg.Sync.Output == outputTable

	if tableOutput {
		displayPlan(out, plan, repo, mode, dryRun)
	}

	if dryRun || plan.IsEmpty() {
		if dryRun && !plan.IsEmpty() && tableOutput {
			fmt.Fprintln(out, "\n💡 Run without --dry-run to apply these changes")
		}
		if !tableOutput {
			return writeReport(out, report, cfg.Sync.Output)
		}
		return nil
	}

	if _, err := client.CheckAccess(ctx, repo); err != nil {
		printAuthHelp(errOut, err)
		return fmt.Errorf("cannot apply label changes to %s: %w", repo, err)
	}

	result, applyErr := reconciler.Apply(ctx, plan)
	report.Result = newResultReport(result)

	if limited, ok := client.(interface{ RateLimitStats() labels.RateLimiterStats }); ok {
		stats := limited.RateLimitStats()
		logger.Debug().
			Int("remaining_requests", stats.RemainingRequests).
			Time("reset_time", stats.ResetTime).
			Int64("waits", stats.TotalWaits).
			Dur("delay", stats.TotalDelayTime).
			Msg("GitHub API rate limit")
	}

	if tableOutput {
		displayResult(out, result)
	} else if err := writeReport(out, report, cfg.Sync.Output); err != nil {
		return err
	}

	return applyErr
}

// loadDesiredState reads the label document from disk or, with remote_file,
// from the repository at the configured ref
func loadDesiredState(ctx context.Context, client labels.APIClient, cfg *config.Config, repo labels.Repository, format labels.Format) (*labels.DesiredState, string, error) {
	if !cfg.Sync.RemoteFile {
		path := labels.ResolvePath(cfg.Sync.File, format)
		state, err := labels.LoadFile(path, format)
		return state, path, err
	}

	path := cfg.Sync.File
	if path == "" {
		path = labels.DefaultPath(format)
	}
	source := fmt.Sprintf("%s:%s", repo, path)
	if cfg.GitHub.Ref != "" {
		source += "@" + cfg.GitHub.Ref
	}

	data, err := client.GetContents(ctx, repo, path, cfg.GitHub.Ref)
	if err != nil {
		return nil, source, err
	}
	if format == labels.FormatAuto {
		format = labels.DetectFormat(path, data)
	}
	state, err := labels.Load(data, format)
	return state, source, err
}

// printAuthHelp explains how to configure a token when GitHub rejected it
func printAuthHelp(errOut io.Writer, err error) {
	var tErr *labels.TransportError
	if errors.As(err, &tErr) && (tErr.Type == labels.ErrorTypeAuth || tErr.Type == labels.ErrorTypePermission) {
		fmt.Fprintf(errOut, "%s\n\n", labels.GetAuthInstructions())
	}
}
