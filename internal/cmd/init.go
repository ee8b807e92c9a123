package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"labelsync/pkg/config"
	"labelsync/pkg/labels"
)

func newInitCommand(_ *rootOptions) *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize labelsync configuration",
		Long:  "Create a default configuration file for labelsync",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := config.GetConfigPath()
			if err != nil {
				return fmt.Errorf("failed to get config path: %w", err)
			}
			return runInit(cmd, configPath, force)
		},
	}

	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file without asking")

	return initCmd
}

func runInit(cmd *cobra.Command, configPath string, force bool) error {
	out := cmd.OutOrStdout()

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(out, "⚠️  Configuration file already exists at: %s\n", configPath)
		fmt.Fprint(out, "Do you want to overwrite it? (y/N): ")
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n') // Ignore error for user input
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Configuration initialization cancelled.")
			return nil
		}
	}

	// Create default configuration
	defaultConfig := &config.Config{
		GitHub: config.GitHubConfig{
			Repository: "your-org/your-repo",
		},
		Sync: config.SyncConfig{
			Mode:   string(labels.ModeNormal),
			File:   labels.DefaultYAMLPath,
			Format: string(labels.FormatAuto),
			Output: outputTable,
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}

	// Save configuration
	if err := defaultConfig.SaveConfigToPath(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(out, "✅ Configuration file created at: %s\n", configPath)
	fmt.Fprintln(out, "📝 Please edit the file to set your repository, or export GITHUB_TOKEN for authentication.")

	return nil
}
