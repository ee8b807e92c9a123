package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"labelsync/pkg/labels"
)

func newValidateCommand(opts *rootOptions) *cobra.Command {
	var formatFlag string

	validateCmd := &cobra.Command{
		Use:   "validate [label-file]",
		Short: "Validate a label file without contacting GitHub",
		Long: `Validate a label file offline: schema, colors, duplicate names and ignores.

Every problem found is reported, not just the first one.

Examples:
  labelsync validate
  labelsync validate .github/labels.json
  labelsync validate labels.txt --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if opts.cfg != nil {
				path = opts.cfg.Sync.File
			}
			return runValidate(cmd.OutOrStdout(), path, formatFlag)
		},
	}

	validateCmd.Flags().StringVar(&formatFlag, "format", "auto", "label file format: auto, json or yaml")

	return validateCmd
}

func runValidate(out io.Writer, path, formatName string) error {
	format, err := labels.ParseFormat(formatName)
	if err != nil {
		return err
	}
	path = labels.ResolvePath(path, format)

	fmt.Fprintf(out, "🔍 Validating label file: %s\n", path)

	state, err := labels.LoadFile(path, format)
	if err != nil {
		var problems labels.ConfigErrors
		if errors.As(err, &problems) {
			fmt.Fprintf(out, "❌ Found %d problem(s):\n", len(problems))
			for _, p := range problems {
				fmt.Fprintf(out, "  • %s: %s\n", p.Field, p.Message)
			}
			return fmt.Errorf("label file %s is invalid", path)
		}
		fmt.Fprintf(out, "❌ %v\n", err)
		return fmt.Errorf("label file %s is invalid: %w", path, err)
	}

	renames := 0
	for _, l := range state.Labels {
		if l.RenamedFrom != "" {
			renames++
		}
	}

	fmt.Fprintln(out, "✅ Label file is valid")
	fmt.Fprintf(out, "  Labels:  %d\n", len(state.Labels))
	fmt.Fprintf(out, "  Colors:  %d\n", len(state.Colors))
	fmt.Fprintf(out, "  Ignores: %d\n", len(state.Ignores))
	if renames > 0 {
		fmt.Fprintf(out, "  Renames: %d\n", renames)
	}
	return nil
}
