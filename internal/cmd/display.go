package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"labelsync/pkg/labels"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// syncReport is the machine readable form of a sync run
type syncReport struct {
	Repository string        `json:"repository" yaml:"repository"`
	Mode       labels.Mode   `json:"mode" yaml:"mode"`
	DryRun     bool          `json:"dry_run" yaml:"dry_run"`
	Plan       *labels.Plan  `json:"plan" yaml:"plan"`
	Result     *resultReport `json:"result,omitempty" yaml:"result,omitempty"`
}

type resultReport struct {
	Succeeded []labels.Operation `json:"succeeded" yaml:"succeeded"`
	Failed    []failedReport     `json:"failed,omitempty" yaml:"failed,omitempty"`
}

type failedReport struct {
	Operation labels.Operation `json:"operation" yaml:"operation"`
	Error     string           `json:"error" yaml:"error"`
}

func newResultReport(result *labels.Result) *resultReport {
	if result == nil {
		return nil
	}
	report := &resultReport{Succeeded: result.Succeeded}
	if report.Succeeded == nil {
		report.Succeeded = []labels.Operation{}
	}
	for _, f := range result.Failed {
		report.Failed = append(report.Failed, failedReport{Operation: f.Operation, Error: f.Err.Error()})
	}
	return report
}

// writeReport encodes report as JSON or YAML
func writeReport(out io.Writer, report *syncReport, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case outputYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// displayPlan shows the planned changes in a human-readable format
func displayPlan(out io.Writer, plan *labels.Plan, repo labels.Repository, mode labels.Mode, isDryRun bool) {
	if isDryRun {
		fmt.Fprintf(out, "\n🔍 Dry-run mode: Showing planned label changes for %s (%s mode)\n", repo, mode)
	} else {
		fmt.Fprintf(out, "\n📋 Planned label changes for %s (%s mode):\n", repo, mode)
	}

	if plan.IsEmpty() {
		fmt.Fprintln(out, "\n✅ No changes needed - labels are up to date")
		displaySkipped(out, plan)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"", "Operation", "Label", "Color", "Description"})
	for _, op := range plan.Operations {
		name := op.Name
		if op.Type == labels.OperationRename {
			name = fmt.Sprintf("%s → %s", op.OldName, op.Name)
		}
		t.AppendRow(table.Row{operationSymbol(op.Type), op.Type, name, op.Color, op.Description})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()

	displaySkipped(out, plan)

	fmt.Fprintf(out, "\nPlan: %d to create, %d to update, %d to rename, %d to delete.\n",
		plan.Count(labels.OperationCreate),
		plan.Count(labels.OperationUpdate),
		plan.Count(labels.OperationRename),
		plan.Count(labels.OperationDelete))

	if deletes := plan.Count(labels.OperationDelete); deletes > 0 {
		fmt.Fprintf(out, "⚠️  WARNING: %d label(s) will be deleted and removed from every issue and pull request\n", deletes)
	}
}

func displaySkipped(out io.Writer, plan *labels.Plan) {
	if plan == nil || len(plan.Skipped) == 0 {
		return
	}
	fmt.Fprintf(out, "\nLeft untouched (%d):\n", len(plan.Skipped))
	for _, s := range plan.Skipped {
		fmt.Fprintf(out, "  = %s (%s)\n", s.Name, s.Reason)
	}
}

// displayResult summarizes an applied plan
func displayResult(out io.Writer, result *labels.Result) {
	if result == nil {
		return
	}
	if len(result.Failed) == 0 {
		fmt.Fprintf(out, "\n✅ Applied %d label change(s)\n", len(result.Succeeded))
		return
	}

	fmt.Fprintf(out, "\n⚠️  Applied %d label change(s), %d failed:\n", len(result.Succeeded), len(result.Failed))
	for _, f := range result.Failed {
		fmt.Fprintf(out, "  ❌ %s: %v\n", f.Operation, f.Err)
	}
}

func operationSymbol(t labels.OperationType) string {
	switch t {
	case labels.OperationCreate:
		return "+"
	case labels.OperationUpdate:
		return "~"
	case labels.OperationRename:
		return ">"
	case labels.OperationDelete:
		return "-"
	default:
		return "?"
	}
}
