package labels

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Reconciler plans and applies label changes for one repository
type Reconciler interface {
	Plan(ctx context.Context, desired *DesiredState, mode Mode) (*Plan, error)
	Apply(ctx context.Context, plan *Plan) (*Result, error)
}

// reconciler implements the Reconciler interface
type reconciler struct {
	client   APIClient
	repo     Repository
	executor *Executor
}

// NewReconciler creates a new reconciler instance
func NewReconciler(client APIClient, repo Repository, logger zerolog.Logger) Reconciler {
	return &reconciler{
		client:   client,
		repo:     repo,
		executor: NewExecutor(client, repo, logger),
	}
}

// Plan fetches the current labels and diffs them against the desired state
func (r *reconciler) Plan(ctx context.Context, desired *DesiredState, mode Mode) (*Plan, error) {
	remote, err := r.client.ListLabels(ctx, r.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch labels for %s: %w", r.repo, err)
	}
	return Diff(desired.Labels, desired.Ignores, remote, mode), nil
}

// Apply executes the plan
func (r *reconciler) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	return r.executor.Apply(ctx, plan)
}

// Diff computes the operations that move remote to desired. Rename, update
// and create operations follow desired order; deletes follow in remote order.
// Diff never mutates its inputs.
func Diff(desired []LabelSpec, ignores IgnoreSet, remote []RemoteLabel, mode Mode) *Plan {
	plan := &Plan{}

	remoteByKey := make(map[string]RemoteLabel, len(remote))
	for _, label := range remote {
		remoteByKey[nameKey(label.Name)] = label
	}

	desiredKeys := make(map[string]bool, len(desired))
	for _, d := range desired {
		desiredKeys[nameKey(d.Name)] = true
	}

	// claimed holds remote labels that some desired label accounts for,
	// including old names consumed by a rename.
	claimed := make(map[string]bool, len(remote))

	for _, d := range desired {
		key := nameKey(d.Name)
		current, exists := remoteByKey[key]

		if !exists && d.RenamedFrom != "" {
			oldKey := nameKey(d.RenamedFrom)
			if old, ok := remoteByKey[oldKey]; ok && !claimed[oldKey] && !desiredKeys[oldKey] {
				claimed[oldKey] = true
				plan.Operations = append(plan.Operations, Operation{
					Type:        OperationRename,
					OldName:     old.Name,
					Name:        d.Name,
					Color:       d.Color,
					Description: d.Description,
				})
				continue
			}
		}

		if exists {
			claimed[key] = true
			switch {
			case current.Name != d.Name:
				// Only the letter case differs, which needs a rename on GitHub
				plan.Operations = append(plan.Operations, Operation{
					Type:        OperationRename,
					OldName:     current.Name,
					Name:        d.Name,
					Color:       d.Color,
					Description: d.Description,
				})
			case !colorsEqual(current.Color, d.Color) || current.Description != d.Description:
				plan.Operations = append(plan.Operations, Operation{
					Type:        OperationUpdate,
					Name:        d.Name,
					Color:       d.Color,
					Description: d.Description,
				})
			}
			continue
		}

		plan.Operations = append(plan.Operations, Operation{
			Type:        OperationCreate,
			Name:        d.Name,
			Color:       d.Color,
			Description: d.Description,
		})
	}

	for _, label := range remote {
		if claimed[nameKey(label.Name)] {
			continue
		}
		switch {
		case mode != ModeDelete:
			plan.Skipped = append(plan.Skipped, SkippedLabel{Name: label.Name, Reason: SkipReasonNormalMode})
		case ignores.Contains(label.Name):
			plan.Skipped = append(plan.Skipped, SkippedLabel{Name: label.Name, Reason: SkipReasonIgnored})
		default:
			plan.Operations = append(plan.Operations, Operation{
				Type: OperationDelete,
				Name: label.Name,
			})
		}
	}

	return plan
}
