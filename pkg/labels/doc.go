// Package labels provides declarative GitHub label management for labelsync.
// It loads a desired label set from JSON or YAML documents and reconciles it
// against the labels currently present in a repository.
//
// The package includes:
// - Desired-state loading with named colors, rename links and ignore lists
// - A pure Reconciler that turns desired and remote state into a Plan
// - An Executor that applies a Plan with per-operation failure isolation
// - APIClient, the GitHub REST adapter used to fetch and mutate labels
package labels
