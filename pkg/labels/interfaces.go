package labels

import (
	"context"
	"fmt"
)

// APIClient defines the interface for GitHub label operations
type APIClient interface {
	// Label operations
	ListLabels(ctx context.Context, repo Repository) ([]RemoteLabel, error)
	CreateLabel(ctx context.Context, repo Repository, label RemoteLabel) error
	EditLabel(ctx context.Context, repo Repository, currentName string, label RemoteLabel) error
	DeleteLabel(ctx context.Context, repo Repository, name string) error

	// Content operations
	GetContents(ctx context.Context, repo Repository, path, ref string) ([]byte, error)
}

// OperationType represents the kind of change in a plan
type OperationType string

const (
	OperationRename OperationType = "rename"
	OperationUpdate OperationType = "update"
	OperationCreate OperationType = "create"
	OperationDelete OperationType = "delete"
)

// Operation is a single label change. OldName is only set for renames.
type Operation struct {
	Type        OperationType `json:"type" yaml:"type"`
	Name        string        `json:"name" yaml:"name"`
	OldName     string        `json:"old_name,omitempty" yaml:"old_name,omitempty"`
	Color       string        `json:"color,omitempty" yaml:"color,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// String describes the operation for reports
func (o Operation) String() string {
	switch o.Type {
	case OperationRename:
		return fmt.Sprintf("rename %q to %q", o.OldName, o.Name)
	default:
		return fmt.Sprintf("%s %q", o.Type, o.Name)
	}
}

// SkipReason explains why a remote label is left alone
type SkipReason string

const (
	SkipReasonIgnored    SkipReason = "ignored"
	SkipReasonNormalMode SkipReason = "not managed"
)

// SkippedLabel is a remote label that no operation touches
type SkippedLabel struct {
	Name   string     `json:"name" yaml:"name"`
	Reason SkipReason `json:"reason" yaml:"reason"`
}

// Plan is the ordered list of operations that converges remote state
type Plan struct {
	Operations []Operation    `json:"operations" yaml:"operations"`
	Skipped    []SkippedLabel `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// IsEmpty reports whether the plan contains no operations
func (p *Plan) IsEmpty() bool {
	return p == nil || len(p.Operations) == 0
}

// Count returns the number of operations of the given type
func (p *Plan) Count(t OperationType) int {
	if p == nil {
		return 0
	}
	n := 0
	for _, op := range p.Operations {
		if op.Type == t {
			n++
		}
	}
	return n
}
