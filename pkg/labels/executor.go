package labels

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Result records the outcome of applying a plan, in plan order
type Result struct {
	Succeeded []Operation
	Failed    []FailedOperation
}

// Executor applies plans against a repository
type Executor struct {
	client APIClient
	repo   Repository
	logger zerolog.Logger
}

// NewExecutor creates an executor for repo
func NewExecutor(client APIClient, repo Repository, logger zerolog.Logger) *Executor {
	return &Executor{
		client: client,
		repo:   repo,
		logger: logger.With().Str("repository", repo.String()).Logger(),
	}
}

// Apply runs every operation in order. A failed operation does not stop the
// remaining ones; once all have been attempted any failure is reported as a
// PartialFailureError. After ctx is cancelled the remaining operations are
// recorded as failed without being attempted.
func (e *Executor) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	result := &Result{}
	if plan.IsEmpty() {
		return result, nil
	}

	for _, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, FailedOperation{Operation: op, Err: err})
			continue
		}

		if err := e.applyOperation(ctx, op); err != nil {
			e.logger.Error().Err(err).
				Str("operation", string(op.Type)).
				Str("label", op.Name).
				Msg("label operation failed")
			result.Failed = append(result.Failed, FailedOperation{Operation: op, Err: err})
			continue
		}

		e.logger.Info().
			Str("operation", string(op.Type)).
			Str("label", op.Name).
			Str("color", op.Color).
			Msg("label operation applied")
		result.Succeeded = append(result.Succeeded, op)
	}

	if len(result.Failed) > 0 {
		return result, NewPartialFailureError(result.Succeeded, result.Failed)
	}
	return result, nil
}

func (e *Executor) applyOperation(ctx context.Context, op Operation) error {
	label := RemoteLabel{Name: op.Name, Color: op.Color, Description: op.Description}

	switch op.Type {
	case OperationCreate:
		return e.client.CreateLabel(ctx, e.repo, label)
	case OperationUpdate:
		return e.client.EditLabel(ctx, e.repo, op.Name, label)
	case OperationRename:
		return e.client.EditLabel(ctx, e.repo, op.OldName, label)
	case OperationDelete:
		return e.client.DeleteLabel(ctx, e.repo, op.Name)
	default:
		return fmt.Errorf("unsupported label operation type: %s", op.Type)
	}
}
