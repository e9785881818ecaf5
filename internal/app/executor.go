package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/verse-service/internal/platform/logging"
)

// Collection changes that span several steps (imports) run through the
// Executor: Validate, Perform, Verify, Archive, Respond. Nothing is persisted
// before Archive, so a document that fails to parse or verify never touches
// the stored collection.

// ExecutionStep names one step of an Operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records which step of an operation failed.
// Cause keeps the domain error so callers can still match it.
type ExecutionError struct {
	Operation string
	Step      ExecutionStep
	Cause     error
}

func (e *ExecutionError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Cause)
	}

	return fmt.Sprintf("%s %s: %v", e.Operation, e.Step, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Executor runs Operations with step-level logging.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger means slog.Default().
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation is one multi-step change. I is the input, P what Perform
// produces, V what Verify accepts for storage and O the caller's result.
// Any step may be nil; a nil step passes its zero value on.
type Operation[I, P, V, O any] struct {
	Name string

	// Validate rejects bad input before any work is done.
	Validate func(ctx context.Context, input I) error

	// Perform does the work without storing anything, e.g. parsing a document.
	Perform func(ctx context.Context, input I) (P, error)

	// Verify checks Perform's output and turns it into what gets stored.
	Verify func(ctx context.Context, input I, performed P) (V, error)

	// Archive stores the verified result. It is the only step with side effects.
	Archive func(ctx context.Context, input I, verified V) error

	// Respond shapes the result for the caller.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs op on input, stopping at the first failing step.
// The context logger, when present, wins over the executor's.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		performed P
		verified  V
		result    O
	)

	logger := exec.logger
	if scoped, ok := logging.Scoped(ctx); ok {
		logger = scoped
	}

	logger = logger.With(slog.String("operation", op.Name))
	start := time.Now()

	fail := func(step ExecutionStep, err error) (O, error) {
		var zero O

		logger.WarnContext(ctx, "operation step failed",
			slog.String("step", string(step)),
			slog.Any("error", err),
		)

		return zero, &ExecutionError{Operation: op.Name, Step: step, Cause: err}
	}

	if op.Validate != nil {
		if err := op.Validate(ctx, input); err != nil {
			return fail(StepValidate, err)
		}
	}

	if op.Perform != nil {
		p, err := op.Perform(ctx, input)
		if err != nil {
			return fail(StepPerform, err)
		}

		performed = p
	}

	if op.Verify != nil {
		v, err := op.Verify(ctx, input, performed)
		if err != nil {
			return fail(StepVerify, err)
		}

		verified = v
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, input, verified); err != nil {
			return fail(StepArchive, err)
		}
	}

	if op.Respond != nil {
		o, err := op.Respond(ctx, input, verified)
		if err != nil {
			return fail(StepRespond, err)
		}

		result = o
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// IsExecutionError reports whether err came out of Execute.
func IsExecutionError(err error) bool {
	var execErr *ExecutionError

	return errors.As(err, &execErr)
}

// GetExecutionStep returns the step that failed, if err came out of Execute.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
