package build

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simula/nperfd/internal/runtime"
)

// Executes a list of steps in order against the build container.
func executeSteps(ctx context.Context, ctr *runtime.Container, steps []Step, state *stepState, buildCtx string, stages map[string]*runtime.Container) error {
	for i, step := range steps {
		if err := executeStep(ctx, ctr, step, state, buildCtx, stages); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Executes a single step, dispatching to operation execution or state
// mutation depending on the step's fields.
func executeStep(ctx context.Context, ctr *runtime.Container, step Step, state *stepState, buildCtx string, stages map[string]*runtime.Container) error {
	// Standalone modifier(s): persist in state.
	if step.Run == "" && step.Copy == "" {
		state.apply(step)
		return nil
	}

	resolved := state.resolve(step)

	if resolved.workdir != "" {
		if err := ctr.MkdirAll(ctx, resolved.workdir); err != nil {
			return err
		}
	}

	switch {
	case step.Run != "":
		slog.Debug("run", "command", step.Run, "shell", resolved.shell)
		result, err := ctr.Exec(ctx, resolved.shell, step.Run, resolved.environ(), resolved.workdir)
		if err != nil {
			return err
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("%w: exit code %d: %s", ErrCommandFailed, result.ExitCode, result.Stderr)
		}

	case step.Copy != "":
		if err := executeCopy(ctx, ctr, step.Copy, resolved.workdir, buildCtx, stages); err != nil {
			return err
		}
	}

	return nil
}
