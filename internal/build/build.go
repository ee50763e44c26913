package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/simula/nperfd/internal/paths"
	"github.com/simula/nperfd/internal/runtime"
)

// Controls recipe execution.
type Options struct {
	Recipe *Recipe // Recipe to execute.
	Name   string  // Build name, used as a prefix for container IDs.
	Output string  // Directory for the exported image archive.
	Root   string  // Directory for resolving host copy sources.
}

// Returned after successful recipe execution.
type Result struct {
	Output string // Directory containing the exported image.
}

// Executes a recipe against the container runtime.
//
// Stages are built in declaration order. Each stage pulls its base image,
// starts a build container, and executes the stage's steps. The
// non-transient stage is stopped and exported as the final image to the
// output directory. All stage containers are destroyed when the build
// completes.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	slog.Info("executing recipe",
		"name", opts.Name,
		"output", opts.Output,
		"stages", len(opts.Recipe.Stages),
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	b := &builder{
		rt:     rt,
		opts:   opts,
		stages: make(map[string]*runtime.Container),
	}
	defer b.destroyContainers(ctx)

	for i, stage := range opts.Recipe.Stages {
		if err := b.buildStage(ctx, stage, i); err != nil {
			return nil, fmt.Errorf("%w: stage %s: %w", ErrBuild, stageLabel(stage.Name, i), err)
		}
	}

	return &Result{Output: opts.Output}, nil
}

// Holds shared state while building the stages of a recipe.
type builder struct {
	rt         *runtime.Runtime              // Container runtime for image and container operations.
	opts       Options                       // Execution options.
	stages     map[string]*runtime.Container // Named stage containers for cross-stage copy lookups.
	containers []*runtime.Container          // All stage containers, destroyed after the build completes.
}

// Builds a single stage of the recipe.
//
// Pulls the stage's base image, starts a build container, executes the
// stage's steps, and exports the non-transient stage to the output
// directory.
func (b *builder) buildStage(ctx context.Context, stage Stage, index int) error {
	slog.Info(fmt.Sprintf("building stage %s", stageLabel(stage.Name, index)), "from", stage.From)

	if err := b.rt.Pull(ctx, stage.From); err != nil {
		return err
	}

	id := b.containerID(stage.Name, index)
	ctr, err := b.rt.StartBuildContainer(ctx, stage.From, id)
	if err != nil {
		return err
	}

	b.containers = append(b.containers, ctr)
	if stage.Name != "" {
		b.stages[stage.Name] = ctr
	}

	if err := executeSteps(ctx, ctr, stage.Steps, newStepState(), b.opts.Root, b.stages); err != nil {
		return err
	}

	if !stage.Transient {
		if err := ctr.Stop(ctx); err != nil {
			return err
		}
		if err := ctr.Export(ctx, b.opts.Output, b.opts.Recipe.Entrypoint); err != nil {
			return err
		}
	}

	return nil
}

// Destroys all stage containers.
func (b *builder) destroyContainers(ctx context.Context) {
	for _, ctr := range b.containers {
		ctr.Destroy(ctx)
	}
}

// Returns a unique container ID for a stage, scoped to this build.
func (b *builder) containerID(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%s-stage-%s", b.opts.Name, name)
	}
	return fmt.Sprintf("%s-stage-%d", b.opts.Name, index+1)
}
