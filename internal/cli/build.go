package cli

import (
	"context"
	"log/slog"

	"github.com/simula/nperfd/internal/build"
	"github.com/simula/nperfd/internal/runtime"
)

// Represents the 'nperfd build' command.
type BuildCmd struct {
	Recipe string `help:"Recipe file." default:"netperfmeter.yaml" type:"path"`
	Output string `short:"o" help:"Output directory for the image archive." default:"dist" type:"path"`
	Name   string `help:"Build name, used as a prefix for container IDs." default:"nperfd-build"`
	Root   string `help:"Build context for host copy sources." default:"." type:"path"`

	ContainerdAddress   string `help:"Containerd socket address." default:"/run/containerd/containerd.sock"`
	ContainerdNamespace string `help:"Containerd namespace." default:"nperfd"`
}

// Executes the build command.
func (c *BuildCmd) Run(ctx context.Context) error {
	recipe, err := build.LoadRecipe(c.Recipe)
	if err != nil {
		return err
	}

	rt, err := runtime.New(c.ContainerdAddress, c.ContainerdNamespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := build.Run(ctx, rt, build.Options{
		Recipe: recipe,
		Name:   c.Name,
		Output: c.Output,
		Root:   c.Root,
	})
	if err != nil {
		return err
	}

	slog.Info("build finished", "output", result.Output)
	return nil
}
