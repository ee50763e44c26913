package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/simula/nperfd/internal/paths"
	"github.com/simula/nperfd/internal/runtime"
)

// Represents the 'nperfd deploy' command.
type DeployCmd struct {
	Image   string `arg:"" help:"Image reference to pull, or path to an OCI archive to import."`
	Sibling string `required:"" help:"Container whose network namespace the experiment joins."`
	ID      string `help:"Experiment container ID." default:"nne-netperfmeter"`

	Results string `required:"" help:"Host directory for collected results." type:"path"`
	Config  string `required:"" help:"Host path of the experiment configuration file." type:"path"`
	NodeID  string `name:"nodeid" required:"" help:"Host path of the node identity file." type:"path"`

	ShmSize   int64 `help:"Size of /dev/shm in bytes." default:"536870912"`
	KeepImage bool  `help:"Keep an imported image archive's tag after the experiment exits."`

	ContainerdAddress   string `help:"Containerd socket address." default:"/run/containerd/containerd.sock"`
	ContainerdNamespace string `help:"Containerd namespace." default:"nperfd"`
}

// Executes the deploy command.
//
// Fetches the experiment image (registry pull, or archive import when the
// argument names an existing file), then runs the experiment container
// attached to the sibling's network namespace. Blocks until the experiment
// exits; a non-zero container exit code becomes a non-zero process exit.
// An image imported from an archive is removed again afterwards unless
// --keep-image is set, since its tag is scoped to this deployment.
func (c *DeployCmd) Run(ctx context.Context) error {
	rt, err := runtime.New(c.ContainerdAddress, c.ContainerdNamespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	image, imported, err := c.fetchImage(ctx, rt)
	if err != nil {
		return err
	}

	code, err := rt.RunExperiment(ctx, runtime.ExperimentSpec{
		Image:         image,
		ID:            c.ID,
		SiblingID:     c.Sibling,
		ResultsDir:    c.Results,
		ConfigFile:    c.Config,
		NodeIDFile:    c.NodeID,
		MonroeResults: paths.Results,
		MonroeConfig:  paths.Config,
		MonroeNodeID:  paths.NodeID,
		ShmSize:       c.ShmSize,
	})

	if imported && !c.KeepImage {
		if derr := rt.DestroyImage(context.WithoutCancel(ctx), image); derr != nil {
			slog.Warn("failed to remove imported image", "ref", image, "error", derr)
		}
	}

	if err != nil {
		return err
	}

	if code != 0 {
		return fmt.Errorf("experiment exited with code %d", code)
	}

	slog.Info("experiment finished", "id", c.ID)
	return nil
}

// Makes the experiment image available, returning the reference to run and
// whether it was imported from an archive.
//
// An argument naming an existing file is imported as an OCI archive under
// a deterministic tag; anything else is treated as a registry reference
// and pulled.
func (c *DeployCmd) fetchImage(ctx context.Context, rt *runtime.Runtime) (string, bool, error) {
	if info, err := os.Stat(c.Image); err == nil && !info.IsDir() {
		tag := "import/" + c.ID + ":latest"
		if err := rt.ImportImage(ctx, c.Image, tag); err != nil {
			return "", false, err
		}
		return tag, true, nil
	}

	if err := rt.Pull(ctx, c.Image); err != nil {
		return "", false, err
	}
	return c.Image, false, nil
}
