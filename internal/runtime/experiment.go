package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/oci"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Network capabilities the measurement binary needs: NET_ADMIN to bind
// traffic to a specific interface and NET_RAW for its probe sockets.
var experimentCapabilities = []string{
	"CAP_NET_ADMIN",
	"CAP_NET_RAW",
}

// Default /dev/shm size for the experiment container. netperfmeter keeps
// its per-flow statistics in shared memory segments, which outgrow the
// runtime default of 64 MiB on long runs.
const DefaultShmSize = 512 * 1024 * 1024

// Describes an experiment container to run.
type ExperimentSpec struct {
	Image     string // Image reference (registry ref or locally imported tag).
	ID        string // Container ID.
	SiblingID string // ID of the container whose network namespace to join.

	ResultsDir string // Host directory mounted read-write at the results path.
	ConfigFile string // Host file mounted read-only at the configuration path.
	NodeIDFile string // Host file mounted read-only at the node identity path.

	MonroeResults string // In-container results path.
	MonroeConfig  string // In-container configuration path.
	MonroeNodeID  string // In-container node identity path.

	ShmSize int64    // /dev/shm size in bytes. Zero uses [DefaultShmSize].
	Args    []string // Entrypoint override. Empty uses the image config.
}

// Runs an experiment container to completion.
//
// The container joins the network namespace of the sibling container (the
// node's network orchestrator, which owns the modem interfaces), so the
// experiment sees the modems directly. The results directory is mounted
// read-write; the configuration and node identity files read-only. The
// call blocks until the experiment's task exits and returns its exit code.
// Cancelling the context kills the task.
func (rt *Runtime) RunExperiment(ctx context.Context, spec ExperimentSpec) (int, error) {
	netnsPath, err := rt.siblingNetns(ctx, spec.SiblingID)
	if err != nil {
		return 0, err
	}

	c := rt.Container(spec.ID)

	// A live task under the same ID means another deployment of this
	// experiment is still running; refuse rather than killing it. A stopped
	// leftover from an earlier run is removed.
	state, err := c.Status(ctx)
	if err != nil {
		return 0, err
	}
	if state == StateRunning {
		return 0, fmt.Errorf("%w: container %s is already running", ErrRuntime, spec.ID)
	}
	c.remove(ctx)

	image, err := rt.resolveImage(ctx, spec.Image)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	shmSize := spec.ShmSize
	if shmSize == 0 {
		shmSize = DefaultShmSize
	}

	specOpts := []oci.SpecOpts{
		oci.WithDefaultSpecForPlatform(hostPlatform()),
		oci.WithImageConfig(image),
		oci.WithLinuxNamespace(specs.LinuxNamespace{
			Type: specs.NetworkNamespace,
			Path: netnsPath,
		}),
		oci.WithHostResolvconf,
		oci.WithAddedCapabilities(experimentCapabilities),
		oci.WithDevShmSize(shmSize / 1024),
		oci.WithMounts([]specs.Mount{
			{
				Destination: spec.MonroeResults,
				Type:        "bind",
				Source:      spec.ResultsDir,
				Options:     []string{"rbind", "rw"},
			},
			{
				Destination: spec.MonroeConfig,
				Type:        "bind",
				Source:      spec.ConfigFile,
				Options:     []string{"rbind", "ro"},
			},
			{
				Destination: spec.MonroeNodeID,
				Type:        "bind",
				Source:      spec.NodeIDFile,
				Options:     []string{"rbind", "ro"},
			},
		}),
	}
	if len(spec.Args) > 0 {
		specOpts = append(specOpts, oci.WithProcessArgs(spec.Args...))
	}

	ctr, err := rt.client.NewContainer(ctx, spec.ID,
		containerd.WithImage(image),
		containerd.WithSnapshotter(snapshotter),
		containerd.WithNewSnapshot(spec.ID, image),
		containerd.WithRuntime(ociRuntime, nil),
		containerd.WithNewSpec(specOpts...),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	defer ctr.Delete(context.WithoutCancel(ctx), containerd.WithSnapshotCleanup)

	slog.Info("experiment container created",
		"id", spec.ID,
		"image", spec.Image,
		"netns", netnsPath,
	)

	return c.runTask(ctx, ctr)
}

// Resolves the network namespace path of a sibling container's running
// task.
func (rt *Runtime) siblingNetns(ctx context.Context, siblingID string) (string, error) {
	if siblingID == "" {
		return "", fmt.Errorf("%w: missing ID", ErrSibling)
	}

	ctr, err := rt.client.LoadContainer(ctx, siblingID)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSibling, siblingID, err)
	}

	task, err := ctr.Task(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s has no running task: %w", ErrSibling, siblingID, err)
	}

	return fmt.Sprintf("/proc/%d/ns/net", task.Pid()), nil
}

// Starts the container's task and waits for it to exit.
//
// Returns the task's exit code. Cancelling the context sends SIGKILL and
// reports the cancellation.
func (c *Container) runTask(ctx context.Context, ctr containerd.Container) (int, error) {
	task, err := ctr.NewTask(ctx, cio.NullIO)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	defer task.Delete(context.WithoutCancel(ctx), containerd.WithProcessKill)

	statusC, err := task.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := task.Start(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	select {
	case <-ctx.Done():
		task.Kill(context.WithoutCancel(ctx), syscall.SIGKILL)
		<-statusC
		return 0, ctx.Err()
	case exitStatus := <-statusC:
		code, _, err := exitStatus.Result()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
		}
		return int(code), nil
	}
}
