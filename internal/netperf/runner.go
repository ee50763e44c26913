package netperf

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"path/filepath"
	"time"
)

// Timestamp layout embedded in result file names.
const timestampLayout = "2006-01-02T15:04:05Z"

// Runs the external netperfmeter binary for one measurement cycle.
type Runner struct {
	Binary     string // Path to the netperfmeter binary.
	ScratchDir string // Directory for in-progress vector and scalar files.
}

// Result of a single netperfmeter run.
type RunResult struct {
	VectorFile string // Path of the per-interval vector output.
	ScalarFile string // Path of the end-of-run scalar output.
	Output     string // Combined stdout/stderr of the process.
}

// Executes one netperfmeter run on the given interface.
//
// The measurement binds to the interface's IPv4 address so traffic leaves
// through the modem under test rather than whatever the routing table
// prefers. Control traffic runs over TCP regardless of the measurement
// transport, since the server end expects it. Output files are written to
// the scratch directory with the instance ID and start time in the name.
func (r *Runner) Run(ctx context.Context, spec Spec, iface string, instance int) (*RunResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	local, err := InterfaceIPv4(iface)
	if err != nil {
		return nil, err
	}

	started := time.Now().UTC().Format(timestampLayout)
	res := &RunResult{
		VectorFile: filepath.Join(r.ScratchDir, fmt.Sprintf("netperfmeter_%d_vector_%s.vec.bz2", instance, started)),
		ScalarFile: filepath.Join(r.ScratchDir, fmt.Sprintf("netperfmeter_%d_scalar_%s.sca.bz2", instance, started)),
	}

	args := []string{
		fmt.Sprintf("%s:%d", spec.DestAddr, spec.DestPort),
		"-vector=" + res.VectorFile,
		"-scalar=" + res.ScalarFile,
		"-control-over-tcp",
		"-local=" + local.String(),
		"-" + string(spec.Transport),
		spec.flowSpec(),
		fmt.Sprintf("-runtime=%d", int(spec.Runtime.Seconds())),
	}

	slog.Debug("running netperfmeter", "binary", r.Binary, "args", args)

	out, err := exec.CommandContext(ctx, r.Binary, args...).CombinedOutput()
	res.Output = string(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrRun, err, res.Output)
	}

	return res, nil
}

// Resolves the IPv4 address of a network interface by name.
func InterfaceIPv4(name string) (net.IP, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInterface, name, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInterface, name, err)
	}

	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4, nil
		}
	}

	return nil, fmt.Errorf("%w: %s has no IPv4 address", ErrInterface, name)
}
