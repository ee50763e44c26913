package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/simula/nperfd/internal"
	"github.com/simula/nperfd/internal/config"
	"github.com/simula/nperfd/internal/control"
	"github.com/simula/nperfd/internal/metadata"
	"github.com/simula/nperfd/internal/netperf"
	"github.com/simula/nperfd/internal/paths"
	"github.com/simula/nperfd/internal/telemetry"
)

// Controls launcher behaviour.
type Options struct {
	ConfigPath string // Path to the experiment configuration file.
	NodeIDPath string // Path to the node identity file.
	Broker     string // Metadata broker endpoint.

	Binary     string // Path to the netperfmeter binary.
	ResultsDir string // Final results directory.
	ScratchDir string // Scratch directory for in-progress output.

	Spec     netperf.Spec  // Measurement parameters.
	Interval time.Duration // Pause between measurement cycles.
	Compress bool          // Whether to compress results before delivery.

	AllowRoaming bool   // Whether measurements may run on a roaming modem.
	SocketPath   string // Control socket override. Empty uses the default.
	MetricsAddr  string // Metrics listen address. Empty disables the endpoint.
}

// Supervises measurement instances for one experiment.
//
// The launcher consumes the node's modem metadata stream and keeps exactly
// one measurement instance running per measurement ID whenever a modem
// matching the experiment's carrier is present.
type Launcher struct {
	opts      Options
	exp       *config.Experiment
	nodeID    int
	startedAt time.Time

	mu        sync.Mutex
	instances map[int]*instance
}

// Creates a launcher from the experiment configuration on disk.
//
// The configuration and node identity files must both be present and valid;
// an experiment with a broken configuration must fail before any traffic is
// generated.
func New(opts Options) (*Launcher, error) {
	nodeID, err := config.ReadNodeID(opts.NodeIDPath)
	if err != nil {
		return nil, err
	}

	exp, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if err := opts.Spec.Validate(); err != nil {
		return nil, err
	}
	if opts.Interval < 0 {
		return nil, fmt.Errorf("%w: interval %s", netperf.ErrInvalidSpec, opts.Interval)
	}

	return &Launcher{
		opts:      opts,
		exp:       exp,
		nodeID:    nodeID,
		instances: make(map[int]*instance),
	}, nil
}

// Runs the launcher until the context is cancelled or a fatal condition is
// hit.
//
// Starts the control socket and the optional metrics endpoint, subscribes
// to the metadata stream, and dispatches modem updates. Returns
// [ErrRoaming] when the matched modem is roaming and roaming is not
// authorised.
func (l *Launcher) Run(ctx context.Context) error {
	l.startedAt = time.Now()

	for _, dir := range []string{l.opts.ResultsDir, l.opts.ScratchDir} {
		if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrLauncher, err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := control.New(l.opts.SocketPath, l.statusResult, cancel)
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	telemetry.Serve(l.opts.MetricsAddr)

	stream, err := metadata.Dial(ctx, l.opts.Broker)
	if err != nil {
		return err
	}
	defer stream.Close()

	slog.Info("launcher running",
		"node", l.nodeID,
		"measurement", l.exp.MeasurementID,
		"mcc", l.exp.MCC,
		"mnc", l.exp.MNC,
	)

	defer l.stopInstances()

	for {
		topic, payload, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				slog.Debug("exiting")
				return nil
			}
			return err
		}

		telemetry.MetadataMessagesTotal.Inc()

		if !metadata.IsModemUpdate(topic) {
			continue
		}

		update, err := metadata.ParseUpdate(payload)
		if err != nil {
			telemetry.MetadataErrorsTotal.Inc()
			slog.Warn("cannot read modem update", "topic", topic, "error", err)
			continue
		}

		if err := l.handleUpdate(ctx, update); err != nil {
			return err
		}
	}
}

// Reacts to a modem state update.
//
// Updates for other carriers are ignored. A matching update on a roaming
// modem is fatal unless roaming is authorised: generating measurement
// traffic over a roaming link can incur real cost, so the experiment
// aborts rather than risking it.
func (l *Launcher) handleUpdate(ctx context.Context, update *metadata.ModemUpdate) error {
	if !update.Matches(l.exp) {
		return nil
	}

	if update.Roaming() && !l.opts.AllowRoaming {
		slog.Error("modem is roaming and roaming is not authorised",
			"imsi", update.IMSIMCCMNC,
			"network", update.NWMCCMNC,
		)
		return fmt.Errorf("%w: IMSI %s on network %s", ErrRoaming, update.IMSIMCCMNC, update.NWMCCMNC)
	}

	l.ensureInstance(ctx, update.Interface)
	return nil
}

// Ensures exactly one live measurement instance for the experiment's
// measurement ID, bound to the given interface.
//
// A finished instance is reaped first; the next matching update then
// starts a fresh one.
func (l *Launcher) ensureInstance(ctx context.Context, iface string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.exp.MeasurementID

	if inst, ok := l.instances[id]; ok {
		if !inst.finished() {
			return
		}
		delete(l.instances, id)
		telemetry.ActiveInstances.Dec()
		slog.Warn("instance has stopped", "measurement", id)
	}

	slog.Debug("starting instance", "measurement", id, "interface", iface)

	inst := newInstance(ctx, id, iface, l.opts)
	l.instances[id] = inst
	telemetry.ActiveInstances.Inc()

	go inst.run()

	slog.Info("started instance", "measurement", id, "interface", iface)
}

// Cancels all instances and waits for them to finish.
func (l *Launcher) stopInstances() {
	l.mu.Lock()
	instances := make([]*instance, 0, len(l.instances))
	for _, inst := range l.instances {
		instances = append(instances, inst)
	}
	l.mu.Unlock()

	for _, inst := range instances {
		inst.stop()
	}
}

// Builds the status payload for the control socket.
func (l *Launcher) statusResult() *control.StatusResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := &control.StatusResult{
		Version: internal.VersionString(),
		Pid:     os.Getpid(),
		NodeID:  l.nodeID,
		Uptime:  time.Since(l.startedAt).Truncate(time.Second).String(),
	}

	for _, inst := range l.instances {
		res.Instances = append(res.Instances, inst.status())
	}

	return res
}
