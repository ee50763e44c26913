package launcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/simula/nperfd/internal/control"
	"github.com/simula/nperfd/internal/netperf"
	"github.com/simula/nperfd/internal/results"
	"github.com/simula/nperfd/internal/telemetry"
)

// Pause before retrying after a failed measurement cycle.
const errorBackoff = 5 * time.Minute

// Instance lifecycle states reported over the control socket.
const (
	stateRunning = "running"
	stateStopped = "stopped"
)

// A periodic measurement loop bound to one interface.
type instance struct {
	measurementID int
	iface         string
	interval      time.Duration

	runner netperf.Runner
	store  results.Store
	spec   netperf.Spec

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	cycles   int
	failures int
}

// Creates an instance ready to run.
//
// The instance's cancellable context is derived here, before the loop
// goroutine starts, so stop always has a cancel function to call.
func newInstance(ctx context.Context, id int, iface string, opts Options) *instance {
	ctx, cancel := context.WithCancel(ctx)
	return &instance{
		measurementID: id,
		iface:         iface,
		interval:      opts.Interval,
		spec:          opts.Spec,
		runner: netperf.Runner{
			Binary:     opts.Binary,
			ScratchDir: opts.ScratchDir,
		},
		store: results.Store{
			ScratchDir: opts.ScratchDir,
			FinalDir:   opts.ResultsDir,
			Compress:   opts.Compress,
		},
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Runs measurement cycles until the context is cancelled.
//
// A cycle runs netperfmeter, delivers the results, and sleeps the
// configured interval. A failed cycle is logged, counted, and retried
// after a backoff; it never terminates the instance. Only cancellation
// does.
func (inst *instance) run() {
	defer close(inst.done)
	defer inst.cancel()

	ctx := inst.ctx

	for {
		pause := inst.interval
		if err := inst.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			inst.recordFailure()
			slog.Warn("measurement cycle failed, backing off",
				"measurement", inst.measurementID,
				"error", err,
			)
			pause = errorBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(pause):
		}
	}
}

// Executes one measurement cycle: run netperfmeter, then deliver whatever
// it produced.
func (inst *instance) cycle(ctx context.Context) error {
	started := time.Now()

	res, err := inst.runner.Run(ctx, inst.spec, inst.iface, inst.measurementID)
	if err != nil {
		return err
	}
	slog.Debug("netperfmeter finished",
		"measurement", inst.measurementID,
		"vector", res.VectorFile,
		"scalar", res.ScalarFile,
	)

	installed, err := inst.store.Deliver(inst.measurementID)
	if err != nil {
		return err
	}

	telemetry.ResultFilesTotal.Add(float64(installed))
	telemetry.CyclesTotal.Inc()
	telemetry.CycleDurationSeconds.Observe(time.Since(started).Seconds())

	inst.mu.Lock()
	inst.cycles++
	inst.mu.Unlock()

	return nil
}

// Records a failed cycle.
func (inst *instance) recordFailure() {
	telemetry.CycleFailuresTotal.Inc()
	inst.mu.Lock()
	inst.failures++
	inst.mu.Unlock()
}

// Cancels the instance and waits for its loop to exit.
func (inst *instance) stop() {
	inst.cancel()
	<-inst.done
}

// Reports whether the instance's loop has exited.
func (inst *instance) finished() bool {
	select {
	case <-inst.done:
		return true
	default:
		return false
	}
}

// Returns the instance state for the control socket.
func (inst *instance) status() control.InstanceStatus {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	state := stateRunning
	if inst.finished() {
		state = stateStopped
	}

	return control.InstanceStatus{
		MeasurementID: inst.measurementID,
		Interface:     inst.iface,
		State:         state,
		Cycles:        inst.cycles,
		Failures:      inst.failures,
	}
}
