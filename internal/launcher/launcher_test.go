package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/simula/nperfd/internal/config"
	"github.com/simula/nperfd/internal/metadata"
	"github.com/simula/nperfd/internal/netperf"
)

func testOptions(t *testing.T) Options {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config")
	nodeIDPath := filepath.Join(dir, "nodeid")

	content := `{"measurement_id": 42, "mcc": "242", "mnc": "01"}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(nodeIDPath, []byte("534\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	return Options{
		ConfigPath: configPath,
		NodeIDPath: nodeIDPath,
		Binary:     "/bin/false",
		ResultsDir: filepath.Join(dir, "results"),
		ScratchDir: filepath.Join(dir, "scratch"),
		Spec:       netperf.DefaultSpec(),
		Interval:   time.Hour,
	}
}

func TestNew(t *testing.T) {
	l, err := New(testOptions(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.nodeID != 534 {
		t.Errorf("nodeID = %d, want 534", l.nodeID)
	}
	if l.exp.MeasurementID != 42 {
		t.Errorf("MeasurementID = %d, want 42", l.exp.MeasurementID)
	}
}

func TestNewMissingConfig(t *testing.T) {
	opts := testOptions(t)
	opts.ConfigPath = filepath.Join(t.TempDir(), "missing")

	if _, err := New(opts); !errors.Is(err, config.ErrConfig) {
		t.Fatalf("error = %v, want ErrConfig", err)
	}
}

func TestNewMissingNodeID(t *testing.T) {
	opts := testOptions(t)
	opts.NodeIDPath = filepath.Join(t.TempDir(), "missing")

	if _, err := New(opts); !errors.Is(err, config.ErrNodeID) {
		t.Fatalf("error = %v, want ErrNodeID", err)
	}
}

func TestNewInvalidSpec(t *testing.T) {
	opts := testOptions(t)
	opts.Spec.DestPort = 0

	if _, err := New(opts); !errors.Is(err, netperf.ErrInvalidSpec) {
		t.Fatalf("error = %v, want ErrInvalidSpec", err)
	}
}

func TestNewNegativeInterval(t *testing.T) {
	opts := testOptions(t)
	opts.Interval = -time.Minute

	if _, err := New(opts); !errors.Is(err, netperf.ErrInvalidSpec) {
		t.Fatalf("error = %v, want ErrInvalidSpec", err)
	}
}

func TestHandleUpdateIgnoresOtherCarrier(t *testing.T) {
	l, err := New(testOptions(t))
	if err != nil {
		t.Fatal(err)
	}

	update := &metadata.ModemUpdate{
		Interface:  "op0",
		IMSIMCCMNC: "26201",
		NWMCCMNC:   "26201",
	}

	if err := l.handleUpdate(context.Background(), update); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.instances) != 0 {
		t.Fatalf("instances = %d, want 0", len(l.instances))
	}
}

func TestHandleUpdateRoamingIsFatal(t *testing.T) {
	l, err := New(testOptions(t))
	if err != nil {
		t.Fatal(err)
	}

	update := &metadata.ModemUpdate{
		Interface:  "op0",
		IMSIMCCMNC: "24201",
		NWMCCMNC:   "26201",
	}

	if err := l.handleUpdate(context.Background(), update); !errors.Is(err, ErrRoaming) {
		t.Fatalf("error = %v, want ErrRoaming", err)
	}
	if len(l.instances) != 0 {
		t.Fatalf("instances = %d, want 0", len(l.instances))
	}
}

func TestHandleUpdateStartsInstance(t *testing.T) {
	l, err := New(testOptions(t))
	if err != nil {
		t.Fatal(err)
	}

	// A cancelled context lets the instance loop exit immediately.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	update := &metadata.ModemUpdate{
		Interface:  "op0",
		IMSIMCCMNC: "24201",
		NWMCCMNC:   "24201",
	}

	if err := l.handleUpdate(ctx, update); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.instances) != 1 {
		t.Fatalf("instances = %d, want 1", len(l.instances))
	}

	inst := l.instances[l.exp.MeasurementID]
	if inst.iface != "op0" {
		t.Errorf("iface = %q, want op0", inst.iface)
	}

	l.stopInstances()
	if !inst.finished() {
		t.Error("instance still running after stop")
	}
}

func TestHandleUpdateKeepsRunningInstance(t *testing.T) {
	l, err := New(testOptions(t))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	update := &metadata.ModemUpdate{
		Interface:  "op0",
		IMSIMCCMNC: "24201",
		NWMCCMNC:   "24201",
	}

	if err := l.handleUpdate(ctx, update); err != nil {
		t.Fatal(err)
	}
	first := l.instances[l.exp.MeasurementID]

	// A second matching update must not replace the live instance.
	if err := l.handleUpdate(ctx, update); err != nil {
		t.Fatal(err)
	}
	if l.instances[l.exp.MeasurementID] != first {
		t.Fatal("running instance was replaced")
	}

	cancel()
	l.stopInstances()
}

func TestInstanceStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inst := newInstance(ctx, 42, "op0", testOptions(t))

	st := inst.status()
	if st.MeasurementID != 42 || st.Interface != "op0" {
		t.Errorf("status = %+v", st)
	}
	if st.State != stateRunning {
		t.Errorf("state = %q, want %q", st.State, stateRunning)
	}

	go inst.run()
	<-inst.done

	if st := inst.status(); st.State != stateStopped {
		t.Errorf("state = %q, want %q", st.State, stateStopped)
	}
	if !inst.finished() {
		t.Error("finished = false after loop exit")
	}
}

func TestStopJustStartedInstance(t *testing.T) {
	inst := newInstance(context.Background(), 42, "op0", testOptions(t))
	go inst.run()

	// stop must return even when it races the loop goroutine's startup.
	stopped := make(chan struct{})
	go func() {
		inst.stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not return")
	}
	if !inst.finished() {
		t.Error("finished = false after stop")
	}
}
