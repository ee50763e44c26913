package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/simula/nperfd/internal"
	"github.com/simula/nperfd/internal/launcher"
	"github.com/simula/nperfd/internal/netperf"
	"github.com/simula/nperfd/internal/paths"
)

// Represents the 'nperfd run' command.
type RunCmd struct {
	Config  string `help:"Experiment configuration file." default:"/monroe/config" type:"path"`
	NodeID  string `name:"nodeid" help:"Node identity file." default:"/nodeid" type:"path"`
	Broker  string `help:"Metadata broker endpoint." default:"tcp://172.17.0.1:5556"`
	Results string `help:"Final results directory." default:"/monroe/results" type:"path"`
	Scratch string `help:"Scratch directory for in-progress output." default:"/tmp/results" type:"path"`
	LogDir  string `help:"Log directory. Empty logs to stderr." default:"/monroe/results/log"`
	Binary  string `help:"Path to the netperfmeter binary." default:"/opt/netperfmeter" type:"path"`

	DestAddr  string        `name:"daddr" help:"Destination address." default:"185.196.88.34"`
	DestPort  int           `name:"dport" help:"Destination port." default:"15211"`
	Transport string        `help:"Transport protocol." default:"udp" enum:"tcp,udp,sctp,dccp"`
	Time      time.Duration `help:"Time to transmit for." default:"5s"`
	Interval  time.Duration `help:"Interval between measurements." default:"6h"`

	OutgoingFrameRate int `help:"Outgoing frame rate per second." default:"30"`
	OutgoingFrameSize int `help:"Outgoing frame size in bytes." default:"166666"`
	IncomingFrameRate int `help:"Incoming frame rate per second." default:"0"`
	IncomingFrameSize int `help:"Incoming frame size in bytes." default:"0"`

	Uncompressed bool   `short:"u" help:"Turn off results compression."`
	AllowRoaming bool   `help:"Allow measurements on a roaming modem."`
	MetricsAddr  string `help:"Prometheus listen address. Empty disables metrics." placeholder:"ADDR"`
}

// Executes the run command.
//
// Builds the launcher from the experiment configuration and blocks until
// the context is cancelled (SIGINT/SIGTERM), a stop command arrives on the
// control socket, or a fatal condition such as an unauthorised roaming
// modem occurs.
func (c *RunCmd) Run(ctx context.Context) error {
	if c.LogDir != "" {
		w, err := logFileWriter(c.LogDir)
		if err != nil {
			return err
		}
		ConfigureLogger(w)
	}

	transport, err := netperf.ParseTransport(c.Transport)
	if err != nil {
		return err
	}

	spec := netperf.Spec{
		DestAddr:          c.DestAddr,
		DestPort:          c.DestPort,
		Runtime:           c.Time,
		Transport:         transport,
		OutgoingFrameRate: c.OutgoingFrameRate,
		OutgoingFrameSize: c.OutgoingFrameSize,
		IncomingFrameRate: c.IncomingFrameRate,
		IncomingFrameSize: c.IncomingFrameSize,
	}

	l, err := launcher.New(launcher.Options{
		ConfigPath:   c.Config,
		NodeIDPath:   c.NodeID,
		Broker:       c.Broker,
		Binary:       c.Binary,
		ResultsDir:   c.Results,
		ScratchDir:   c.Scratch,
		Spec:         spec,
		Interval:     c.Interval,
		Compress:     !c.Uncompressed,
		AllowRoaming: c.AllowRoaming,
		SocketPath:   RootCmd.Socket,
		MetricsAddr:  c.MetricsAddr,
	})
	if err != nil {
		return err
	}

	return l.Run(ctx)
}

// Opens a size-capped, rotating log file in the given directory.
//
// Logs live inside the results directory so the testbed collects them
// together with measurement data, which is why rotation keeps them small.
func logFileWriter(dir string) (io.Writer, error) {
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return nil, err
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, internal.Name+".log"),
		MaxSize:    10, // MiB
		MaxBackups: 5,
		MaxAge:     14, // days
	}, nil
}
