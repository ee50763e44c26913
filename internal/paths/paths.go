package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	daemonName = "nperfd"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Fixed paths inside the experiment container. These are dictated by the
// testbed node scheduler, which mounts the configuration and identity files
// and collects everything under the results directory.
const (

	// Path to the experiment configuration file (read-only mount).
	Config = "/monroe/config"

	// Path to the node identity file (read-only mount).
	NodeID = "/nodeid"

	// Directory collected by the testbed after the experiment (read-write
	// mount).
	Results = "/monroe/results"

	// Directory for launcher and instance log files, inside the results
	// directory so logs are collected together with measurement data.
	Logs = "/monroe/results/log"

	// Scratch directory for in-progress measurement output. Files are only
	// moved into Results once complete and compressed.
	Scratch = "/tmp/results"

	// Path of the netperfmeter binary inside the experiment image.
	Netperfmeter = "/opt/netperfmeter"
)

// Path to the directory for host-side runtime files (control socket, PID).
//
//	Linux:   $XDG_RUNTIME_DIR/nperfd or /run/user/<uid>/nperfd
//	macOS:   ~/Library/Caches/nperfd/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, daemonName)
	}
	return filepath.Join(xdg.CacheHome, daemonName, "run")
}

// Default path to the Unix domain socket used by the status and stop
// commands to reach a running launcher.
func Socket() string {
	return filepath.Join(Runtime(), daemonName+".sock")
}

// Default path to the PID file.
func PIDFile() string {
	return filepath.Join(Runtime(), daemonName+".pid")
}
