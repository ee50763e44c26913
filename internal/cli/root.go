package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/simula/nperfd/internal"
)

// Represents the root command for the nperfd daemon.
var RootCmd struct {
	Quiet   bool   `short:"q" help:"Suppress informational output."`
	Verbose bool   `short:"v" help:"Enable verbose output."`
	Debug   bool   `short:"d" help:"Enable debug output."`
	Socket  string `short:"s" help:"Override the default control socket path." placeholder:"PATH"`

	Run     RunCmd     `cmd:"" help:"Run the measurement launcher."`
	Deploy  DeployCmd  `cmd:"" help:"Run the experiment container on this node."`
	Build   BuildCmd   `cmd:"" help:"Build the experiment image from a recipe."`
	Status  StatusCmd  `cmd:"" help:"Show the state of a running launcher."`
	Stop    StopCmd    `cmd:"" help:"Stop a running launcher."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Containerised netperfmeter experiment for multi-homed testbed nodes."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	ConfigureLogger(os.Stderr)

	return kongCtx.Run()
}

// Configures the global logger to write to w at the level selected by CLI
// flags and build-time defaults.
//
// Called once after flag parsing, and again by the run command to redirect
// logging into the results log directory.
func ConfigureLogger(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     logLevel(),
		AddSource: RootCmd.Verbose || internal.IsVerbose(),
	})
	slog.SetDefault(slog.New(handler).With("app", internal.Name))
}

// Returns the log level derived from CLI flags and build-time defaults.
func logLevel() slog.Level {
	if RootCmd.Debug || internal.IsDebug() {
		return slog.LevelDebug
	}
	if RootCmd.Quiet || internal.IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
