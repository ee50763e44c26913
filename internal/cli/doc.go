// Parses flags and configures logging for the nperfd commands.
//
// The binary accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Control socket path.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the global logger is reconfigured to reflect the final level before the
// selected command runs. The run command redirects logging into the
// results log directory so logs are collected with the measurement data.
package cli
