// Provides the fixed in-container experiment paths and platform-appropriate
// host-side paths for the daemon.
//
// In-container paths follow the testbed node layout (configuration and node
// identity files mounted read-only, results collected from a single
// directory). Host-side paths follow XDG conventions with "nperfd" as the
// subdirectory under each base path.
package paths
