// Package runtime manages containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides the two
// container shapes the experiment workflow needs. Build containers run a
// long-lived idle task on the host network so recipe steps can exec
// commands and stream files in and out as tar pipes; their final
// filesystem state can be committed and exported as an OCI archive.
// Experiment containers join the network namespace of a sibling container,
// carry the elevated network capabilities and bind mounts the measurement
// needs, and run their image entrypoint to completion.
//
// Images arrive either by registry pull or by importing an OCI archive,
// which is tagged with a deterministic content hash and unpacked for the
// host platform.
//
// Example usage:
//
//	rt, err := runtime.New(runtime.DefaultAddress, runtime.DefaultNamespace)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartBuildContainer(ctx, "docker.io/library/debian:trixie", "build-1")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "echo hello", nil, "")
//	if err != nil {
//	    return err
//	}
//
//	if err := ctr.Export(ctx, "dist", []string{"/opt/netperfmeter"}); err != nil {
//	    return err
//	}
package runtime
