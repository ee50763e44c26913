// Package build assembles the experiment image from a staged recipe.
//
// A recipe is an ordered sequence of stages, each backed by a container
// created from a base image. The builder starts a container per stage,
// dispatches its steps (shell commands, host file copies, and cross-stage
// transfers), and exports the single non-transient stage as an OCI archive.
// The repository's netperfmeter recipe follows this shape: a transient
// builder stage compiles netperfmeter from source, and the runtime stage
// assembles the final image from the compiled binary, its runtime
// libraries, and the launcher.
//
// Container operations are delegated to the runtime package. Step state
// (environment variables, working directory, shell) accumulates across
// steps within a stage and resets between stages.
package build
