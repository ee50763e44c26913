// Package results delivers finished measurement output to the directory
// the testbed collects.
//
// netperfmeter writes its vector and scalar files to a scratch directory
// while a measurement is running. Once a cycle completes, a [Store]
// compresses each file with xz and installs it atomically in the final
// results directory (copy to a .tmp name, then rename), so the collector
// never observes partial files.
package results
