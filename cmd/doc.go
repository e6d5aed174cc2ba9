// Package cmd implements the command-line interface for substrate. It
// provides a hierarchical command structure for observing and exercising
// the messaging primitives.
//
// The package is organized into several subpackages:
//
//   - watch: Commands for observing live counters from mapped files
//   - demo: Commands for running a demo counter writer
//   - perf: Commands for benchmarking the queue and counters primitives
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See substrate -help for a list of all commands.
package cmd
