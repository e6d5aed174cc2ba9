// Package bitutil provides low-level bit, sizing, and alignment helpers
// shared by the buffer, queue, and counters packages.
//
// The package contains:
//   - power-of-two sizing and checks used to dimension ring buffers
//   - branch-free alignment arithmetic for record and frame strides
//   - a hex codec for dumping and parsing raw buffer contents
//   - index cycling helpers for fixed-size arrays
//
// All functions are pure and allocation-free unless they return a new
// slice or string, and are therefore safe for concurrent use.
package bitutil
