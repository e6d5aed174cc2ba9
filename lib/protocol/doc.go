// Package protocol provides flyweight codecs for the wire frames exchanged
// between transport peers.
//
// A flyweight is a stateless window onto a buffer region: wrapping is just
// storing a buffer reference and a byte offset, so a single flyweight can
// be re-wrapped over many frames without allocation. All fields are
// little-endian and accessed with plain (non-atomic) reads and writes.
// Flyweights perform no validation; callers are expected to know the frame
// type before reading typed fields.
package protocol
