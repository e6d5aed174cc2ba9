// Package buffer provides a borrowed, fixed-length byte buffer with typed
// accessors at byte offsets in three access modes:
//
//   - plain: ordinary little-endian reads and writes, no ordering guarantees
//   - volatile: atomic loads and stores with acquire/release visibility,
//     for fields observed by other threads or processes
//   - ordered: release-only stores ("lazy set") used to publish a record
//     after all of its prior writes
//
// A Buffer never owns its backing memory. It is constructed over a byte
// slice supplied by the caller (a heap allocation, a test region, or a
// memory-mapped file created with MapNew/MapExisting) and only borrows it
// for the duration of its use. Every accessor bounds-checks the requested
// offset and length against the capacity; a violation is a contract breach
// and panics.
//
// Atomic accessors additionally require natural alignment of the target
// offset and an 8-byte aligned backing slice (VerifyAlignment). Heap
// allocations and page-aligned mappings both satisfy this.
package buffer
