// Package counters manages the allocation, freeing, and reuse of
// fixed-stride counter records inside two parallel buffers that are
// normally memory-mapped across process boundaries:
//
//   - the values buffer holds one 128-byte cache-line padded slot per
//     counter id with the live value, registration id, and owner id
//   - the metadata buffer holds one 512-byte slot per counter id with the
//     record state, type id, free-for-reuse deadline, key, and label
//
// The Manager is the single logical owner of id assignment and the free
// list; its mutating operations are NOT safe for concurrent callers.
// Counter values, by contrast, are written with release-ordered stores and
// read with volatile loads, so any number of threads or processes mapping
// the values buffer can observe them concurrently. The Reader side of the
// package is what monitoring tools use: it only ever reads the buffers.
//
// A freed counter id only becomes eligible for reallocation once its
// free-for-reuse deadline has elapsed, so readers that cached an id are
// not silently handed a reused record.
package counters
