// Package queue provides a bounded lock-free Multi-Producer Multi-Consumer
// (MPMC) queue backed by a fixed ring of slots with per-slot sequence
// counters.
//
// Features and Guarantees:
//
//   - Lock-Free: claim and publish use atomic compare-and-swap plus
//     release stores, never a lock, never an internal wait
//   - Bounded: capacity is fixed at construction and rounded up to the
//     next power of two; a full queue rejects offers immediately
//   - Thread-Safe: any number of goroutines may Offer and Poll concurrently
//   - Per-Producer FIFO: elements of one producer are delivered in the
//     order that producer successfully offered them; no total order is
//     defined across producers
//   - Relaxed Size/Peek: Size and Peek can transiently disagree with
//     IsEmpty while an offer or poll is in flight, because in-progress
//     operations are never spun on. IsEmpty alone is authoritative for
//     "nothing currently retrievable". This trades perfect cross-method
//     consistency for bounded latency under contention.
package queue
