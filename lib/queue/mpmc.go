package queue

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/yuanzhixiang/substrate/lib/bitutil"
)

// headTailPad separates the head and tail counters onto their own cache
// lines so producers and consumers do not false-share.
type headTailPad struct {
	_ [bitutil.CacheLineLength - 8]byte
}

// slot pairs one element with the sequence counter coordinating which
// logical lap of the ring the slot currently belongs to. At rest the
// sequence of slot i equals i + k*capacity for the k-th reuse.
type slot[E any] struct {
	sequence atomic.Int64
	element  atomic.Pointer[E]
}

// MPMC is a bounded lock-free multi-producer multi-consumer queue.
// See the package documentation for its consistency model.
type MPMC[E any] struct {
	capacity int64
	mask     int64
	slots    []slot[E]

	_    headTailPad
	head atomic.Int64
	_    headTailPad
	tail atomic.Int64
	_    headTailPad
}

// NewMPMC creates a queue with the requested capacity rounded up to the
// next power of two. A capacity of 1000 yields 1024; 1024 yields 1024.
// Requested capacities below 2 are rejected.
func NewMPMC[E any](requestedCapacity int) (*MPMC[E], error) {
	if requestedCapacity < 2 {
		return nil, fmt.Errorf("requested capacity must be >= 2: requestedCapacity=%d", requestedCapacity)
	}

	capacity := bitutil.FindNextPositivePowerOfTwo(int64(requestedCapacity))

	q := &MPMC[E]{
		capacity: capacity,
		mask:     capacity - 1,
		slots:    make([]slot[E], capacity),
	}
	for i := int64(0); i < capacity; i++ {
		q.slots[i].sequence.Store(i)
	}

	return q, nil
}

// Capacity returns the actual (power of two) capacity of the queue.
func (q *MPMC[E]) Capacity() int {
	return int(q.capacity)
}

// Offer appends an element to the queue, returning false without blocking
// if the queue is full. A nil element is a contract violation and panics
// before any state is mutated.
//
// Thread-safety: safe for any number of concurrent producers.
func (q *MPMC[E]) Offer(e *E) bool {
	if e == nil {
		panic("element cannot be nil")
	}

	for {
		currentTail := q.tail.Load()
		s := &q.slots[currentTail&q.mask]

		// acquire load: pairs with the release publish in Poll
		if s.sequence.Load() < currentTail {
			// the slot has not completed its previous lap; the queue is
			// full from this producer's point of view
			return false
		}

		if q.tail.CompareAndSwap(currentTail, currentTail+1) {
			s.element.Store(e)
			// release publish: the element store above is visible to any
			// consumer that observes the new sequence
			s.sequence.Store(currentTail + 1)
			return true
		}

		runtime.Gosched()
	}
}

// Poll removes and returns the element at the head of the queue, or nil
// without blocking if nothing is currently retrievable.
//
// Thread-safety: safe for any number of concurrent consumers.
func (q *MPMC[E]) Poll() *E {
	for {
		currentHead := q.head.Load()
		s := &q.slots[currentHead&q.mask]
		attemptedHead := currentHead + 1

		if s.sequence.Load() < attemptedHead {
			// the slot's element has not been published yet; an offer may
			// be in flight but it is never waited on
			return nil
		}

		if q.head.CompareAndSwap(currentHead, attemptedHead) {
			e := s.element.Swap(nil)
			// wrap the freed slot forward one full lap for its next reuse
			s.sequence.Store(attemptedHead + q.mask)
			return e
		}

		runtime.Gosched()
	}
}

// Peek returns the element at the head of the queue without removing it,
// or nil if nothing is currently retrievable. The read is validated by
// re-checking that head did not move, guarding against a torn view.
func (q *MPMC[E]) Peek() *E {
	for {
		currentHead := q.head.Load()
		s := &q.slots[currentHead&q.mask]
		attemptedHead := currentHead + 1
		sequence := s.sequence.Load()

		if sequence < attemptedHead {
			return nil
		}

		if sequence == attemptedHead {
			e := s.element.Load()
			if currentHead == q.head.Load() {
				return e
			}
		}

		runtime.Gosched()
	}
}

// Drain polls elements into the consumer function until the queue yields
// nil or limit elements have been consumed, returning the count. The batch
// is not atomic: producers may append concurrently while draining.
func (q *MPMC[E]) Drain(consumer func(*E), limit int) int {
	count := 0
	for count < limit {
		e := q.Poll()
		if e == nil {
			break
		}
		consumer(e)
		count++
	}
	return count
}

// DrainTo polls up to limit elements, appending them to target, and
// returns the count drained.
func (q *MPMC[E]) DrainTo(target *[]*E, limit int) int {
	count := 0
	for count < limit {
		e := q.Poll()
		if e == nil {
			break
		}
		*target = append(*target, e)
		count++
	}
	return count
}

// Size returns the number of elements in the queue as a snapshot
// approximation: concurrent in-flight offers and polls may make it
// transiently inconsistent with Peek and Poll. Use IsEmpty, not Size == 0,
// to check for emptiness.
func (q *MPMC[E]) Size() int {
	headAfter := q.head.Load()
	var headBefore, currentTail int64
	for {
		headBefore = headAfter
		currentTail = q.tail.Load()
		headAfter = q.head.Load()
		if headAfter == headBefore {
			break
		}
	}

	size := currentTail - headAfter
	switch {
	case size < 0:
		return 0
	case size > q.capacity:
		return int(q.capacity)
	default:
		return int(size)
	}
}

// IsEmpty returns whether the queue holds nothing currently retrievable.
// Unlike Size, this is exact.
func (q *MPMC[E]) IsEmpty() bool {
	for {
		currentHead := q.head.Load()
		currentTail := q.tail.Load()
		if currentHead == q.head.Load() {
			return currentHead == currentTail
		}
	}
}
