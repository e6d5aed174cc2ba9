package counters

import (
	"github.com/yuanzhixiang/substrate/lib/buffer"
)

// Counter is a read-write handle onto a single counter's value slot. It
// addresses the values buffer directly, so hot-path updates are a single
// atomic operation without any id validation.
//
// A Counter created through a Manager owns its record: Close frees the
// underlying counter. Counters over an externally allocated id leave
// lifecycle to whoever allocated it.
type Counter struct {
	valuesBuffer *buffer.Buffer
	manager      *Manager
	id           int32
	offset       int
	closed       bool
}

// NewCounter allocates a counter with the given label and returns a handle
// that owns it.
func (m *Manager) NewCounter(label string) (*Counter, error) {
	return m.NewCounterTyped(label, DefaultTypeID)
}

// NewCounterTyped allocates a counter with the given label and type and
// returns a handle that owns it.
func (m *Manager) NewCounterTyped(label string, typeID int32) (*Counter, error) {
	counterID, err := m.AllocateTyped(label, typeID)
	if err != nil {
		return nil, err
	}

	return &Counter{
		valuesBuffer: m.valuesBuffer,
		manager:      m,
		id:           counterID,
		offset:       CounterOffset(counterID),
	}, nil
}

// CounterForID returns a non-owning handle onto an already allocated
// counter. Close on such a handle does not free the record.
func (r *Reader) CounterForID(counterID int32) (*Counter, error) {
	if err := r.validateCounterID(counterID); err != nil {
		return nil, err
	}

	return &Counter{
		valuesBuffer: r.valuesBuffer,
		id:           counterID,
		offset:       CounterOffset(counterID),
	}, nil
}

// ID returns the counter id this handle addresses.
func (c *Counter) ID() int32 {
	return c.id
}

// Get returns the counter value with acquire semantics.
func (c *Counter) Get() int64 {
	return c.valuesBuffer.GetInt64Volatile(c.offset)
}

// GetWeak returns the counter value with plain memory semantics. Only
// valid from the thread that updates the counter.
func (c *Counter) GetWeak() int64 {
	return c.valuesBuffer.GetInt64(c.offset)
}

// Set publishes value with full ordering.
func (c *Counter) Set(value int64) {
	c.valuesBuffer.PutInt64Volatile(c.offset, value)
}

// SetOrdered publishes value with release semantics, the cheapest safe
// publish for a single-writer counter.
func (c *Counter) SetOrdered(value int64) {
	c.valuesBuffer.PutInt64Ordered(c.offset, value)
}

// Increment atomically adds 1 and returns the previous value.
func (c *Counter) Increment() int64 {
	return c.valuesBuffer.GetAndAddInt64(c.offset, 1)
}

// GetAndAdd atomically adds delta and returns the previous value.
func (c *Counter) GetAndAdd(delta int64) int64 {
	return c.valuesBuffer.GetAndAddInt64(c.offset, delta)
}

// CompareAndSet atomically sets the value to updated if it currently
// equals expected.
func (c *Counter) CompareAndSet(expected, updated int64) bool {
	return c.valuesBuffer.CompareAndSetInt64(c.offset, expected, updated)
}

// Close frees the underlying counter record if this handle owns it.
// Closing twice is a no-op.
func (c *Counter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.manager != nil {
		return c.manager.Free(c.id)
	}
	return nil
}
