package counters

import (
	"github.com/yuanzhixiang/substrate/lib/bitutil"
	"github.com/yuanzhixiang/substrate/lib/buffer"
)

// Manager allocates, frees, and reuses counter records inside the two
// buffers. Counters should be centrally managed: exactly one logical owner
// drives Allocate/Free/Set* while any number of external readers observe
// the buffers through a Reader.
//
// Thread-safety: mutating methods are NOT safe for concurrent callers.
type Manager struct {
	Reader

	freeToReuseTimeoutMs int64
	clock                IEpochClock
	freeList             []int32
	highWaterMarkID      int32
}

// NewManager creates a manager over the metadata and values buffers. The
// clock supplies deadline time; freeToReuseTimeoutMs is how long a freed
// id is quarantined before it may be reallocated.
func NewManager(metaBuffer, valuesBuffer *buffer.Buffer, clock IEpochClock, freeToReuseTimeoutMs int64) (*Manager, error) {
	reader, err := NewReader(metaBuffer, valuesBuffer)
	if err != nil {
		return nil, err
	}

	return &Manager{
		Reader:               *reader,
		freeToReuseTimeoutMs: freeToReuseTimeoutMs,
		clock:                clock,
		highWaterMarkID:      NullCounterID,
	}, nil
}

// NewDefaultManager creates a manager with the system clock and no reuse
// quarantine.
func NewDefaultManager(metaBuffer, valuesBuffer *buffer.Buffer) (*Manager, error) {
	return NewManager(metaBuffer, valuesBuffer, SystemEpochClock{}, 0)
}

// Available returns an approximation of how many counters can still be
// allocated: the remaining never-used capacity plus free-list entries
// whose reuse deadline has already elapsed. The free list is scanned on
// every call; the result is a snapshot, not an atomic count.
func (m *Manager) Available() int {
	freeListCount := 0

	if len(m.freeList) > 0 {
		nowMs := m.clock.TimeMillis()
		for _, counterID := range m.freeList {
			deadline := m.metaBuffer.GetInt64(MetadataOffset(counterID) + FreeForReuseDeadlineOffset)
			if nowMs >= deadline {
				freeListCount++
			}
		}
	}

	return (m.Capacity() - int(m.highWaterMarkID) - 1) + freeListCount
}

// --------------------------------------------------------------------------
// Allocation
// --------------------------------------------------------------------------

// Allocate allocates a new counter with the given label and the default
// type, returning its id.
func (m *Manager) Allocate(label string) (int32, error) {
	return m.AllocateTyped(label, DefaultTypeID)
}

// AllocateTyped allocates a new counter with the given label and type.
func (m *Manager) AllocateTyped(label string, typeID int32) (int32, error) {
	counterID, err := m.nextCounterID()
	if err != nil {
		return NullCounterID, err
	}

	recordOffset := MetadataOffset(counterID)
	defer m.reclaimOnPanic(counterID)

	m.metaBuffer.PutInt32(recordOffset+TypeIDOffset, typeID)
	m.metaBuffer.PutInt64(recordOffset+FreeForReuseDeadlineOffset, NotFreeToReuse)
	m.putLabel(recordOffset, label)

	m.metaBuffer.PutInt32Ordered(recordOffset, RecordAllocated)

	return counterID, nil
}

// AllocateWithKey allocates a new counter with the given label and type,
// invoking keyFunc with a view of exactly the record's key region so the
// caller can fill in whatever key it wants.
func (m *Manager) AllocateWithKey(label string, typeID int32, keyFunc func(key *buffer.Buffer)) (int32, error) {
	counterID, err := m.nextCounterID()
	if err != nil {
		return NullCounterID, err
	}

	recordOffset := MetadataOffset(counterID)
	defer m.reclaimOnPanic(counterID)

	m.metaBuffer.PutInt32(recordOffset+TypeIDOffset, typeID)
	keyFunc(m.metaBuffer.Slice(recordOffset+KeyOffset, MaxKeyLength))
	m.metaBuffer.PutInt64(recordOffset+FreeForReuseDeadlineOffset, NotFreeToReuse)
	m.putLabel(recordOffset, label)

	m.metaBuffer.PutInt32Ordered(recordOffset, RecordAllocated)

	return counterID, nil
}

// AllocateFromBuffers allocates a counter copying the raw key and label
// bytes directly, the minimum-allocation path. A nil key skips the key
// copy; key and label are truncated to their regions.
func (m *Manager) AllocateFromBuffers(typeID int32, key, label []byte) (int32, error) {
	counterID, err := m.nextCounterID()
	if err != nil {
		return NullCounterID, err
	}

	recordOffset := MetadataOffset(counterID)
	defer m.reclaimOnPanic(counterID)

	m.metaBuffer.PutInt32(recordOffset+TypeIDOffset, typeID)
	m.metaBuffer.PutInt64(recordOffset+FreeForReuseDeadlineOffset, NotFreeToReuse)

	if key != nil {
		if len(key) > MaxKeyLength {
			key = key[:MaxKeyLength]
		}
		m.metaBuffer.PutBytes(recordOffset+KeyOffset, key)
	}

	if len(label) > MaxLabelLength {
		label = label[:MaxLabelLength]
	}
	m.metaBuffer.PutBytes(recordOffset+LabelOffset+bitutil.SizeOfInt32, label)
	m.metaBuffer.PutInt32Ordered(recordOffset+LabelOffset, int32(len(label)))

	m.metaBuffer.PutInt32Ordered(recordOffset, RecordAllocated)

	return counterID, nil
}

// reclaimOnPanic pushes a counter id back onto the free list if record
// writing fails after the id was obtained, so an aborted allocation never
// leaks the id or leaves a poisoned ALLOCATED record.
func (m *Manager) reclaimOnPanic(counterID int32) {
	if r := recover(); r != nil {
		m.freeList = append(m.freeList, counterID)
		panic(r)
	}
}

// nextCounterID produces an id from the first free-list entry whose reuse
// deadline has elapsed, resetting its values slot, or from the high-water
// mark of never-used ids.
func (m *Manager) nextCounterID() (int32, error) {
	if len(m.freeList) > 0 {
		nowMs := m.clock.TimeMillis()

		for i, counterID := range m.freeList {
			deadline := m.metaBuffer.GetInt64(MetadataOffset(counterID) + FreeForReuseDeadlineOffset)
			if nowMs < deadline {
				continue
			}

			m.freeList = append(m.freeList[:i], m.freeList[i+1:]...)

			offset := CounterOffset(counterID)
			m.valuesBuffer.PutInt64Ordered(offset+RegistrationIDOffset, DefaultRegistrationID)
			m.valuesBuffer.PutInt64(offset+OwnerIDOffset, DefaultOwnerID)
			m.valuesBuffer.PutInt64Ordered(offset, 0)

			return counterID, nil
		}
	}

	if m.highWaterMarkID+1 > m.maxCounterID {
		return NullCounterID, newErrorf(RetCCapacityExceeded,
			"unable to allocate counter, buffer is full: maxCounterId=%d", m.maxCounterID)
	}

	m.highWaterMarkID++
	return m.highWaterMarkID, nil
}

// --------------------------------------------------------------------------
// Freeing
// --------------------------------------------------------------------------

// Free reclaims the counter identified by counterID. The record must
// currently be ALLOCATED; freeing an unallocated id (or a double free) is
// an InvalidState error. The key region is zeroed immediately so stale key
// bytes cannot leak into the next reuse, and the id is quarantined until
// now + freeToReuseTimeoutMs.
func (m *Manager) Free(counterID int32) error {
	if err := m.validateCounterID(counterID); err != nil {
		return err
	}

	offset := MetadataOffset(counterID)

	if m.metaBuffer.GetInt32Volatile(offset) != RecordAllocated {
		return newErrorf(RetCInvalidState, "counter not allocated: id=%d", counterID)
	}

	m.metaBuffer.PutInt32Ordered(offset, RecordReclaimed)
	m.metaBuffer.SetMemory(offset+KeyOffset, MaxKeyLength, 0)
	m.metaBuffer.PutInt64(offset+FreeForReuseDeadlineOffset, m.clock.TimeMillis()+m.freeToReuseTimeoutMs)
	m.freeList = append(m.freeList, counterID)

	return nil
}

// --------------------------------------------------------------------------
// Record Mutators
// --------------------------------------------------------------------------

// SetCounterValue publishes a counter value with release semantics.
func (m *Manager) SetCounterValue(counterID int32, value int64) error {
	if err := m.validateCounterID(counterID); err != nil {
		return err
	}
	m.valuesBuffer.PutInt64Ordered(CounterOffset(counterID), value)
	return nil
}

// SetCounterRegistrationID publishes a counter registration id with
// release semantics.
func (m *Manager) SetCounterRegistrationID(counterID int32, registrationID int64) error {
	if err := m.validateCounterID(counterID); err != nil {
		return err
	}
	m.valuesBuffer.PutInt64Ordered(CounterOffset(counterID)+RegistrationIDOffset, registrationID)
	return nil
}

// SetCounterOwnerID sets a counter owner id.
func (m *Manager) SetCounterOwnerID(counterID int32, ownerID int64) error {
	if err := m.validateCounterID(counterID); err != nil {
		return err
	}
	m.valuesBuffer.PutInt64(CounterOffset(counterID)+OwnerIDOffset, ownerID)
	return nil
}

// SetCounterKey copies key into the record's key region. Keys longer than
// the region are rejected, not truncated.
func (m *Manager) SetCounterKey(counterID int32, key []byte) error {
	if err := m.validateCounterID(counterID); err != nil {
		return err
	}
	if len(key) > MaxKeyLength {
		return newErrorf(RetCInvalidArgument,
			"key is too long: %d, max: %d", len(key), MaxKeyLength)
	}
	m.metaBuffer.PutBytes(MetadataOffset(counterID)+KeyOffset, key)
	return nil
}

// SetCounterKeyWriter invokes keyFunc with a view of the record's key
// region for in-place updates.
func (m *Manager) SetCounterKeyWriter(counterID int32, keyFunc func(key *buffer.Buffer)) error {
	if err := m.validateCounterID(counterID); err != nil {
		return err
	}
	keyFunc(m.metaBuffer.Slice(MetadataOffset(counterID)+KeyOffset, MaxKeyLength))
	return nil
}

// SetCounterLabel replaces a counter label.
func (m *Manager) SetCounterLabel(counterID int32, label string) error {
	if err := m.validateCounterID(counterID); err != nil {
		return err
	}
	m.putLabel(MetadataOffset(counterID), label)
	return nil
}

// AppendToLabel appends to a counter label, silently truncating at the
// label region's capacity. The new length is republished only after the
// appended bytes are in place.
func (m *Manager) AppendToLabel(counterID int32, suffix string) error {
	if err := m.validateCounterID(counterID); err != nil {
		return err
	}

	recordOffset := MetadataOffset(counterID)
	existingLength := int(m.metaBuffer.GetInt32(recordOffset + LabelOffset))
	if existingLength < 0 || existingLength > MaxLabelLength {
		return newErrorf(RetCCorruptedRecord,
			"label length out of range: id=%d length=%d", counterID, existingLength)
	}

	remaining := MaxLabelLength - existingLength
	if len(suffix) > remaining {
		suffix = suffix[:remaining]
	}

	m.metaBuffer.PutBytes(recordOffset+LabelOffset+bitutil.SizeOfInt32+existingLength, []byte(suffix))
	m.metaBuffer.PutInt32Ordered(recordOffset+LabelOffset, int32(existingLength+len(suffix)))

	return nil
}

// putLabel writes the length-prefixed label, truncating at the region
// capacity. Labels are copied byte-wise; the fast path for ASCII and the
// general path are the same in Go since strings are already raw bytes.
func (m *Manager) putLabel(recordOffset int, label string) {
	if len(label) > MaxLabelLength {
		label = label[:MaxLabelLength]
	}
	m.metaBuffer.PutBytes(recordOffset+LabelOffset+bitutil.SizeOfInt32, []byte(label))
	m.metaBuffer.PutInt32Ordered(recordOffset+LabelOffset, int32(len(label)))
}
