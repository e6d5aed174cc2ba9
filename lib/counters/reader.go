package counters

import (
	"github.com/yuanzhixiang/substrate/lib/bitutil"
	"github.com/yuanzhixiang/substrate/lib/buffer"
)

// --------------------------------------------------------------------------
// Record Layout
// --------------------------------------------------------------------------
//
// Values buffer, one slot per counter id (cache-line padded stride):
//
//	[0:8)    counter value (i64, atomic)
//	[8:16)   registration id (i64, atomic)
//	[16:24)  owner id (i64)
//	[24:128) padding to stride
//
// Metadata buffer, one slot per counter id:
//
//	[0:4)     record state (i32: 0=RECLAIMED, 1=ALLOCATED)
//	[4:8)     type id (i32)
//	[8:16)    free-for-reuse deadline ms (i64)
//	[16:128)  key (112 bytes max)
//	[128:132) label length (i32, high bit reserved)
//	[132:512) label (380 bytes max)

const (
	// CounterLength is the stride of one slot in the values buffer.
	CounterLength = 2 * bitutil.CacheLineLength

	// RegistrationIDOffset locates the registration id inside a values slot.
	RegistrationIDOffset = bitutil.SizeOfInt64

	// OwnerIDOffset locates the owner id inside a values slot.
	OwnerIDOffset = 2 * bitutil.SizeOfInt64

	// MetadataLength is the stride of one slot in the metadata buffer.
	MetadataLength = 512

	// TypeIDOffset locates the type id inside a metadata slot.
	TypeIDOffset = bitutil.SizeOfInt32

	// FreeForReuseDeadlineOffset locates the reuse deadline inside a
	// metadata slot.
	FreeForReuseDeadlineOffset = 2 * bitutil.SizeOfInt32

	// KeyOffset locates the key region inside a metadata slot.
	KeyOffset = FreeForReuseDeadlineOffset + bitutil.SizeOfInt64

	// MaxKeyLength is the key region size.
	MaxKeyLength = 112

	// LabelOffset locates the length-prefixed label inside a metadata slot.
	LabelOffset = KeyOffset + MaxKeyLength

	// MaxLabelLength is the label region size, excluding the length prefix.
	MaxLabelLength = MetadataLength - LabelOffset - bitutil.SizeOfInt32
)

// Record states. The state transition RECLAIMED -> ALLOCATED is published
// last during allocation with a release store, so a reader never observes
// a half-written ALLOCATED record.
const (
	RecordReclaimed int32 = 0
	RecordAllocated int32 = 1
)

const (
	// DefaultTypeID is the type for counters allocated without one.
	DefaultTypeID int32 = 0

	// DefaultRegistrationID and DefaultOwnerID are the reset values a
	// reused counter slot starts from.
	DefaultRegistrationID int64 = 0
	DefaultOwnerID        int64 = 0

	// NotFreeToReuse is the deadline sentinel of a live record.
	NotFreeToReuse int64 = int64(^uint64(0) >> 1)

	// NullCounterID marks the absence of a counter id.
	NullCounterID int32 = -1
)

// --------------------------------------------------------------------------
// Reader
// --------------------------------------------------------------------------

// Reader provides read-only access over the two counter buffers. It is
// what monitoring threads and external processes use; it never mutates
// either buffer.
//
// Thread-safety: all methods are safe for concurrent use against a live
// single-writer Manager, observing its release-ordered publishes.
type Reader struct {
	metaBuffer   *buffer.Buffer
	valuesBuffer *buffer.Buffer
	maxCounterID int32
}

// NewReader creates a Reader over the metadata and values buffers. The
// metadata buffer must be large enough to hold one metadata slot for every
// values slot.
func NewReader(metaBuffer, valuesBuffer *buffer.Buffer) (*Reader, error) {
	valuesBuffer.VerifyAlignment()
	metaBuffer.VerifyAlignment()

	if metaBuffer.Capacity() < valuesBuffer.Capacity()*(MetadataLength/CounterLength) {
		return nil, newErrorf(RetCInvalidArgument,
			"metadata buffer is too small: metadata=%d values=%d",
			metaBuffer.Capacity(), valuesBuffer.Capacity())
	}

	return &Reader{
		metaBuffer:   metaBuffer,
		valuesBuffer: valuesBuffer,
		maxCounterID: int32(valuesBuffer.Capacity()/CounterLength) - 1,
	}, nil
}

// Capacity returns the number of counters the buffers can hold.
func (r *Reader) Capacity() int {
	return int(r.maxCounterID) + 1
}

// MaxCounterID returns the highest valid counter id.
func (r *Reader) MaxCounterID() int32 {
	return r.maxCounterID
}

// CounterOffset returns the byte offset of a counter id in the values
// buffer.
func CounterOffset(counterID int32) int {
	return int(counterID) * CounterLength
}

// MetadataOffset returns the byte offset of a counter id in the metadata
// buffer.
func MetadataOffset(counterID int32) int {
	return int(counterID) * MetadataLength
}

func (r *Reader) validateCounterID(counterID int32) error {
	if counterID < 0 || counterID > r.maxCounterID {
		return newErrorf(RetCInvalidArgument,
			"counter id out of range: id=%d maxCounterId=%d", counterID, r.maxCounterID)
	}
	return nil
}

// mustValidID is the hot-path id check for read accessors. An out-of-range
// id is a programming error, handled the same way the buffer layer handles
// an out-of-range offset.
func (r *Reader) mustValidID(counterID int32) {
	if err := r.validateCounterID(counterID); err != nil {
		panic(err)
	}
}

// CounterValue reads the value of a counter with acquire semantics.
func (r *Reader) CounterValue(counterID int32) int64 {
	r.mustValidID(counterID)
	return r.valuesBuffer.GetInt64Volatile(CounterOffset(counterID))
}

// CounterRegistrationID reads the registration id of a counter with
// acquire semantics.
func (r *Reader) CounterRegistrationID(counterID int32) int64 {
	r.mustValidID(counterID)
	return r.valuesBuffer.GetInt64Volatile(CounterOffset(counterID) + RegistrationIDOffset)
}

// CounterOwnerID reads the owner id of a counter.
func (r *Reader) CounterOwnerID(counterID int32) int64 {
	r.mustValidID(counterID)
	return r.valuesBuffer.GetInt64(CounterOffset(counterID) + OwnerIDOffset)
}

// CounterState reads the record state of a counter with acquire semantics.
func (r *Reader) CounterState(counterID int32) int32 {
	r.mustValidID(counterID)
	return r.metaBuffer.GetInt32Volatile(MetadataOffset(counterID))
}

// CounterTypeID reads the type id of a counter.
func (r *Reader) CounterTypeID(counterID int32) int32 {
	r.mustValidID(counterID)
	return r.metaBuffer.GetInt32(MetadataOffset(counterID) + TypeIDOffset)
}

// FreeForReuseDeadline reads the earliest time at which a freed counter id
// may be reallocated.
func (r *Reader) FreeForReuseDeadline(counterID int32) int64 {
	r.mustValidID(counterID)
	return r.metaBuffer.GetInt64(MetadataOffset(counterID) + FreeForReuseDeadlineOffset)
}

// CounterLabel reads the label of a counter.
func (r *Reader) CounterLabel(counterID int32) string {
	r.mustValidID(counterID)
	return r.label(MetadataOffset(counterID))
}

// CounterKey returns a read view of the key region of a counter. The view
// shares memory with the metadata buffer.
func (r *Reader) CounterKey(counterID int32) *buffer.Buffer {
	r.mustValidID(counterID)
	return r.metaBuffer.Slice(MetadataOffset(counterID)+KeyOffset, MaxKeyLength)
}

func (r *Reader) label(recordOffset int) string {
	length := r.metaBuffer.GetInt32(recordOffset + LabelOffset)
	if length <= 0 {
		return ""
	}
	if length > MaxLabelLength {
		length = MaxLabelLength
	}
	return string(r.metaBuffer.GetBytes(recordOffset+LabelOffset+bitutil.SizeOfInt32, int(length)))
}

// ForEach walks every ALLOCATED record, invoking the consumer with the
// counter id, type id, a read view of the key region, and the label.
// RECLAIMED records are skipped; an unexpected state value is treated as a
// corrupted record and skipped defensively rather than raised.
func (r *Reader) ForEach(consumer func(counterID, typeID int32, key *buffer.Buffer, label string)) {
	for id := int32(0); id <= r.maxCounterID; id++ {
		recordOffset := MetadataOffset(id)

		// acquire load pairs with the manager's release publish of the
		// ALLOCATED transition
		state := r.metaBuffer.GetInt32Volatile(recordOffset)
		if state != RecordAllocated {
			continue
		}

		typeID := r.metaBuffer.GetInt32(recordOffset + TypeIDOffset)
		key := r.metaBuffer.Slice(recordOffset+KeyOffset, MaxKeyLength)
		consumer(id, typeID, key, r.label(recordOffset))
	}
}
