package counters

import (
	"strings"
	"testing"

	"github.com/yuanzhixiang/substrate/lib/buffer"
)

const testTimeoutMs = 100

func newTestManager(t *testing.T, numCounters int, clock IEpochClock, timeoutMs int64) *Manager {
	t.Helper()

	meta := buffer.Wrap(make([]byte, numCounters*MetadataLength))
	values := buffer.Wrap(make([]byte, numCounters*CounterLength))

	manager, err := NewManager(meta, values, clock, timeoutMs)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return manager
}

func TestAllocateAndRead(t *testing.T) {
	manager := newTestManager(t, 8, SystemEpochClock{}, 0)

	id, err := manager.AllocateTyped("bytes-sent", 42)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if id != 0 {
		t.Errorf("expected first id 0, got %d", id)
	}

	if state := manager.CounterState(id); state != RecordAllocated {
		t.Errorf("expected state ALLOCATED, got %d", state)
	}
	if typeID := manager.CounterTypeID(id); typeID != 42 {
		t.Errorf("expected type 42, got %d", typeID)
	}
	if label := manager.CounterLabel(id); label != "bytes-sent" {
		t.Errorf("expected label %q, got %q", "bytes-sent", label)
	}
	if deadline := manager.FreeForReuseDeadline(id); deadline != NotFreeToReuse {
		t.Errorf("expected deadline NotFreeToReuse, got %d", deadline)
	}
	if value := manager.CounterValue(id); value != 0 {
		t.Errorf("expected fresh counter value 0, got %d", value)
	}
}

func TestAllocateAssignsMonotonicIDs(t *testing.T) {
	manager := newTestManager(t, 8, SystemEpochClock{}, 0)

	for i := int32(0); i < 8; i++ {
		id, err := manager.Allocate("counter")
		if err != nil {
			t.Fatalf("allocate %d failed: %v", i, err)
		}
		if id != i {
			t.Errorf("expected id %d, got %d", i, id)
		}
	}
}

func TestAllocateCapacityExceeded(t *testing.T) {
	manager := newTestManager(t, 2, SystemEpochClock{}, 0)

	for i := 0; i < 2; i++ {
		if _, err := manager.Allocate("counter"); err != nil {
			t.Fatalf("allocate %d failed: %v", i, err)
		}
	}

	_, err := manager.Allocate("one too many")
	if !HasCode(err, RetCCapacityExceeded) {
		t.Errorf("expected CapacityExceeded, got %v", err)
	}
}

func TestAllocateWithKey(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	id, err := manager.AllocateWithKey("subscriber-pos", 7, func(key *buffer.Buffer) {
		key.PutInt64(0, 0x1122334455667788)
		key.PutInt32(8, 99)
	})
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	key := manager.CounterKey(id)
	if got := key.GetInt64(0); got != 0x1122334455667788 {
		t.Errorf("expected key int64 0x1122334455667788, got %#x", got)
	}
	if got := key.GetInt32(8); got != 99 {
		t.Errorf("expected key int32 99, got %d", got)
	}
	if key.Capacity() != MaxKeyLength {
		t.Errorf("expected key view capacity %d, got %d", MaxKeyLength, key.Capacity())
	}
}

func TestAllocateFromBuffers(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	id, err := manager.AllocateFromBuffers(3, []byte{0xde, 0xad}, []byte("raw-label"))
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	if typeID := manager.CounterTypeID(id); typeID != 3 {
		t.Errorf("expected type 3, got %d", typeID)
	}
	if label := manager.CounterLabel(id); label != "raw-label" {
		t.Errorf("expected label %q, got %q", "raw-label", label)
	}
	key := manager.CounterKey(id)
	if key.GetUInt8(0) != 0xde || key.GetUInt8(1) != 0xad {
		t.Errorf("key bytes not copied")
	}
}

func TestLabelTruncation(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	long := strings.Repeat("x", MaxLabelLength+100)
	id, err := manager.Allocate(long)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	label := manager.CounterLabel(id)
	if len(label) != MaxLabelLength {
		t.Errorf("expected label truncated to %d, got %d", MaxLabelLength, len(label))
	}
}

func TestAppendToLabel(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	id, err := manager.Allocate("base")
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	if err := manager.AppendToLabel(id, " suffix"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if label := manager.CounterLabel(id); label != "base suffix" {
		t.Errorf("expected label %q, got %q", "base suffix", label)
	}

	// appending past the region capacity truncates silently
	if err := manager.AppendToLabel(id, strings.Repeat("y", MaxLabelLength)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if label := manager.CounterLabel(id); len(label) != MaxLabelLength {
		t.Errorf("expected label truncated to %d, got %d", MaxLabelLength, len(label))
	}
}

func TestSetCounterKeyRejectsOversized(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	id, err := manager.Allocate("counter")
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	err = manager.SetCounterKey(id, make([]byte, MaxKeyLength+1))
	if !HasCode(err, RetCInvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}

	if err := manager.SetCounterKey(id, make([]byte, MaxKeyLength)); err != nil {
		t.Errorf("max-length key rejected: %v", err)
	}
}

func TestFreeRequiresAllocated(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	id, err := manager.Allocate("counter")
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	if err := manager.Free(id); err != nil {
		t.Fatalf("free failed: %v", err)
	}
	if state := manager.CounterState(id); state != RecordReclaimed {
		t.Errorf("expected state RECLAIMED, got %d", state)
	}

	// double free
	if err := manager.Free(id); !HasCode(err, RetCInvalidState) {
		t.Errorf("expected InvalidState on double free, got %v", err)
	}

	// never allocated
	if err := manager.Free(3); !HasCode(err, RetCInvalidState) {
		t.Errorf("expected InvalidState for unallocated id, got %v", err)
	}

	// out of range
	if err := manager.Free(99); !HasCode(err, RetCInvalidArgument) {
		t.Errorf("expected InvalidArgument for out-of-range id, got %v", err)
	}
}

func TestFreeZeroesKey(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	id, err := manager.AllocateWithKey("counter", 1, func(key *buffer.Buffer) {
		key.SetMemory(0, MaxKeyLength, 0xff)
	})
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	if err := manager.Free(id); err != nil {
		t.Fatalf("free failed: %v", err)
	}

	key := manager.CounterKey(id)
	for i := 0; i < MaxKeyLength; i++ {
		if key.GetUInt8(i) != 0 {
			t.Fatalf("key byte %d not zeroed after free", i)
		}
	}
}

func TestReuseQuarantine(t *testing.T) {
	clock := NewCachedEpochClock(1000)
	manager := newTestManager(t, 2, clock, testTimeoutMs)

	first, err := manager.Allocate("first")
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if _, err := manager.Allocate("second"); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	if err := manager.Free(first); err != nil {
		t.Fatalf("free failed: %v", err)
	}

	// the freed id is quarantined until its deadline, so a full buffer
	// still refuses allocation
	clock.Advance(testTimeoutMs - 1)
	if _, err := manager.Allocate("too early"); !HasCode(err, RetCCapacityExceeded) {
		t.Fatalf("expected CapacityExceeded inside quarantine, got %v", err)
	}

	clock.Advance(1)
	id, err := manager.Allocate("reused")
	if err != nil {
		t.Fatalf("allocate after quarantine failed: %v", err)
	}
	if id != first {
		t.Errorf("expected reused id %d, got %d", first, id)
	}
	if value := manager.CounterValue(id); value != 0 {
		t.Errorf("expected reused counter value reset to 0, got %d", value)
	}
	if regID := manager.CounterRegistrationID(id); regID != DefaultRegistrationID {
		t.Errorf("expected registration id reset, got %d", regID)
	}
	if label := manager.CounterLabel(id); label != "reused" {
		t.Errorf("expected label %q, got %q", "reused", label)
	}
}

func TestAvailable(t *testing.T) {
	clock := NewCachedEpochClock(1000)
	manager := newTestManager(t, 4, clock, testTimeoutMs)

	if available := manager.Available(); available != 4 {
		t.Errorf("expected 4 available, got %d", available)
	}

	id, err := manager.Allocate("counter")
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if available := manager.Available(); available != 3 {
		t.Errorf("expected 3 available, got %d", available)
	}

	if err := manager.Free(id); err != nil {
		t.Fatalf("free failed: %v", err)
	}
	if available := manager.Available(); available != 3 {
		t.Errorf("expected quarantined id excluded, got %d", manager.Available())
	}

	clock.Advance(testTimeoutMs)
	if available := manager.Available(); available != 4 {
		t.Errorf("expected 4 available after quarantine, got %d", available)
	}
}

func TestForEachSkipsReclaimed(t *testing.T) {
	manager := newTestManager(t, 8, SystemEpochClock{}, 0)

	ids := make([]int32, 0, 3)
	for _, label := range []string{"a", "b", "c"} {
		id, err := manager.Allocate(label)
		if err != nil {
			t.Fatalf("allocate failed: %v", err)
		}
		ids = append(ids, id)
	}

	if err := manager.Free(ids[1]); err != nil {
		t.Fatalf("free failed: %v", err)
	}

	seen := map[int32]string{}
	manager.ForEach(func(counterID, typeID int32, key *buffer.Buffer, label string) {
		seen[counterID] = label
	})

	if len(seen) != 2 {
		t.Fatalf("expected 2 visited counters, got %d", len(seen))
	}
	if seen[ids[0]] != "a" || seen[ids[2]] != "c" {
		t.Errorf("unexpected visited counters: %v", seen)
	}
	if _, ok := seen[ids[1]]; ok {
		t.Errorf("reclaimed counter was visited")
	}
}

func TestSetCounterValueVisibleToReader(t *testing.T) {
	numCounters := 4
	meta := buffer.Wrap(make([]byte, numCounters*MetadataLength))
	values := buffer.Wrap(make([]byte, numCounters*CounterLength))

	manager, err := NewManager(meta, values, SystemEpochClock{}, 0)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	reader, err := NewReader(meta, values)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	id, err := manager.Allocate("counter")
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	if err := manager.SetCounterValue(id, 777); err != nil {
		t.Fatalf("set value failed: %v", err)
	}
	if err := manager.SetCounterRegistrationID(id, 12); err != nil {
		t.Fatalf("set registration id failed: %v", err)
	}
	if err := manager.SetCounterOwnerID(id, 34); err != nil {
		t.Fatalf("set owner id failed: %v", err)
	}

	if value := reader.CounterValue(id); value != 777 {
		t.Errorf("expected value 777, got %d", value)
	}
	if regID := reader.CounterRegistrationID(id); regID != 12 {
		t.Errorf("expected registration id 12, got %d", regID)
	}
	if ownerID := reader.CounterOwnerID(id); ownerID != 34 {
		t.Errorf("expected owner id 34, got %d", ownerID)
	}
}

func TestNewReaderValidation(t *testing.T) {
	// metadata buffer too small for the values buffer's counter count
	meta := buffer.Wrap(make([]byte, 2*MetadataLength))
	values := buffer.Wrap(make([]byte, 4*CounterLength))

	_, err := NewReader(meta, values)
	if !HasCode(err, RetCInvalidArgument) {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}
