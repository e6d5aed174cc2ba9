package counters

import (
	"sync"
	"testing"

	"github.com/yuanzhixiang/substrate/lib/buffer"
)

func TestCounterGetSet(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	counter, err := manager.NewCounter("messages")
	if err != nil {
		t.Fatalf("NewCounter failed: %v", err)
	}

	counter.Set(10)
	if got := counter.Get(); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}

	counter.SetOrdered(20)
	if got := counter.Get(); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
	if got := counter.GetWeak(); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
}

func TestCounterIncrementAndAdd(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	counter, err := manager.NewCounterTyped("errors", 9)
	if err != nil {
		t.Fatalf("NewCounterTyped failed: %v", err)
	}

	if prev := counter.Increment(); prev != 0 {
		t.Errorf("expected previous 0, got %d", prev)
	}
	if prev := counter.GetAndAdd(5); prev != 1 {
		t.Errorf("expected previous 1, got %d", prev)
	}
	if got := counter.Get(); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}

	if !counter.CompareAndSet(6, 100) {
		t.Error("expected CAS to succeed")
	}
	if counter.CompareAndSet(6, 200) {
		t.Error("expected CAS against stale value to fail")
	}
	if got := counter.Get(); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
}

func TestCounterCloseFreesRecord(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	counter, err := manager.NewCounter("short-lived")
	if err != nil {
		t.Fatalf("NewCounter failed: %v", err)
	}
	id := counter.ID()

	if err := counter.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if state := manager.CounterState(id); state != RecordReclaimed {
		t.Errorf("expected state RECLAIMED after close, got %d", state)
	}

	// close is idempotent
	if err := counter.Close(); err != nil {
		t.Errorf("second close errored: %v", err)
	}
}

func TestCounterForIDIsNonOwning(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	id, err := manager.Allocate("external")
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	counter, err := manager.CounterForID(id)
	if err != nil {
		t.Fatalf("CounterForID failed: %v", err)
	}

	counter.Set(5)
	if got := manager.CounterValue(id); got != 5 {
		t.Errorf("expected 5 via reader, got %d", got)
	}

	if err := counter.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if state := manager.CounterState(id); state != RecordAllocated {
		t.Errorf("non-owning close freed the record, state=%d", state)
	}

	if _, err := manager.CounterForID(99); !HasCode(err, RetCInvalidArgument) {
		t.Errorf("expected InvalidArgument for out-of-range id, got %v", err)
	}
}

func TestCounterConcurrentIncrements(t *testing.T) {
	manager := newTestManager(t, 4, SystemEpochClock{}, 0)

	counter, err := manager.NewCounter("contended")
	if err != nil {
		t.Fatalf("NewCounter failed: %v", err)
	}

	const numWorkers = 8
	const incrementsPerWorker = 10000

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < incrementsPerWorker; i++ {
				counter.Increment()
			}
		}()
	}
	wg.Wait()

	if got := counter.Get(); got != numWorkers*incrementsPerWorker {
		t.Errorf("expected %d, got %d", numWorkers*incrementsPerWorker, got)
	}
}

func BenchmarkCounterIncrement(b *testing.B) {
	meta := buffer.Wrap(make([]byte, 4*MetadataLength))
	values := buffer.Wrap(make([]byte, 4*CounterLength))
	manager, err := NewDefaultManager(meta, values)
	if err != nil {
		b.Fatalf("NewDefaultManager failed: %v", err)
	}
	counter, err := manager.NewCounter("bench")
	if err != nil {
		b.Fatalf("NewCounter failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		counter.Increment()
	}
}

func BenchmarkCounterIncrementParallel(b *testing.B) {
	meta := buffer.Wrap(make([]byte, 4*MetadataLength))
	values := buffer.Wrap(make([]byte, 4*CounterLength))
	manager, err := NewDefaultManager(meta, values)
	if err != nil {
		b.Fatalf("NewDefaultManager failed: %v", err)
	}
	counter, err := manager.NewCounter("bench-parallel")
	if err != nil {
		b.Fatalf("NewCounter failed: %v", err)
	}

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			counter.Increment()
		}
	})
}
