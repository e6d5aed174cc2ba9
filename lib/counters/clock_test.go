package counters

import (
	"testing"
	"time"
)

func TestSystemEpochClock(t *testing.T) {
	clock := SystemEpochClock{}

	before := time.Now().UnixMilli()
	got := clock.TimeMillis()
	after := time.Now().UnixMilli()

	if got < before || got > after {
		t.Errorf("clock time %d outside [%d, %d]", got, before, after)
	}
}

func TestCachedEpochClock(t *testing.T) {
	clock := NewCachedEpochClock(500)

	if got := clock.TimeMillis(); got != 500 {
		t.Errorf("expected 500, got %d", got)
	}

	clock.Update(700)
	if got := clock.TimeMillis(); got != 700 {
		t.Errorf("expected 700, got %d", got)
	}

	clock.Advance(50)
	if got := clock.TimeMillis(); got != 750 {
		t.Errorf("expected 750, got %d", got)
	}
}

func TestErrorCodes(t *testing.T) {
	err := newErrorf(RetCInvalidState, "counter not allocated: id=%d", 3)

	if !HasCode(err, RetCInvalidState) {
		t.Error("expected HasCode to match")
	}
	if HasCode(err, RetCInvalidArgument) {
		t.Error("expected HasCode to reject other codes")
	}
	if HasCode(nil, RetCInvalidState) {
		t.Error("expected HasCode(nil) to be false")
	}
}
