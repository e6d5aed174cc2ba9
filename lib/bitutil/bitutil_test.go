package bitutil

import (
	"bytes"
	"testing"
)

// TestFindNextPositivePowerOfTwo verifies rounding behaviour around the
// interesting boundaries
func TestFindNextPositivePowerOfTwo(t *testing.T) {
	cases := []struct {
		in, want int64
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{1000, 1024},
		{1024, 1024},
		{1025, 2048},
		{1 << 30, 1 << 30},
	}

	for _, c := range cases {
		if got := FindNextPositivePowerOfTwo(c.in); got != c.want {
			t.Errorf("FindNextPositivePowerOfTwo(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []int64{1, 2, 4, 1024, 1 << 40} {
		if !IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d) = false, want true", v)
		}
	}
	for _, v := range []int64{0, -2, 3, 12, 1000} {
		if IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d) = true, want false", v)
		}
	}
}

func TestAlign(t *testing.T) {
	cases := []struct {
		value, alignment, want int
	}{
		{0, 32, 0},
		{1, 32, 32},
		{28, 32, 32},
		{32, 32, 32},
		{33, 32, 64},
		{100, 8, 104},
	}

	for _, c := range cases {
		if got := Align(c.value, c.alignment); got != c.want {
			t.Errorf("Align(%d, %d) = %d, want %d", c.value, c.alignment, got, c.want)
		}
	}
}

func TestIsAlignedPanicsOnBadAlignment(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non power of 2 alignment")
		}
	}()
	IsAligned(64, 3)
}

func TestIsEven(t *testing.T) {
	if !IsEven(0) || !IsEven(42) || IsEven(7) || IsEven(-3) {
		t.Error("IsEven parity wrong")
	}
}

func TestIndexCycling(t *testing.T) {
	if got := Next(2, 4); got != 3 {
		t.Errorf("Next(2, 4) = %d, want 3", got)
	}
	if got := Next(3, 4); got != 0 {
		t.Errorf("Next(3, 4) = %d, want 0", got)
	}
	if got := Previous(0, 4); got != 3 {
		t.Errorf("Previous(0, 4) = %d, want 3", got)
	}
	if got := Previous(3, 4); got != 2 {
		t.Errorf("Previous(3, 4) = %d, want 2", got)
	}
}

func TestHexRoundTrip(t *testing.T) {
	in := []byte{0x00, 0x01, 0xde, 0xad, 0xbe, 0xef, 0xff}

	hex := ToHex(in)
	if hex != "0001deadbeefff" {
		t.Errorf("ToHex = %q, want %q", hex, "0001deadbeefff")
	}

	out, err := FromHex(hex)
	if err != nil {
		t.Fatalf("FromHex failed: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Errorf("round trip mismatch: got %v, want %v", out, in)
	}
}

func TestFromHexRejectsBadInput(t *testing.T) {
	if _, err := FromHex("abc"); err == nil {
		t.Error("expected error for odd length input")
	}
	if _, err := FromHex("zz"); err == nil {
		t.Error("expected error for invalid digit")
	}
}
