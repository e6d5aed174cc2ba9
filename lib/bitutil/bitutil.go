package bitutil

import (
	"fmt"
	"math/bits"
)

// --------------------------------------------------------------------------
// Size Constants
// --------------------------------------------------------------------------

const (
	// SizeOfInt32 is the size of an int32 in bytes
	SizeOfInt32 = 4

	// SizeOfInt64 is the size of an int64 in bytes
	SizeOfInt64 = 8

	// CacheLineLength is the length of the data blocks used by the CPU
	// cache sub-system in bytes
	CacheLineLength = 64
)

const hexDigits = "0123456789abcdef"

// --------------------------------------------------------------------------
// Power-of-Two Sizing
// --------------------------------------------------------------------------

// FindNextPositivePowerOfTwo returns the next power of 2 greater than or
// equal to value, or the value itself if it already is a power of 2.
// Values <= 0 yield 1. Values above 2^62 are not supported.
func FindNextPositivePowerOfTwo(value int64) int64 {
	if value <= 1 {
		return 1
	}
	return 1 << (64 - bits.LeadingZeros64(uint64(value-1)))
}

// IsPowerOfTwo returns whether value is a positive power of 2.
func IsPowerOfTwo(value int64) bool {
	return value > 0 && (value&(-value)) == value
}

// Align aligns value up to the next multiple of alignment. A value already
// on the boundary is returned unchanged. The computation is branch-free;
// alignment must be a power of 2 and value must not be negative.
func Align(value, alignment int) int {
	return (value + (alignment - 1)) & -alignment
}

// IsAligned returns whether an address lies on the given boundary.
// The alignment must be a power of 2.
func IsAligned(address uintptr, alignment int) bool {
	if !IsPowerOfTwo(int64(alignment)) {
		panic(fmt.Sprintf("alignment must be a power of 2: alignment=%d", alignment))
	}
	return address&uintptr(alignment-1) == 0
}

// --------------------------------------------------------------------------
// Index Cycling
// --------------------------------------------------------------------------

// IsEven returns whether value is even.
func IsEven(value int64) bool {
	return value&1 == 0
}

// Next cycles an array index one step forward, wrapping to zero at max.
func Next(current, max int) int {
	next := current + 1
	if next == max {
		return 0
	}
	return next
}

// Previous cycles an array index one step backwards, wrapping to max-1
// at zero.
func Previous(current, max int) int {
	if current == 0 {
		return max - 1
	}
	return current - 1
}

// --------------------------------------------------------------------------
// Hex Codec
// --------------------------------------------------------------------------

// ToHex returns the hex representation of buf as a string.
func ToHex(buf []byte) string {
	return string(ToHexBytes(buf))
}

// ToHexBytes returns a new byte slice holding the hex representation of buf.
func ToHexBytes(buf []byte) []byte {
	out := make([]byte, len(buf)*2)
	for i, b := range buf {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0f]
	}
	return out
}

// FromHex decodes a hex string into a new byte slice. The input length must
// be even and every character a valid hex digit.
func FromHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("hex input has odd length: %d", len(s))
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		hi, err := fromHexDigit(s[i])
		if err != nil {
			return nil, err
		}
		lo, err := fromHexDigit(s[i+1])
		if err != nil {
			return nil, err
		}
		out[i/2] = hi<<4 | lo
	}
	return out, nil
}

// fromHexDigit converts a single hex character to its value
func fromHexDigit(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit: %q", c)
	}
}
