package buffer

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/yuanzhixiang/substrate/lib/bitutil"
)

// Buffer is a fixed-length view over externally-owned memory. The zero
// value is unusable; construct one with Wrap.
//
// Thread-safety: plain accessors assume exclusive access to the addressed
// region. Volatile and ordered accessors are safe for concurrent use across
// threads and across processes sharing the same mapping, provided writers
// of a given field follow the single-writer discipline of their component.
type Buffer struct {
	data []byte
}

// Wrap creates a Buffer borrowing the supplied slice. The slice is never
// copied, grown, or freed by the Buffer.
func Wrap(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Slice returns a new Buffer viewing the region [offset, offset+length)
// of the same backing memory.
func (b *Buffer) Slice(offset, length int) *Buffer {
	b.boundsCheck(offset, length)
	return &Buffer{data: b.data[offset : offset+length : offset+length]}
}

// Capacity returns the length of the viewed region in bytes.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// VerifyAlignment panics unless the backing memory is 8-byte aligned,
// which the atomic accessors require.
func (b *Buffer) VerifyAlignment() {
	if len(b.data) == 0 {
		panic("buffer has no backing memory")
	}
	addr := uintptr(unsafe.Pointer(&b.data[0]))
	if !bitutil.IsAligned(addr, bitutil.SizeOfInt64) {
		panic(fmt.Sprintf("backing memory is not 8-byte aligned: addr=%#x", addr))
	}
}

// boundsCheck panics if [offset, offset+length) does not lie within the
// buffer. Contract violations are fatal, not recoverable errors.
func (b *Buffer) boundsCheck(offset, length int) {
	if offset < 0 || length < 0 || offset+length > len(b.data) {
		panic(fmt.Sprintf(
			"buffer access out of bounds: offset=%d length=%d capacity=%d",
			offset, length, len(b.data)))
	}
}

// --------------------------------------------------------------------------
// Plain Access (little-endian, no ordering guarantees)
// --------------------------------------------------------------------------

// GetUInt8 reads a byte at offset.
func (b *Buffer) GetUInt8(offset int) uint8 {
	b.boundsCheck(offset, 1)
	return b.data[offset]
}

// PutUInt8 writes a byte at offset.
func (b *Buffer) PutUInt8(offset int, value uint8) {
	b.boundsCheck(offset, 1)
	b.data[offset] = value
}

// GetUInt16 reads a little-endian uint16 at offset.
func (b *Buffer) GetUInt16(offset int) uint16 {
	b.boundsCheck(offset, 2)
	return binary.LittleEndian.Uint16(b.data[offset:])
}

// PutUInt16 writes a little-endian uint16 at offset.
func (b *Buffer) PutUInt16(offset int, value uint16) {
	b.boundsCheck(offset, 2)
	binary.LittleEndian.PutUint16(b.data[offset:], value)
}

// GetInt32 reads a little-endian int32 at offset.
func (b *Buffer) GetInt32(offset int) int32 {
	b.boundsCheck(offset, bitutil.SizeOfInt32)
	return int32(binary.LittleEndian.Uint32(b.data[offset:]))
}

// PutInt32 writes a little-endian int32 at offset.
func (b *Buffer) PutInt32(offset int, value int32) {
	b.boundsCheck(offset, bitutil.SizeOfInt32)
	binary.LittleEndian.PutUint32(b.data[offset:], uint32(value))
}

// GetInt64 reads a little-endian int64 at offset.
func (b *Buffer) GetInt64(offset int) int64 {
	b.boundsCheck(offset, bitutil.SizeOfInt64)
	return int64(binary.LittleEndian.Uint64(b.data[offset:]))
}

// PutInt64 writes a little-endian int64 at offset.
func (b *Buffer) PutInt64(offset int, value int64) {
	b.boundsCheck(offset, bitutil.SizeOfInt64)
	binary.LittleEndian.PutUint64(b.data[offset:], uint64(value))
}

// GetBytes copies length bytes starting at offset into a new slice.
func (b *Buffer) GetBytes(offset, length int) []byte {
	b.boundsCheck(offset, length)
	out := make([]byte, length)
	copy(out, b.data[offset:offset+length])
	return out
}

// PutBytes copies src into the buffer starting at offset.
func (b *Buffer) PutBytes(offset int, src []byte) {
	b.boundsCheck(offset, len(src))
	copy(b.data[offset:], src)
}

// SetMemory fills the region [offset, offset+length) with value.
func (b *Buffer) SetMemory(offset, length int, value byte) {
	b.boundsCheck(offset, length)
	region := b.data[offset : offset+length]
	for i := range region {
		region[i] = value
	}
}

// --------------------------------------------------------------------------
// Volatile / Ordered Access
// --------------------------------------------------------------------------
//
// Go's sync/atomic is sequentially consistent, which satisfies (and never
// weakens) the acquire semantics required of volatile loads and the release
// semantics required of ordered stores. The pointer casts require natural
// alignment of offset, checked below.

// atomicCheck panics unless [offset, offset+size) is in bounds and offset
// is naturally aligned for an atomic access of the given size.
func (b *Buffer) atomicCheck(offset, size int) {
	b.boundsCheck(offset, size)
	if offset&(size-1) != 0 {
		panic(fmt.Sprintf("unaligned atomic access: offset=%d size=%d", offset, size))
	}
}

// GetInt32Volatile reads an int32 at offset with acquire semantics.
func (b *Buffer) GetInt32Volatile(offset int) int32 {
	b.atomicCheck(offset, bitutil.SizeOfInt32)
	return atomic.LoadInt32((*int32)(unsafe.Pointer(&b.data[offset])))
}

// PutInt32Volatile writes an int32 at offset with full store visibility.
func (b *Buffer) PutInt32Volatile(offset int, value int32) {
	b.atomicCheck(offset, bitutil.SizeOfInt32)
	atomic.StoreInt32((*int32)(unsafe.Pointer(&b.data[offset])), value)
}

// PutInt32Ordered publishes an int32 at offset with release semantics.
// Writes made before the call are visible to any reader that subsequently
// observes the stored value with GetInt32Volatile.
func (b *Buffer) PutInt32Ordered(offset int, value int32) {
	b.atomicCheck(offset, bitutil.SizeOfInt32)
	atomic.StoreInt32((*int32)(unsafe.Pointer(&b.data[offset])), value)
}

// GetInt64Volatile reads an int64 at offset with acquire semantics.
func (b *Buffer) GetInt64Volatile(offset int) int64 {
	b.atomicCheck(offset, bitutil.SizeOfInt64)
	return atomic.LoadInt64((*int64)(unsafe.Pointer(&b.data[offset])))
}

// PutInt64Volatile writes an int64 at offset with full store visibility.
func (b *Buffer) PutInt64Volatile(offset int, value int64) {
	b.atomicCheck(offset, bitutil.SizeOfInt64)
	atomic.StoreInt64((*int64)(unsafe.Pointer(&b.data[offset])), value)
}

// PutInt64Ordered publishes an int64 at offset with release semantics.
func (b *Buffer) PutInt64Ordered(offset int, value int64) {
	b.atomicCheck(offset, bitutil.SizeOfInt64)
	atomic.StoreInt64((*int64)(unsafe.Pointer(&b.data[offset])), value)
}

// GetAndAddInt64 atomically adds delta to the int64 at offset and returns
// the previous value.
func (b *Buffer) GetAndAddInt64(offset int, delta int64) int64 {
	b.atomicCheck(offset, bitutil.SizeOfInt64)
	return atomic.AddInt64((*int64)(unsafe.Pointer(&b.data[offset])), delta) - delta
}

// CompareAndSetInt64 atomically replaces the int64 at offset with updated
// if it currently holds expected, reporting whether the swap happened.
func (b *Buffer) CompareAndSetInt64(offset int, expected, updated int64) bool {
	b.atomicCheck(offset, bitutil.SizeOfInt64)
	return atomic.CompareAndSwapInt64((*int64)(unsafe.Pointer(&b.data[offset])), expected, updated)
}
