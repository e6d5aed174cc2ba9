package protocol

import (
	"github.com/yuanzhixiang/substrate/lib/buffer"
)

// Frame types carried in the generic header's type field.
const (
	HeaderTypePad   = 0x00
	HeaderTypeData  = 0x01
	HeaderTypeNak   = 0x02
	HeaderTypeSM    = 0x03
	HeaderTypeErr   = 0x04
	HeaderTypeSetup = 0x05
	HeaderTypeRttm  = 0x06
	HeaderTypeExt   = 0xffff
)

const (
	// CurrentVersion is the protocol version written into new frames.
	CurrentVersion = 0

	// HeaderLength is the length of the generic header common to all
	// frame types.
	HeaderLength = 8

	// FrameAlignment is the boundary every frame starts and ends on, so
	// frame lengths are always padded up to a multiple of it.
	FrameAlignment = 32
)

// Generic header field offsets relative to the start of a frame.
const (
	frameLengthFieldOffset = 0
	versionFieldOffset     = 4
	flagsFieldOffset       = 5
	typeFieldOffset        = 6
)

// HeaderFlyweight is the codec for the generic header that starts every
// frame: frame length, protocol version, flags, and frame type.
type HeaderFlyweight struct {
	buffer *buffer.Buffer
	offset int
}

// Wrap positions the flyweight over a frame starting at offset.
func (h *HeaderFlyweight) Wrap(buf *buffer.Buffer, offset int) *HeaderFlyweight {
	h.buffer = buf
	h.offset = offset
	return h
}

// Buffer returns the wrapped buffer.
func (h *HeaderFlyweight) Buffer() *buffer.Buffer {
	return h.buffer
}

// Offset returns the frame start offset within the wrapped buffer.
func (h *HeaderFlyweight) Offset() int {
	return h.offset
}

// FrameLength returns the total frame length in bytes.
func (h *HeaderFlyweight) FrameLength() int32 {
	return h.buffer.GetInt32(h.offset + frameLengthFieldOffset)
}

// SetFrameLength sets the total frame length in bytes.
func (h *HeaderFlyweight) SetFrameLength(length int32) *HeaderFlyweight {
	h.buffer.PutInt32(h.offset+frameLengthFieldOffset, length)
	return h
}

// Version returns the protocol version field.
func (h *HeaderFlyweight) Version() uint8 {
	return h.buffer.GetUInt8(h.offset + versionFieldOffset)
}

// SetVersion sets the protocol version field.
func (h *HeaderFlyweight) SetVersion(version uint8) *HeaderFlyweight {
	h.buffer.PutUInt8(h.offset+versionFieldOffset, version)
	return h
}

// Flags returns the flags field.
func (h *HeaderFlyweight) Flags() uint8 {
	return h.buffer.GetUInt8(h.offset + flagsFieldOffset)
}

// SetFlags sets the flags field.
func (h *HeaderFlyweight) SetFlags(flags uint8) *HeaderFlyweight {
	h.buffer.PutUInt8(h.offset+flagsFieldOffset, flags)
	return h
}

// HeaderType returns the frame type field.
func (h *HeaderFlyweight) HeaderType() uint16 {
	return h.buffer.GetUInt16(h.offset + typeFieldOffset)
}

// SetHeaderType sets the frame type field.
func (h *HeaderFlyweight) SetHeaderType(headerType uint16) *HeaderFlyweight {
	h.buffer.PutUInt16(h.offset+typeFieldOffset, headerType)
	return h
}

// AlignFrameLength rounds length up to the next frame boundary.
func AlignFrameLength(length int32) int32 {
	return (length + (FrameAlignment - 1)) &^ (FrameAlignment - 1)
}
