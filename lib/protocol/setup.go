package protocol

import (
	"github.com/yuanzhixiang/substrate/lib/buffer"
)

// SetupHeaderLength is the full length of a setup frame.
const SetupHeaderLength = 40

// Setup frame field offsets relative to the start of the frame.
const (
	setupTermOffsetFieldOffset    = 8
	setupSessionIDFieldOffset     = 12
	setupStreamIDFieldOffset      = 16
	setupInitialTermIDFieldOffset = 20
	setupActiveTermIDFieldOffset  = 24
	setupTermLengthFieldOffset    = 28
	setupMtuFieldOffset           = 32
	setupTTLFieldOffset           = 36
)

// SetupFlyweight is the codec for setup frames, sent by a source to
// describe a stream's term dimensions before data flows.
type SetupFlyweight struct {
	HeaderFlyweight
}

// Wrap positions the flyweight over a frame starting at offset.
func (f *SetupFlyweight) Wrap(buf *buffer.Buffer, offset int) *SetupFlyweight {
	f.HeaderFlyweight.Wrap(buf, offset)
	return f
}

// TermOffset returns the current offset within the active term.
func (f *SetupFlyweight) TermOffset() int32 {
	return f.buffer.GetInt32(f.offset + setupTermOffsetFieldOffset)
}

// SetTermOffset sets the current offset within the active term.
func (f *SetupFlyweight) SetTermOffset(termOffset int32) *SetupFlyweight {
	f.buffer.PutInt32(f.offset+setupTermOffsetFieldOffset, termOffset)
	return f
}

// SessionID returns the session id of the stream.
func (f *SetupFlyweight) SessionID() int32 {
	return f.buffer.GetInt32(f.offset + setupSessionIDFieldOffset)
}

// SetSessionID sets the session id of the stream.
func (f *SetupFlyweight) SetSessionID(sessionID int32) *SetupFlyweight {
	f.buffer.PutInt32(f.offset+setupSessionIDFieldOffset, sessionID)
	return f
}

// StreamID returns the stream id within the session.
func (f *SetupFlyweight) StreamID() int32 {
	return f.buffer.GetInt32(f.offset + setupStreamIDFieldOffset)
}

// SetStreamID sets the stream id within the session.
func (f *SetupFlyweight) SetStreamID(streamID int32) *SetupFlyweight {
	f.buffer.PutInt32(f.offset+setupStreamIDFieldOffset, streamID)
	return f
}

// InitialTermID returns the first term id of the stream.
func (f *SetupFlyweight) InitialTermID() int32 {
	return f.buffer.GetInt32(f.offset + setupInitialTermIDFieldOffset)
}

// SetInitialTermID sets the first term id of the stream.
func (f *SetupFlyweight) SetInitialTermID(termID int32) *SetupFlyweight {
	f.buffer.PutInt32(f.offset+setupInitialTermIDFieldOffset, termID)
	return f
}

// ActiveTermID returns the term currently being written.
func (f *SetupFlyweight) ActiveTermID() int32 {
	return f.buffer.GetInt32(f.offset + setupActiveTermIDFieldOffset)
}

// SetActiveTermID sets the term currently being written.
func (f *SetupFlyweight) SetActiveTermID(termID int32) *SetupFlyweight {
	f.buffer.PutInt32(f.offset+setupActiveTermIDFieldOffset, termID)
	return f
}

// TermLength returns the length in bytes of each term.
func (f *SetupFlyweight) TermLength() int32 {
	return f.buffer.GetInt32(f.offset + setupTermLengthFieldOffset)
}

// SetTermLength sets the length in bytes of each term.
func (f *SetupFlyweight) SetTermLength(termLength int32) *SetupFlyweight {
	f.buffer.PutInt32(f.offset+setupTermLengthFieldOffset, termLength)
	return f
}

// Mtu returns the maximum transmission unit for the stream.
func (f *SetupFlyweight) Mtu() int32 {
	return f.buffer.GetInt32(f.offset + setupMtuFieldOffset)
}

// SetMtu sets the maximum transmission unit for the stream.
func (f *SetupFlyweight) SetMtu(mtu int32) *SetupFlyweight {
	f.buffer.PutInt32(f.offset+setupMtuFieldOffset, mtu)
	return f
}

// TTL returns the time-to-live for multicast delivery.
func (f *SetupFlyweight) TTL() int32 {
	return f.buffer.GetInt32(f.offset + setupTTLFieldOffset)
}

// SetTTL sets the time-to-live for multicast delivery.
func (f *SetupFlyweight) SetTTL(ttl int32) *SetupFlyweight {
	f.buffer.PutInt32(f.offset+setupTTLFieldOffset, ttl)
	return f
}
