package protocol

import (
	"github.com/yuanzhixiang/substrate/lib/buffer"
)

// NakHeaderLength is the full length of a NAK frame, padded to the frame
// boundary.
const NakHeaderLength = 32

// NAK field offsets relative to the start of the frame.
const (
	nakSessionIDFieldOffset  = 8
	nakStreamIDFieldOffset   = 12
	nakTermIDFieldOffset     = 16
	nakTermOffsetFieldOffset = 20
	nakLengthFieldOffset     = 24
)

// NakFlyweight is the codec for NAK frames, which request retransmission
// of a range of a term identified by session, stream, term id, term
// offset, and length.
type NakFlyweight struct {
	HeaderFlyweight
}

// Wrap positions the flyweight over a frame starting at offset.
func (f *NakFlyweight) Wrap(buf *buffer.Buffer, offset int) *NakFlyweight {
	f.HeaderFlyweight.Wrap(buf, offset)
	return f
}

// SessionID returns the session id of the stream being NAKed.
func (f *NakFlyweight) SessionID() int32 {
	return f.buffer.GetInt32(f.offset + nakSessionIDFieldOffset)
}

// SetSessionID sets the session id of the stream being NAKed.
func (f *NakFlyweight) SetSessionID(sessionID int32) *NakFlyweight {
	f.buffer.PutInt32(f.offset+nakSessionIDFieldOffset, sessionID)
	return f
}

// StreamID returns the stream id within the session.
func (f *NakFlyweight) StreamID() int32 {
	return f.buffer.GetInt32(f.offset + nakStreamIDFieldOffset)
}

// SetStreamID sets the stream id within the session.
func (f *NakFlyweight) SetStreamID(streamID int32) *NakFlyweight {
	f.buffer.PutInt32(f.offset+nakStreamIDFieldOffset, streamID)
	return f
}

// TermID returns the term containing the missing data.
func (f *NakFlyweight) TermID() int32 {
	return f.buffer.GetInt32(f.offset + nakTermIDFieldOffset)
}

// SetTermID sets the term containing the missing data.
func (f *NakFlyweight) SetTermID(termID int32) *NakFlyweight {
	f.buffer.PutInt32(f.offset+nakTermIDFieldOffset, termID)
	return f
}

// TermOffset returns the offset within the term of the missing data.
func (f *NakFlyweight) TermOffset() int32 {
	return f.buffer.GetInt32(f.offset + nakTermOffsetFieldOffset)
}

// SetTermOffset sets the offset within the term of the missing data.
func (f *NakFlyweight) SetTermOffset(termOffset int32) *NakFlyweight {
	f.buffer.PutInt32(f.offset+nakTermOffsetFieldOffset, termOffset)
	return f
}

// Length returns the number of missing bytes.
func (f *NakFlyweight) Length() int32 {
	return f.buffer.GetInt32(f.offset + nakLengthFieldOffset)
}

// SetLength sets the number of missing bytes.
func (f *NakFlyweight) SetLength(length int32) *NakFlyweight {
	f.buffer.PutInt32(f.offset+nakLengthFieldOffset, length)
	return f
}
