package protocol

import (
	"github.com/yuanzhixiang/substrate/lib/buffer"
)

// DataHeaderLength is the fixed header length preceding the payload of a
// data frame.
const DataHeaderLength = 32

// Data frame flags.
const (
	// DataFlagBegin marks the first fragment of a message.
	DataFlagBegin uint8 = 0x80

	// DataFlagEnd marks the last fragment of a message.
	DataFlagEnd uint8 = 0x40

	// DataFlagUnfragmented marks a message carried in a single frame.
	DataFlagUnfragmented = DataFlagBegin | DataFlagEnd
)

// Data frame field offsets relative to the start of the frame.
const (
	dataTermOffsetFieldOffset    = 8
	dataSessionIDFieldOffset     = 12
	dataStreamIDFieldOffset      = 16
	dataTermIDFieldOffset        = 20
	dataReservedValueFieldOffset = 24
)

// DataHeaderFlyweight is the codec for data frames carrying message
// payloads. The payload follows the fixed header.
type DataHeaderFlyweight struct {
	HeaderFlyweight
}

// Wrap positions the flyweight over a frame starting at offset.
func (f *DataHeaderFlyweight) Wrap(buf *buffer.Buffer, offset int) *DataHeaderFlyweight {
	f.HeaderFlyweight.Wrap(buf, offset)
	return f
}

// TermOffset returns the offset of the frame within its term.
func (f *DataHeaderFlyweight) TermOffset() int32 {
	return f.buffer.GetInt32(f.offset + dataTermOffsetFieldOffset)
}

// SetTermOffset sets the offset of the frame within its term.
func (f *DataHeaderFlyweight) SetTermOffset(termOffset int32) *DataHeaderFlyweight {
	f.buffer.PutInt32(f.offset+dataTermOffsetFieldOffset, termOffset)
	return f
}

// SessionID returns the session id of the frame.
func (f *DataHeaderFlyweight) SessionID() int32 {
	return f.buffer.GetInt32(f.offset + dataSessionIDFieldOffset)
}

// SetSessionID sets the session id of the frame.
func (f *DataHeaderFlyweight) SetSessionID(sessionID int32) *DataHeaderFlyweight {
	f.buffer.PutInt32(f.offset+dataSessionIDFieldOffset, sessionID)
	return f
}

// StreamID returns the stream id of the frame.
func (f *DataHeaderFlyweight) StreamID() int32 {
	return f.buffer.GetInt32(f.offset + dataStreamIDFieldOffset)
}

// SetStreamID sets the stream id of the frame.
func (f *DataHeaderFlyweight) SetStreamID(streamID int32) *DataHeaderFlyweight {
	f.buffer.PutInt32(f.offset+dataStreamIDFieldOffset, streamID)
	return f
}

// TermID returns the term id of the frame.
func (f *DataHeaderFlyweight) TermID() int32 {
	return f.buffer.GetInt32(f.offset + dataTermIDFieldOffset)
}

// SetTermID sets the term id of the frame.
func (f *DataHeaderFlyweight) SetTermID(termID int32) *DataHeaderFlyweight {
	f.buffer.PutInt32(f.offset+dataTermIDFieldOffset, termID)
	return f
}

// ReservedValue returns the application-reserved field.
func (f *DataHeaderFlyweight) ReservedValue() int64 {
	return f.buffer.GetInt64(f.offset + dataReservedValueFieldOffset)
}

// SetReservedValue sets the application-reserved field.
func (f *DataHeaderFlyweight) SetReservedValue(value int64) *DataHeaderFlyweight {
	f.buffer.PutInt64(f.offset+dataReservedValueFieldOffset, value)
	return f
}

// PayloadOffset returns the buffer offset where the payload begins.
func (f *DataHeaderFlyweight) PayloadOffset() int {
	return f.offset + DataHeaderLength
}

// PayloadLength returns the payload length implied by the frame length.
func (f *DataHeaderFlyweight) PayloadLength() int32 {
	return f.FrameLength() - DataHeaderLength
}
