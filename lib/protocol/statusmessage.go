package protocol

import (
	"github.com/yuanzhixiang/substrate/lib/buffer"
)

// StatusMessageHeaderLength is the fixed length of a status message frame
// before any optional feedback payload.
const StatusMessageHeaderLength = 36

// StatusMessageSendSetupFlag requests the sender to re-send a setup frame.
const StatusMessageSendSetupFlag uint8 = 0x80

// Status message field offsets relative to the start of the frame.
const (
	smSessionIDFieldOffset      = 8
	smStreamIDFieldOffset       = 12
	smTermIDFieldOffset         = 16
	smTermOffsetFieldOffset     = 20
	smReceiverWindowFieldOffset = 24
	smReceiverIDFieldOffset     = 28
)

// StatusMessageFlyweight is the codec for receiver status frames used for
// flow control: the receiver reports its consumption position and how much
// further the sender may advance.
type StatusMessageFlyweight struct {
	HeaderFlyweight
}

// Wrap positions the flyweight over a frame starting at offset.
func (f *StatusMessageFlyweight) Wrap(buf *buffer.Buffer, offset int) *StatusMessageFlyweight {
	f.HeaderFlyweight.Wrap(buf, offset)
	return f
}

// SessionID returns the session id being reported on.
func (f *StatusMessageFlyweight) SessionID() int32 {
	return f.buffer.GetInt32(f.offset + smSessionIDFieldOffset)
}

// SetSessionID sets the session id being reported on.
func (f *StatusMessageFlyweight) SetSessionID(sessionID int32) *StatusMessageFlyweight {
	f.buffer.PutInt32(f.offset+smSessionIDFieldOffset, sessionID)
	return f
}

// StreamID returns the stream id being reported on.
func (f *StatusMessageFlyweight) StreamID() int32 {
	return f.buffer.GetInt32(f.offset + smStreamIDFieldOffset)
}

// SetStreamID sets the stream id being reported on.
func (f *StatusMessageFlyweight) SetStreamID(streamID int32) *StatusMessageFlyweight {
	f.buffer.PutInt32(f.offset+smStreamIDFieldOffset, streamID)
	return f
}

// ConsumptionTermID returns the term the receiver has consumed up to.
func (f *StatusMessageFlyweight) ConsumptionTermID() int32 {
	return f.buffer.GetInt32(f.offset + smTermIDFieldOffset)
}

// SetConsumptionTermID sets the term the receiver has consumed up to.
func (f *StatusMessageFlyweight) SetConsumptionTermID(termID int32) *StatusMessageFlyweight {
	f.buffer.PutInt32(f.offset+smTermIDFieldOffset, termID)
	return f
}

// ConsumptionTermOffset returns the offset within the consumption term.
func (f *StatusMessageFlyweight) ConsumptionTermOffset() int32 {
	return f.buffer.GetInt32(f.offset + smTermOffsetFieldOffset)
}

// SetConsumptionTermOffset sets the offset within the consumption term.
func (f *StatusMessageFlyweight) SetConsumptionTermOffset(termOffset int32) *StatusMessageFlyweight {
	f.buffer.PutInt32(f.offset+smTermOffsetFieldOffset, termOffset)
	return f
}

// ReceiverWindow returns how many bytes past the consumption position the
// sender may transmit.
func (f *StatusMessageFlyweight) ReceiverWindow() int32 {
	return f.buffer.GetInt32(f.offset + smReceiverWindowFieldOffset)
}

// SetReceiverWindow sets the receiver window in bytes.
func (f *StatusMessageFlyweight) SetReceiverWindow(window int32) *StatusMessageFlyweight {
	f.buffer.PutInt32(f.offset+smReceiverWindowFieldOffset, window)
	return f
}

// ReceiverID returns the id identifying the reporting receiver.
func (f *StatusMessageFlyweight) ReceiverID() int64 {
	return f.buffer.GetInt64(f.offset + smReceiverIDFieldOffset)
}

// SetReceiverID sets the id identifying the reporting receiver.
func (f *StatusMessageFlyweight) SetReceiverID(receiverID int64) *StatusMessageFlyweight {
	f.buffer.PutInt64(f.offset+smReceiverIDFieldOffset, receiverID)
	return f
}
