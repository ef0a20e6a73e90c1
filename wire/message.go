// Package wire frames sync messages for the wireless broadcast link. The
// medium gives no guarantees: frames may be lost, duplicated or reordered,
// and nothing here acknowledges or retransmits. Consumers filter on the beat
// sequence number instead.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tightknit/bandsync/constants"
	"github.com/tightknit/bandsync/model"
)

// frameType tags a sync frame, mirroring the single-letter packet ids of the
// radio protocol.
const frameType = 'y'

// originOffset is where a transport stamps its sender tag; the tag is not
// part of the message itself.
const originOffset = 12

func stampOrigin(buf []byte, origin uint32) {
	binary.BigEndian.PutUint32(buf[originOffset:originOffset+4], origin)
}

func frameOrigin(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf[originOffset : originOffset+4])
}

var (
	ErrShortFrame   = errors.New("wire: short frame")
	ErrUnknownFrame = errors.New("wire: unknown frame type")
)

// Marshal encodes a sync message as a fixed-size frame:
// type (1) | seq (4) | section (2) | bar (2) | beat (1) | command (1) | chord (1) | origin (4).
func Marshal(msg model.SyncMessage) []byte {
	buf := make([]byte, constants.SyncFrameSize)
	buf[0] = frameType
	binary.BigEndian.PutUint32(buf[1:5], msg.Seq)
	binary.BigEndian.PutUint16(buf[5:7], msg.Section)
	binary.BigEndian.PutUint16(buf[7:9], msg.Bar)
	buf[9] = msg.Beat
	buf[10] = uint8(msg.Command)
	buf[11] = msg.Chord
	return buf
}

// Unmarshal decodes a frame produced by Marshal.
func Unmarshal(buf []byte) (model.SyncMessage, error) {
	var msg model.SyncMessage
	if len(buf) < constants.SyncFrameSize {
		return msg, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(buf))
	}
	if buf[0] != frameType {
		return msg, fmt.Errorf("%w: %q", ErrUnknownFrame, buf[0])
	}
	msg.Seq = binary.BigEndian.Uint32(buf[1:5])
	msg.Section = binary.BigEndian.Uint16(buf[5:7])
	msg.Bar = binary.BigEndian.Uint16(buf[7:9])
	msg.Beat = buf[9]
	msg.Command = model.Command(buf[10])
	msg.Chord = buf[11]
	return msg, nil
}

// Channel is the best-effort broadcast link between units. Broadcast is
// fire-and-forget; Poll never blocks and reports false when nothing is
// pending.
type Channel interface {
	Broadcast(msg model.SyncMessage) error
	Poll() (model.SyncMessage, bool, error)
}
