package wire

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/tightknit/bandsync/constants"
	"github.com/tightknit/bandsync/model"
)

// UDPChannel carries sync frames as UDP broadcast datagrams, standing in for
// the radio broadcast of the hardware units. One socket both listens and
// sends so every unit shares the same port; the frame's origin tag filters
// out the OS looping our own broadcasts back at us.
type UDPChannel struct {
	conn   *net.UDPConn
	dest   *net.UDPAddr
	origin uint32
}

// newOrigin derives the channel's origin tag from a fresh uuid, so two units
// cannot end up with the same tag and silently deafen each other.
func newOrigin() uint32 {
	id := uuid.New()
	return binary.BigEndian.Uint32(id[:4])
}

// NewUDPChannel binds the shared sync port and resolves the broadcast
// destination, e.g. "192.168.1.255:7331".
func NewUDPChannel(port int, broadcastAddr string) (*UDPChannel, error) {
	dest, err := net.ResolveUDPAddr("udp4", broadcastAddr)
	if err != nil {
		return nil, fmt.Errorf("wire: resolve %v: %w", broadcastAddr, err)
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("wire: listen on %d: %w", port, err)
	}
	return &UDPChannel{
		conn:   conn,
		dest:   dest,
		origin: newOrigin(),
	}, nil
}

func (c *UDPChannel) Broadcast(msg model.SyncMessage) error {
	frame := Marshal(msg)
	stampOrigin(frame, c.origin)
	if _, err := c.conn.WriteToUDP(frame, c.dest); err != nil {
		return fmt.Errorf("wire: broadcast: %w", err)
	}
	return nil
}

func (c *UDPChannel) Poll() (model.SyncMessage, bool, error) {
	var none model.SyncMessage

	// zero deadline so a quiet socket returns immediately
	if err := c.conn.SetReadDeadline(time.Now()); err != nil {
		return none, false, err
	}

	for {
		buf := make([]byte, constants.SyncFrameSize)
		n, _, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return none, false, nil
			}
			return none, false, fmt.Errorf("wire: poll: %w", err)
		}
		if n == constants.SyncFrameSize && frameOrigin(buf) == c.origin {
			// our own broadcast looped back
			continue
		}
		msg, err := Unmarshal(buf[:n])
		if err != nil {
			// foreign datagram on the sync port, not fatal
			continue
		}
		return msg, true, nil
	}
}

func (c *UDPChannel) Close() error {
	return c.conn.Close()
}
