package model

// Command is the transport command carried by a sync message. Commands only
// ever originate on the authoritative unit.
type Command uint8

const (
	CmdNone Command = iota
	CmdStart
	CmdStop
	CmdReset
)

func (c Command) String() string {
	switch c {
	case CmdNone:
		return "none"
	case CmdStart:
		return "start"
	case CmdStop:
		return "stop"
	case CmdReset:
		return "reset"
	}
	return "command(?)"
}

// SyncMessage is the broadcast record carrying the authoritative transport
// position. Ephemeral: it is never persisted, and delivery is best-effort.
// Chord is the active chord symbol for remote arp units, 0 when none.
type SyncMessage struct {
	Seq     uint32
	Section uint16
	Bar     uint16
	Beat    uint8
	Command Command
	Chord   uint8
}

// TransportState is the beat/bar/section position of one unit. The
// authoritative unit's copy is the source of truth; followers hold a locally
// predicted copy that is overwritten wholesale by each accepted sync message.
type TransportState struct {
	Section uint16
	Bar     uint16
	Beat    uint8
	Running bool
	Seq     uint32
}

// Position returns the section-relative beat index of the state.
func (t TransportState) Position(beatsPerBar uint8) int {
	return int(t.Bar)*int(beatsPerBar) + int(t.Beat)
}
