package model

import "fmt"

// RoleID identifies a unit's musical responsibility. The set is closed and
// fixed at build time; role payload bytes are interpreted per role.
type RoleID uint8

const (
	RoleBoss RoleID = iota
	RolePitch
	RolePattern
	RoleChords
	RoleArp
)

func (r RoleID) String() string {
	switch r {
	case RoleBoss:
		return "boss"
	case RolePitch:
		return "pitch"
	case RolePattern:
		return "pattern"
	case RoleChords:
		return "chords"
	case RoleArp:
		return "arp"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// ParseRole maps a configured role name to its id.
func ParseRole(name string) (RoleID, error) {
	switch name {
	case "boss":
		return RoleBoss, nil
	case "pitch":
		return RolePitch, nil
	case "pattern":
		return RolePattern, nil
	case "chords":
		return RoleChords, nil
	case "arp":
		return RoleArp, nil
	}
	return 0, fmt.Errorf("unknown role %q", name)
}

// ArpStyle selects how the arp follower orders a chord's pitches.
type ArpStyle uint8

const (
	ArpUp ArpStyle = iota
	ArpDown
	ArpUpDown
	ArpAsPlayed
)

func (s ArpStyle) String() string {
	switch s {
	case ArpUp:
		return "up"
	case ArpDown:
		return "down"
	case ArpUpDown:
		return "up-down"
	case ArpAsPlayed:
		return "as-played"
	}
	return fmt.Sprintf("style(%d)", uint8(s))
}

// ParseArpStyle maps a configured style name to its id.
func ParseArpStyle(name string) (ArpStyle, error) {
	switch name {
	case "up":
		return ArpUp, nil
	case "down":
		return ArpDown, nil
	case "up-down", "updown":
		return ArpUpDown, nil
	case "as-played", "asplayed":
		return ArpAsPlayed, nil
	}
	return 0, fmt.Errorf("unknown arp style %q", name)
}
