package model

// Song is the immutable shared asset every unit plays from. It is fully
// decoded at load time and never mutated afterwards, so engines may read it
// without synchronization.
type Song struct {
	Tempo       uint16
	BeatsPerBar uint8
	Sections    []Section
}

// Section is one structural segment of the song. Its index in Song.Sections
// is its position; playback loops back to section 0 after the last one.
type Section struct {
	Bars     uint16
	Payloads map[RoleID][]byte
}

// Payload returns the raw payload bytes for a role, or nil if the section
// carries nothing for that role.
func (s Section) Payload(id RoleID) []byte {
	return s.Payloads[id]
}

// TotalBeats is the number of beats in the section for the given meter.
func (s Section) TotalBeats(beatsPerBar uint8) int {
	return int(s.Bars) * int(beatsPerBar)
}
