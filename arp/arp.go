// Package arp derives arpeggio notes from another role's live chord output.
// Nothing is stored in the song for this role: the step sequence is a pure
// function of (style, active chord, beat index), so a unit that drops in
// mid-song lands on the same arp step as one that never left.
package arp

import (
	"github.com/tightknit/bandsync/chord"
	"github.com/tightknit/bandsync/constants"
	"github.com/tightknit/bandsync/model"
)

// Render emits the arp steps for one beat: constants.ArpSubdiv steps evenly
// spread over the beat's subdivisions. beat is the section-relative beat
// index. No active chord means no events; the follower never fabricates
// pitches.
func Render(style model.ArpStyle, symbol uint8, beat int) []model.NoteEvent {
	notes := orderedNotes(style, symbol)
	if len(notes) == 0 {
		return nil
	}

	// subdivision stride within the pattern grid
	stride := uint8(constants.PatternSubdiv / constants.ArpSubdiv)

	var res []model.NoteEvent
	for i := 0; i < constants.ArpSubdiv; i++ {
		step := beat*constants.ArpSubdiv + i
		res = append(res, model.NoteEvent{
			Subdiv:   uint8(i) * stride,
			Note:     notes[step%len(notes)],
			Velocity: constants.DefaultVelocity,
		})
	}
	return res
}

// orderedNotes expands a chord symbol into the style's step cycle.
func orderedNotes(style model.ArpStyle, symbol uint8) []uint8 {
	if style == model.ArpAsPlayed {
		return chord.Voicing(symbol)
	}

	notes := chord.Pitches(symbol)
	if len(notes) == 0 {
		return nil
	}

	switch style {
	case model.ArpUp:
		return notes
	case model.ArpDown:
		res := make([]uint8, len(notes))
		for i, n := range notes {
			res[len(notes)-1-i] = n
		}
		return res
	case model.ArpUpDown:
		// endpoints not repeated: C E G E / C E G E ...
		res := append([]uint8(nil), notes...)
		for i := len(notes) - 2; i >= 1; i-- {
			res = append(res, notes[i])
		}
		return res
	}
	return notes
}
