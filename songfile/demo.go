package songfile

import (
	"github.com/tightknit/bandsync/chord"
	"github.com/tightknit/bandsync/model"
	"github.com/tightknit/bandsync/role"
)

// Demo builds the bundled demo song: a 4-bar groove section into a 2-bar
// chorus, enough to exercise every role.
func Demo() model.Song {
	const beatsPerBar = 4

	// kick on beats 0 and 2, hats on every subdivision pair
	kick := model.DrumVoice{Note: 36, Steps: make([]byte, 4*beatsPerBar)}
	hat := model.DrumVoice{Note: 42, Steps: make([]byte, 4*beatsPerBar)}
	for beat := range kick.Steps {
		if beat%2 == 0 {
			kick.Steps[beat] = 0x01
		}
		hat.Steps[beat] = 0x05 // subdivisions 0 and 2
	}

	bass := []model.PitchEvent{
		{Beat: 0, Pitch: 36, Duration: 2, Velocity: 100},
		{Beat: 4, Pitch: 43, Duration: 2, Velocity: 96},
		{Beat: 8, Pitch: 45, Duration: 2, Velocity: 96},
		{Beat: 12, Pitch: 41, Duration: 2, Velocity: 100},
	}

	grooveChords := []model.ChordSpan{
		{Beat: 0, Symbol: chord.Symbol(0, chord.Maj), Duration: 4},
		{Beat: 4, Symbol: chord.Symbol(7, chord.Maj), Duration: 4},
		{Beat: 8, Symbol: chord.Symbol(9, chord.Min), Duration: 4},
		{Beat: 12, Symbol: chord.Symbol(5, chord.Maj), Duration: 4},
	}

	chorusChords := []model.ChordSpan{
		{Beat: 0, Symbol: chord.Symbol(0, chord.Maj), Duration: 8},
	}

	return model.Song{
		Tempo:       120,
		BeatsPerBar: beatsPerBar,
		Sections: []model.Section{
			{
				Bars: 4,
				Payloads: map[model.RoleID][]byte{
					model.RolePitch:   role.EncodePitch(bass),
					model.RolePattern: role.EncodePattern([]model.DrumVoice{kick, hat}),
					model.RoleChords:  role.EncodeChords(grooveChords),
				},
			},
			{
				Bars: 2,
				Payloads: map[model.RoleID][]byte{
					model.RoleChords: role.EncodeChords(chorusChords),
				},
			},
		},
	}
}
