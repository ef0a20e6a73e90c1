package model

// NoteEvent is one rendered note for the current beat. Subdiv is the offset
// within the beat in subdivisions, Duration is in beats, and Velocity 0 means
// note off. Events are pushed to the external audio/UI layer and never fed
// back into the engine.
type NoteEvent struct {
	Subdiv   uint8
	Note     uint8
	Velocity uint8
	Duration uint8
}

// PitchEvent is one decoded entry of a pitch role payload: a note placed at a
// beat offset within its section.
type PitchEvent struct {
	Beat     uint16
	Pitch    uint8
	Duration uint8
	Velocity uint8
}

// ChordSpan is one decoded entry of a chords role payload: a chord symbol
// active from Beat for Duration beats. Spans are ordered and non-overlapping;
// gaps between spans are silence.
type ChordSpan struct {
	Beat     uint16
	Symbol   uint8
	Duration uint16
}

// DrumVoice is one decoded row of a pattern role payload: a drum note plus a
// hit mask per beat, bit s set meaning a hit on subdivision s.
type DrumVoice struct {
	Note  uint8
	Steps []byte
}
