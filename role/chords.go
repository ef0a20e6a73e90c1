package role

import (
	"encoding/binary"
	"fmt"

	"github.com/tightknit/bandsync/chord"
	"github.com/tightknit/bandsync/constants"
	"github.com/tightknit/bandsync/model"
)

// chordRecordSize is one encoded chord span: beat (2) | symbol (1) |
// duration (2).
const chordRecordSize = 5

// Chords strikes the harmony: ordered, non-overlapping chord spans. It also
// exposes the active symbol per beat, which is what the arp follower (local
// or remote, via sync messages) keys off.
type Chords struct {
	spans []model.ChordSpan
}

func NewChords(payload []byte) (*Chords, error) {
	spans, err := DecodeChords(payload)
	if err != nil {
		return nil, err
	}
	return &Chords{spans: spans}, nil
}

// Render emits the constituent pitches of any span starting on this beat.
func (c *Chords) Render(beat int) []model.NoteEvent {
	var res []model.NoteEvent
	for _, span := range c.spans {
		if int(span.Beat) != beat {
			continue
		}
		duration := span.Duration
		if duration > 255 {
			duration = 255
		}
		for _, note := range chord.Pitches(span.Symbol) {
			res = append(res, model.NoteEvent{
				Note:     note,
				Velocity: constants.DefaultVelocity,
				Duration: uint8(duration),
			})
		}
	}
	return res
}

// ActiveChord returns the symbol covering the given beat, or chord.None when
// the beat falls in a silence gap.
func (c *Chords) ActiveChord(beat int) uint8 {
	for _, span := range c.spans {
		if beat >= int(span.Beat) && beat < int(span.Beat)+int(span.Duration) {
			return span.Symbol
		}
	}
	return chord.None
}

func EncodeChords(spans []model.ChordSpan) []byte {
	res := make([]byte, 0, len(spans)*chordRecordSize)
	for _, s := range spans {
		var rec [chordRecordSize]byte
		binary.BigEndian.PutUint16(rec[0:2], s.Beat)
		rec[2] = s.Symbol
		binary.BigEndian.PutUint16(rec[3:5], s.Duration)
		res = append(res, rec[:]...)
	}
	return res
}

func DecodeChords(payload []byte) ([]model.ChordSpan, error) {
	if len(payload)%chordRecordSize != 0 {
		return nil, fmt.Errorf("role: chords payload length %d not a record multiple", len(payload))
	}
	var res []model.ChordSpan
	for i := 0; i < len(payload); i += chordRecordSize {
		res = append(res, model.ChordSpan{
			Beat:     binary.BigEndian.Uint16(payload[i : i+2]),
			Symbol:   payload[i+2],
			Duration: binary.BigEndian.Uint16(payload[i+3 : i+5]),
		})
	}
	return res, nil
}
