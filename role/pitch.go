package role

import (
	"encoding/binary"
	"fmt"

	"github.com/tightknit/bandsync/model"
)

// pitchRecordSize is one encoded pitch event: beat (2) | pitch (1) |
// duration (1) | velocity (1).
const pitchRecordSize = 5

// Pitch plays the melody/bass line: explicit note events placed at beat
// offsets within the section.
type Pitch struct {
	events []model.PitchEvent
}

func NewPitch(payload []byte) (*Pitch, error) {
	events, err := DecodePitch(payload)
	if err != nil {
		return nil, err
	}
	return &Pitch{events: events}, nil
}

func (p *Pitch) Render(beat int) []model.NoteEvent {
	var res []model.NoteEvent
	for _, e := range p.events {
		if int(e.Beat) == beat {
			res = append(res, model.NoteEvent{
				Note:     e.Pitch,
				Velocity: e.Velocity,
				Duration: e.Duration,
			})
		}
	}
	return res
}

func EncodePitch(events []model.PitchEvent) []byte {
	res := make([]byte, 0, len(events)*pitchRecordSize)
	for _, e := range events {
		var rec [pitchRecordSize]byte
		binary.BigEndian.PutUint16(rec[0:2], e.Beat)
		rec[2] = e.Pitch
		rec[3] = e.Duration
		rec[4] = e.Velocity
		res = append(res, rec[:]...)
	}
	return res
}

func DecodePitch(payload []byte) ([]model.PitchEvent, error) {
	if len(payload)%pitchRecordSize != 0 {
		return nil, fmt.Errorf("role: pitch payload length %d not a record multiple", len(payload))
	}
	var res []model.PitchEvent
	for i := 0; i < len(payload); i += pitchRecordSize {
		res = append(res, model.PitchEvent{
			Beat:     binary.BigEndian.Uint16(payload[i : i+2]),
			Pitch:    payload[i+2],
			Duration: payload[i+3],
			Velocity: payload[i+4],
		})
	}
	return res, nil
}
