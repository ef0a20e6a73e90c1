package role

import (
	"encoding/binary"
	"fmt"

	"github.com/tightknit/bandsync/model"
)

// Pattern drives the drum voices: one hit-mask byte per beat per voice,
// bit s meaning a hit on subdivision s of that beat.
type Pattern struct {
	voices []model.DrumVoice
}

func NewPattern(payload []byte) (*Pattern, error) {
	voices, err := DecodePattern(payload)
	if err != nil {
		return nil, err
	}
	return &Pattern{voices: voices}, nil
}

func (p *Pattern) Render(beat int) []model.NoteEvent {
	var res []model.NoteEvent
	for _, v := range p.voices {
		if beat >= len(v.Steps) {
			continue
		}
		mask := v.Steps[beat]
		for s := uint8(0); s < 8; s++ {
			if mask&(1<<s) != 0 {
				res = append(res, model.NoteEvent{
					Subdiv:   s,
					Note:     v.Note,
					Velocity: defaultDrumVelocity,
				})
			}
		}
	}
	return res
}

const defaultDrumVelocity = 110

func EncodePattern(voices []model.DrumVoice) []byte {
	res := []byte{uint8(len(voices))}
	for _, v := range voices {
		res = append(res, v.Note)
		var l [2]byte
		binary.BigEndian.PutUint16(l[:], uint16(len(v.Steps)))
		res = append(res, l[:]...)
		res = append(res, v.Steps...)
	}
	return res
}

func DecodePattern(payload []byte) ([]model.DrumVoice, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	numVoices := int(payload[0])
	pos := 1
	var res []model.DrumVoice
	for v := 0; v < numVoices; v++ {
		if pos+3 > len(payload) {
			return nil, fmt.Errorf("role: pattern payload truncated at voice %d", v)
		}
		note := payload[pos]
		steps := int(binary.BigEndian.Uint16(payload[pos+1 : pos+3]))
		pos += 3
		if pos+steps > len(payload) {
			return nil, fmt.Errorf("role: pattern voice %d declares %d steps past end", v, steps)
		}
		res = append(res, model.DrumVoice{
			Note:  note,
			Steps: payload[pos : pos+steps],
		})
		pos += steps
	}
	return res, nil
}
