// Package midiout pushes rendered note events to a MIDI output port. It is
// the default audio collaborator when running a unit on a workstation
// instead of the instrument hardware.
package midiout

import (
	"fmt"

	"github.com/tightknit/bandsync/model"
	"gitlab.com/gomidi/midi/v2"
)

// Sink implements unit.EventSink over a MIDI out port.
type Sink struct {
	send    func(midi.Message) error
	channel uint8
}

// New opens the MIDI out port by index. Call Close when done; it also closes
// the underlying driver.
func New(portIndex int, channel uint8) (*Sink, error) {
	out, err := midi.OutPort(portIndex)
	if err != nil {
		return nil, fmt.Errorf("midiout: no out port %d: %w", portIndex, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("midiout: open port %d: %w", portIndex, err)
	}
	return &Sink{send: send, channel: channel}, nil
}

// Play fires the beat's events as note-on/note-off messages. Velocity zero
// is a note off, matching the event model.
func (s *Sink) Play(events []model.NoteEvent) {
	for _, e := range events {
		var msg midi.Message
		if e.Velocity == 0 {
			msg = midi.NoteOff(s.channel, e.Note)
		} else {
			msg = midi.NoteOn(s.channel, e.Note, e.Velocity)
		}
		if err := s.send(msg); err != nil {
			fmt.Printf("midiout: send failed: %v\n", err)
		}
	}
}

func (s *Sink) Close() {
	midi.CloseDriver()
}
