package transport

import (
	"time"

	"github.com/tightknit/bandsync/chord"
	"github.com/tightknit/bandsync/model"
	"github.com/tightknit/bandsync/wire"
)

// Follower is the transport strategy of every non-authoritative unit. Its
// counters are a local prediction: each accepted sync message replaces them
// verbatim, and only the interval between messages is interpolated from the
// local tempo tick, so drift never accumulates.
type Follower struct {
	clock     clock
	channel   wire.Channel
	tolerance int

	lastSeq     uint32
	synced      bool
	rendered    bool
	lastRender  uint32
	missed      int
	desynced    bool
	activeChord uint8
}

// NewFollower builds a follower that tolerates the given number of
// consecutive locally interpolated beats before reporting sync loss.
func NewFollower(song model.Song, channel wire.Channel, tolerance int) *Follower {
	return &Follower{
		clock:       newClock(song),
		channel:     channel,
		tolerance:   tolerance,
		activeChord: chord.None,
	}
}

func (f *Follower) State() model.TransportState {
	return f.clock.state
}

// ActiveChord is the chord symbol carried by the last accepted sync message,
// for arp units whose chord generator lives on a remote unit.
func (f *Follower) ActiveChord() uint8 {
	return f.activeChord
}

// Desynced reports whether more consecutive messages than the tolerance
// bound have been missed. Playback continues on local prediction regardless.
func (f *Follower) Desynced() bool {
	return f.desynced
}

// Advance folds in every pending sync message, then free-runs the local
// tick. Message adoption always happens before local interpolation, so a
// beat is never rendered from state about to be discarded.
func (f *Follower) Advance(now time.Time) []model.TransportState {
	var crossed []model.TransportState

	for {
		msg, ok, err := f.channel.Poll()
		if err != nil || !ok {
			break
		}
		if st, render := f.adopt(msg, now); render {
			crossed = append(crossed, st)
		}
	}

	freeRun := f.clock.tick(now)
	if n := len(freeRun); n > 0 {
		// a late authoritative frame for a beat played here must not replay it
		f.rendered = true
		f.lastRender = freeRun[n-1].Seq
	}
	if f.synced && f.clock.state.Running {
		f.missed += len(freeRun)
		if f.missed > f.tolerance {
			f.desynced = true
		}
	}
	return append(crossed, freeRun...)
}

// adopt applies one received message. Stale and duplicate frames fail the
// monotonic filter, and frames whose position does not exist in the local
// song (a unit on the fallback song, or a stray datagram on the sync port)
// are dropped so the local tick can never step out of range. Accepted frames
// replace the predicted counters verbatim. The returned flag says whether the
// message marks a beat this unit has not rendered yet.
func (f *Follower) adopt(msg model.SyncMessage, now time.Time) (model.TransportState, bool) {
	var none model.TransportState
	if f.synced && msg.Seq < f.lastSeq {
		return none, false
	}
	if int(msg.Section) >= len(f.clock.song.Sections) ||
		msg.Bar >= f.clock.song.Sections[msg.Section].Bars ||
		msg.Beat >= f.clock.song.BeatsPerBar {
		return none, false
	}

	f.clock.state.Section = msg.Section
	f.clock.state.Bar = msg.Bar
	f.clock.state.Beat = msg.Beat
	f.clock.state.Seq = msg.Seq
	f.clock.seq = msg.Seq
	f.clock.primed = true
	f.clock.deadline = now.Add(f.clock.beatDur)
	f.lastSeq = msg.Seq
	f.synced = true
	f.missed = 0
	f.desynced = false
	f.activeChord = msg.Chord

	switch msg.Command {
	case model.CmdStart, model.CmdNone:
		// beat broadcasts only flow while the authority is running, so a
		// follower that joins mid-song starts on the first one it hears
		f.clock.state.Running = true
	case model.CmdStop:
		f.clock.state.Running = false
	case model.CmdReset:
		// position already adopted verbatim
	}

	if msg.Command != model.CmdNone {
		return none, false
	}
	if f.rendered && msg.Seq <= f.lastRender {
		return none, false
	}
	f.rendered = true
	f.lastRender = msg.Seq
	return f.clock.state, true
}
