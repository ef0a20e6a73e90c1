package transport

import (
	"time"

	"github.com/tightknit/bandsync/chord"
	"github.com/tightknit/bandsync/model"
	"github.com/tightknit/bandsync/wire"
)

// ChordSource supplies the active chord symbol for a position so remote arp
// units can follow harmony without holding the chords payload. May be nil
// when no chords role is co-resident.
type ChordSource func(section int, beat int) uint8

// Authority is the transport strategy of the structure manager. Its counters
// are the source of truth: every crossed beat goes out as a sync message,
// and start/stop/reset only ever originate here.
type Authority struct {
	clock    clock
	channel  wire.Channel
	chords   ChordSource
	conflict bool
}

func NewAuthority(song model.Song, channel wire.Channel, chords ChordSource) *Authority {
	return &Authority{
		clock:   newClock(song),
		channel: channel,
		chords:  chords,
	}
}

func (a *Authority) State() model.TransportState {
	return a.clock.state
}

// Advance drains the channel, then crosses any due beats, broadcasting one
// sync message per crossing. Anything received here can only come from a
// second misconfigured authority: it is reported via ConflictSeen and
// otherwise ignored so two authorities never chase each other.
func (a *Authority) Advance(now time.Time) []model.TransportState {
	for {
		_, ok, err := a.channel.Poll()
		if err != nil || !ok {
			break
		}
		a.conflict = true
	}

	crossed := a.clock.tick(now)
	for _, st := range crossed {
		a.broadcast(st, model.CmdNone)
	}
	return crossed
}

// ConflictSeen reports whether another authority has been heard, and clears
// the flag.
func (a *Authority) ConflictSeen() bool {
	seen := a.conflict
	a.conflict = false
	return seen
}

// Start begins or resumes playback and announces it.
func (a *Authority) Start(now time.Time) {
	if a.clock.state.Running {
		return
	}
	a.clock.start(now)
	a.broadcast(a.clock.state, model.CmdStart)
}

// Stop suppresses further beats but keeps the position, so a later start
// resumes rather than restarts.
func (a *Authority) Stop() {
	if !a.clock.state.Running {
		return
	}
	a.clock.stop()
	a.broadcast(a.clock.state, model.CmdStop)
}

// Reset rewinds to section 0, bar 0, beat 0 and announces it.
func (a *Authority) Reset(now time.Time) {
	a.clock.reset(now)
	a.broadcast(a.clock.state, model.CmdReset)
}

func (a *Authority) broadcast(st model.TransportState, cmd model.Command) {
	active := chord.None
	if a.chords != nil {
		active = a.chords(int(st.Section), st.Position(a.clock.song.BeatsPerBar))
	}
	// fire and forget, the medium owes us nothing
	_ = a.channel.Broadcast(model.SyncMessage{
		Seq:     st.Seq,
		Section: st.Section,
		Bar:     st.Bar,
		Beat:    st.Beat,
		Command: cmd,
		Chord:   active,
	})
}
