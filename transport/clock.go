// Package transport owns the per-unit beat/bar/section state machine. The
// unit configured as structure manager runs the Authority strategy and is
// the single source of truth; every other unit runs Follower and predicts
// locally between received sync messages. Both implement Strategy, chosen
// once at startup so no playback code branches on authority.
package transport

import (
	"time"

	"github.com/tightknit/bandsync/model"
)

// Strategy advances transport state against the wall clock and returns one
// entry per crossed beat, in order. Callers render exactly the returned
// beats; out-of-range positions cannot be produced.
type Strategy interface {
	Advance(now time.Time) []model.TransportState
	State() model.TransportState
}

// clock is the timing core shared by both strategies: tempo-derived tick,
// beat -> bar -> section counters, wrap after the last section.
type clock struct {
	song     model.Song
	state    model.TransportState
	seq      uint32
	beatDur  time.Duration
	deadline time.Time
	primed   bool
}

func newClock(song model.Song) clock {
	return clock{
		song:    song,
		beatDur: time.Minute / time.Duration(song.Tempo),
	}
}

// step moves the position to the next beat, wrapping bar, section and song
// boundaries without skipping or repeating a beat.
func (c *clock) step() {
	s := &c.state
	s.Beat++
	if s.Beat >= c.song.BeatsPerBar {
		s.Beat = 0
		s.Bar++
	}
	if s.Bar >= c.song.Sections[s.Section].Bars {
		s.Bar = 0
		s.Section++
	}
	if int(s.Section) >= len(c.song.Sections) {
		s.Section = 0
	}
}

// tick crosses every beat boundary due by now and returns the crossed
// states. The very first crossing emits beat zero itself. Seq counts beats
// since process start and survives a reset, so the follower monotonic
// filter never has to be unwound.
func (c *clock) tick(now time.Time) []model.TransportState {
	var crossed []model.TransportState
	for c.state.Running && !now.Before(c.deadline) {
		if c.primed {
			c.step()
			c.seq++
		} else {
			c.primed = true
		}
		c.state.Seq = c.seq
		crossed = append(crossed, c.state)
		c.deadline = c.deadline.Add(c.beatDur)
	}
	return crossed
}

func (c *clock) start(now time.Time) {
	if c.state.Running {
		return
	}
	c.state.Running = true
	if c.primed {
		// resume: the current beat already played before the stop
		c.deadline = now.Add(c.beatDur)
	} else {
		c.deadline = now
	}
}

func (c *clock) stop() {
	c.state.Running = false
}

// reset rewinds the position to the top of the song. Running state is left
// alone: a reset while playing restarts from the top on the next tick, a
// reset while stopped arms the next start to begin there.
func (c *clock) reset(now time.Time) {
	c.state.Section = 0
	c.state.Bar = 0
	c.state.Beat = 0
	if c.primed {
		// the rewound beat zero is a new beat, not a replay of the last one
		c.seq++
		c.state.Seq = c.seq
	}
	c.primed = false
	c.deadline = now
}
