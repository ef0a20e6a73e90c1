package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tightknit/bandsync/model"
	"github.com/tightknit/bandsync/songfile"
	"github.com/tightknit/bandsync/wire"
)

// two sections, 4+2 bars of 4 beats at 120 bpm: 24 beats per pass
func twoSectionSong() model.Song {
	return model.Song{
		Tempo:       120,
		BeatsPerBar: 4,
		Sections: []model.Section{
			{Bars: 4, Payloads: map[model.RoleID][]byte{}},
			{Bars: 2, Payloads: map[model.RoleID][]byte{}},
		},
	}
}

const beat = 500 * time.Millisecond

func TestAuthorityCrossesEveryBeatAndWraps(t *testing.T) {
	hub := wire.NewHub()
	auth := NewAuthority(twoSectionSong(), hub.Endpoint(64), nil)
	base := time.Unix(1000, 0)

	auth.Start(base)
	crossed := auth.Advance(base.Add(24 * beat))

	assert := assert.New(t)
	assert.Len(crossed, 25)
	for i, st := range crossed {
		assert.Equal(uint32(i), st.Seq, "seq must be contiguous")
	}
	assert.Equal(model.TransportState{Section: 0, Bar: 0, Beat: 0, Running: true, Seq: 0}, crossed[0])
	assert.Equal(uint16(1), crossed[16].Section)
	assert.Equal(uint16(0), crossed[16].Bar)
	// the 6 bars wrap back to the top, no intermediate or skipped index
	assert.Equal(model.TransportState{Section: 0, Bar: 0, Beat: 0, Running: true, Seq: 24}, crossed[24])
}

func TestAuthorityBroadcastsEveryCrossing(t *testing.T) {
	hub := wire.NewHub()
	auth := NewAuthority(twoSectionSong(), hub.Endpoint(64), nil)
	listener := hub.Endpoint(64)
	base := time.Unix(1000, 0)

	auth.Start(base)
	auth.Advance(base.Add(3 * beat))

	var msgs []model.SyncMessage
	for {
		msg, ok, _ := listener.Poll()
		if !ok {
			break
		}
		msgs = append(msgs, msg)
	}

	assert := assert.New(t)
	assert.Len(msgs, 5) // start command plus 4 beats
	assert.Equal(model.CmdStart, msgs[0].Command)
	for i, msg := range msgs[1:] {
		assert.Equal(model.CmdNone, msg.Command)
		assert.Equal(uint32(i), msg.Seq)
	}
}

func TestFollowerTracksAuthorityInLockstep(t *testing.T) {
	hub := wire.NewHub()
	auth := NewAuthority(twoSectionSong(), hub.Endpoint(64), nil)
	fol := NewFollower(twoSectionSong(), hub.Endpoint(64), 8)
	base := time.Unix(1000, 0)

	assert := assert.New(t)
	auth.Start(base)
	for k := 0; k < 25; k++ {
		now := base.Add(time.Duration(k) * beat)
		authCrossed := auth.Advance(now)
		folCrossed := fol.Advance(now)
		assert.Equal(authCrossed, folCrossed, "step %v", k)
	}
	assert.Equal(auth.State(), fol.State())
	assert.False(fol.Desynced())
}

func TestFollowerFreeRunsThroughLossWithinOneBeat(t *testing.T) {
	hub := wire.NewHub()
	auth := NewAuthority(twoSectionSong(), hub.Endpoint(64), nil)
	fol := NewFollower(twoSectionSong(), hub.Endpoint(64), 8)
	base := time.Unix(1000, 0)

	assert := assert.New(t)
	auth.Start(base)
	var rendered []uint32
	for k := 0; k < 12; k++ {
		if k == 5 {
			hub.DropNext(3)
		}
		now := base.Add(time.Duration(k) * beat)
		authCrossed := auth.Advance(now)
		folCrossed := fol.Advance(now)

		// the local prediction stays within one beat of the truth
		assert.Equal(authCrossed[len(authCrossed)-1].Position(4), folCrossed[len(folCrossed)-1].Position(4), "step %v", k)
		for _, st := range folCrossed {
			rendered = append(rendered, st.Seq)
		}
	}

	// every beat rendered exactly once despite the losses
	assert.Len(rendered, 12)
	for i, seq := range rendered {
		assert.Equal(uint32(i), seq)
	}
	assert.False(fol.Desynced())
}

func TestFollowerReportsSyncLossBeyondTolerance(t *testing.T) {
	hub := wire.NewHub()
	auth := NewAuthority(twoSectionSong(), hub.Endpoint(64), nil)
	fol := NewFollower(twoSectionSong(), hub.Endpoint(64), 2)
	base := time.Unix(1000, 0)

	assert := assert.New(t)
	auth.Start(base)
	auth.Advance(base)
	fol.Advance(base)
	assert.False(fol.Desynced())

	hub.DropNext(100)
	for k := 1; k <= 4; k++ {
		now := base.Add(time.Duration(k) * beat)
		auth.Advance(now)
		fol.Advance(now)
	}
	assert.True(fol.Desynced())

	// playback never stopped while desynced
	assert.True(fol.State().Running)

	hub.DropNext(0)
	now := base.Add(5 * beat)
	auth.Advance(now)
	fol.Advance(now)
	assert.False(fol.Desynced())
}

func TestFollowerDiscardsStaleAndDuplicateFrames(t *testing.T) {
	hub := wire.NewHub()
	fake := hub.Endpoint(8)
	fol := NewFollower(twoSectionSong(), hub.Endpoint(8), 8)
	base := time.Unix(1000, 0)

	fake.Broadcast(model.SyncMessage{Seq: 5, Section: 1, Bar: 0, Beat: 1})
	fake.Broadcast(model.SyncMessage{Seq: 3, Section: 0, Bar: 3, Beat: 0}) // reordered
	fake.Broadcast(model.SyncMessage{Seq: 5, Section: 1, Bar: 0, Beat: 1}) // duplicate

	crossed := fol.Advance(base)

	assert := assert.New(t)
	assert.Len(crossed, 1)
	assert.Equal(uint32(5), crossed[0].Seq)
	assert.Equal(uint16(1), fol.State().Section)
}

func TestStopPreservesPositionAndStartResumes(t *testing.T) {
	hub := wire.NewHub()
	auth := NewAuthority(twoSectionSong(), hub.Endpoint(64), nil)
	base := time.Unix(1000, 0)

	assert := assert.New(t)
	auth.Start(base)
	auth.Advance(base.Add(5 * beat)) // beats 0..5
	auth.Stop()

	assert.Empty(auth.Advance(base.Add(20*beat)), "stopped clock must not tick")
	stopped := auth.State()
	assert.False(stopped.Running)
	assert.Equal(uint32(5), stopped.Seq)

	resume := base.Add(21 * beat)
	auth.Start(resume)
	crossed := auth.Advance(resume.Add(beat))
	assert.Len(crossed, 1)
	assert.Equal(uint32(6), crossed[0].Seq)
	assert.Equal(uint8(2), crossed[0].Beat) // picks up right after beat 5
}

func TestResetRewindsToTop(t *testing.T) {
	hub := wire.NewHub()
	auth := NewAuthority(twoSectionSong(), hub.Endpoint(64), nil)
	base := time.Unix(1000, 0)

	assert := assert.New(t)
	auth.Start(base)
	auth.Advance(base.Add(7 * beat))
	lastSeq := auth.State().Seq

	resetAt := base.Add(8 * beat)
	auth.Reset(resetAt)
	crossed := auth.Advance(resetAt)

	assert.Len(crossed, 1)
	assert.Equal(uint16(0), crossed[0].Section)
	assert.Equal(uint16(0), crossed[0].Bar)
	assert.Equal(uint8(0), crossed[0].Beat)
	assert.Greater(crossed[0].Seq, lastSeq, "seq stays monotonic across reset")
}

func TestFollowerHonorsStopAndStartCommands(t *testing.T) {
	hub := wire.NewHub()
	fake := hub.Endpoint(8)
	fol := NewFollower(twoSectionSong(), hub.Endpoint(8), 8)
	base := time.Unix(1000, 0)

	assert := assert.New(t)
	fake.Broadcast(model.SyncMessage{Seq: 4, Bar: 1, Command: model.CmdNone})
	fol.Advance(base)
	assert.True(fol.State().Running)

	fake.Broadcast(model.SyncMessage{Seq: 4, Bar: 1, Command: model.CmdStop})
	fol.Advance(base)
	assert.False(fol.State().Running)
	assert.Empty(fol.Advance(base.Add(10*beat)), "stopped follower must not free-run")

	fake.Broadcast(model.SyncMessage{Seq: 4, Bar: 1, Command: model.CmdStart})
	crossed := fol.Advance(base.Add(10 * beat))
	assert.True(fol.State().Running)
	assert.Empty(crossed, "resume does not replay the current beat")
}

func TestFollowerIgnoresPositionsBeyondItsOwnSong(t *testing.T) {
	hub := wire.NewHub()
	fake := hub.Endpoint(8)
	fol := NewFollower(songfile.Default(), hub.Endpoint(8), 2)
	base := time.Unix(1000, 0)

	assert := assert.New(t)

	// a frame for a section this unit's song does not have must not be
	// adopted: the next local tick would step out of range
	fake.Broadcast(model.SyncMessage{Seq: 10, Section: 1, Beat: 3, Command: model.CmdNone})
	assert.Empty(fol.Advance(base))
	assert.Empty(fol.Advance(base.Add(2 * beat)))
	assert.Equal(uint16(0), fol.State().Section)

	// in-range frames still sync it
	fake.Broadcast(model.SyncMessage{Seq: 11, Command: model.CmdNone})
	crossed := fol.Advance(base.Add(2 * beat))
	assert.Len(crossed, 1)
	assert.True(fol.State().Running)

	// a boss playing a longer song leaves this unit free-running inside its
	// own song until the desync condition is raised
	for k := 1; k <= 4; k++ {
		fake.Broadcast(model.SyncMessage{Seq: 11 + uint32(k), Section: 1, Beat: 3, Command: model.CmdNone})
		for _, st := range fol.Advance(base.Add(time.Duration(2+k) * beat)) {
			assert.Equal(uint16(0), st.Section)
		}
	}
	assert.True(fol.Desynced())
}

func TestAuthorityReportsConflictAndIgnoresIntruder(t *testing.T) {
	hub := wire.NewHub()
	auth := NewAuthority(twoSectionSong(), hub.Endpoint(8), nil)
	intruder := hub.Endpoint(8)
	base := time.Unix(1000, 0)

	assert := assert.New(t)
	auth.Start(base)
	auth.Advance(base)
	assert.False(auth.ConflictSeen())

	intruder.Broadcast(model.SyncMessage{Seq: 999, Section: 1})
	crossed := auth.Advance(base.Add(beat))

	assert.True(auth.ConflictSeen())
	assert.False(auth.ConflictSeen(), "flag clears once read")
	assert.Len(crossed, 1)
	assert.Equal(uint16(0), crossed[0].Section, "authority state unaffected by intruder")
}
