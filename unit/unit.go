// Package unit runs one music unit: a single cooperative loop around the
// transport strategy, the wireless channel and the role engines. One Step
// checks for sync messages, advances transport, and renders any crossed
// beats to the event sink. Units are plain values so tests can run several
// of them against one loopback channel.
package unit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tightknit/bandsync/arp"
	"github.com/tightknit/bandsync/chord"
	"github.com/tightknit/bandsync/constants"
	"github.com/tightknit/bandsync/model"
	"github.com/tightknit/bandsync/role"
	"github.com/tightknit/bandsync/songfile"
	"github.com/tightknit/bandsync/transport"
	"github.com/tightknit/bandsync/wire"
)

// EventSink consumes rendered note events; the audio/MIDI layer lives
// behind it.
type EventSink interface {
	Play(events []model.NoteEvent)
}

// Condition is a degraded-state signal pushed to the external UI/telemetry
// collaborator. None of them stop playback.
type Condition uint8

const (
	CondSyncLoss Condition = iota
	CondSyncRecovered
	CondLoadFallback
	CondConfigError
	CondAuthorityConflict
)

func (c Condition) String() string {
	switch c {
	case CondSyncLoss:
		return "sync loss"
	case CondSyncRecovered:
		return "sync recovered"
	case CondLoadFallback:
		return "song load fallback"
	case CondConfigError:
		return "config error"
	case CondAuthorityConflict:
		return "clock authority conflict"
	}
	return "condition(?)"
}

// Notifier receives degraded-state conditions.
type Notifier interface {
	Notify(c Condition, detail string)
}

// Config is the unit's role assignment, read once at startup and immutable
// afterwards.
type Config struct {
	Role          model.RoleID
	Boss          bool
	ArpStyle      model.ArpStyle
	SyncTolerance int
}

// Unit is the owned per-unit context. All transport state lives inside its
// strategy; nothing here is process-global.
type Unit struct {
	ID   uuid.UUID
	cfg  Config
	song model.Song

	strategy  transport.Strategy
	authority *transport.Authority
	follower  *transport.Follower

	engines []role.Engine
	chords  []*role.Chords

	sink     EventSink
	notifier Notifier

	disabled bool
	desynced bool
}

// New wires a unit from its configuration. An invalid role assignment does
// not fail construction: the unit comes up with rendering disabled and keeps
// relaying sync, per the degraded-state design.
func New(cfg Config, song model.Song, channel wire.Channel, sink EventSink, notifier Notifier) *Unit {
	if cfg.SyncTolerance <= 0 {
		cfg.SyncTolerance = constants.DefaultSyncTolerance
	}
	u := &Unit{
		ID:       uuid.New(),
		cfg:      cfg,
		song:     song,
		sink:     sink,
		notifier: notifier,
	}

	u.chords = chordEngines(song)
	if err := u.bindRole(); err != nil {
		u.disabled = true
		u.notify(CondConfigError, err.Error())
	}

	if cfg.Boss {
		u.authority = transport.NewAuthority(song, channel, u.chordSource())
		u.strategy = u.authority
	} else {
		u.follower = transport.NewFollower(song, channel, cfg.SyncTolerance)
		u.strategy = u.follower
	}
	return u
}

// bindRole builds one engine per section for the unit's role. Boss and arp
// bind nothing: the boss only drives transport, the arp derives notes at
// runtime.
func (u *Unit) bindRole() error {
	switch u.cfg.Role {
	case model.RoleBoss, model.RoleArp:
		return nil
	case model.RolePitch, model.RolePattern, model.RoleChords:
		for i, section := range u.song.Sections {
			engine, err := role.ForSection(u.cfg.Role, section)
			if err != nil {
				return fmt.Errorf("section %d: %w", i, err)
			}
			u.engines = append(u.engines, engine)
		}
		return nil
	}
	return fmt.Errorf("%w: %v", role.ErrUnknownRole, u.cfg.Role)
}

// chordEngines decodes every section's chords payload up front; sections
// without one get a nil entry. Used by the authority's chord source and by
// a co-resident arp.
func chordEngines(song model.Song) []*role.Chords {
	res := make([]*role.Chords, len(song.Sections))
	for i, section := range song.Sections {
		payload := section.Payload(model.RoleChords)
		if payload == nil {
			continue
		}
		if engine, err := role.NewChords(payload); err == nil {
			res[i] = engine
		}
	}
	return res
}

func (u *Unit) chordSource() transport.ChordSource {
	return func(section int, beat int) uint8 {
		if section >= len(u.chords) || u.chords[section] == nil {
			return chord.None
		}
		return u.chords[section].ActiveChord(beat)
	}
}

// Step is one iteration of the cooperative loop: fold in sync, advance,
// render crossed beats. Sync adoption always precedes rendering, so a beat
// is never rendered from state about to be discarded.
func (u *Unit) Step(now time.Time) {
	crossed := u.strategy.Advance(now)

	if u.authority != nil && u.authority.ConflictSeen() {
		u.notify(CondAuthorityConflict, "another authoritative unit is broadcasting")
	}
	if u.follower != nil && u.follower.Desynced() != u.desynced {
		u.desynced = u.follower.Desynced()
		if u.desynced {
			u.notify(CondSyncLoss, "free-running on local prediction")
		} else {
			u.notify(CondSyncRecovered, "")
		}
	}

	if u.disabled {
		return
	}
	for _, st := range crossed {
		events := u.render(st)
		if len(events) > 0 && u.sink != nil {
			u.sink.Play(events)
		}
	}
}

func (u *Unit) render(st model.TransportState) []model.NoteEvent {
	section := int(st.Section)
	beat := st.Position(u.song.BeatsPerBar)

	switch u.cfg.Role {
	case model.RoleBoss:
		return nil
	case model.RoleArp:
		return arp.Render(u.cfg.ArpStyle, u.activeChord(section, beat), beat)
	}
	if section >= len(u.engines) {
		return nil
	}
	return u.engines[section].Render(beat)
}

// activeChord prefers a co-resident chords engine; when the chord generator
// is remote the symbol rides in on the sync messages instead.
func (u *Unit) activeChord(section int, beat int) uint8 {
	if section < len(u.chords) && u.chords[section] != nil {
		return u.chords[section].ActiveChord(beat)
	}
	if u.follower != nil {
		return u.follower.ActiveChord()
	}
	return chord.None
}

// Run drives Step until the context is cancelled. The poll period is well
// under the shortest beat interval so no boundary is crossed late enough
// to matter.
func (u *Unit) Run(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			u.Step(now)
		}
	}
}

// Start, Stop and Reset are only honored on the authoritative unit;
// followers never initiate transport commands.
func (u *Unit) Start(now time.Time) error {
	if u.authority == nil {
		return fmt.Errorf("unit: transport commands only originate on the boss")
	}
	u.authority.Start(now)
	return nil
}

func (u *Unit) Stop() error {
	if u.authority == nil {
		return fmt.Errorf("unit: transport commands only originate on the boss")
	}
	u.authority.Stop()
	return nil
}

func (u *Unit) Reset(now time.Time) error {
	if u.authority == nil {
		return fmt.Errorf("unit: transport commands only originate on the boss")
	}
	u.authority.Reset(now)
	return nil
}

// Status snapshots the unit for the telemetry surface.
func (u *Unit) Status() model.StatusResponse {
	st := u.strategy.State()
	return model.StatusResponse{
		UnitID:   u.ID.String(),
		Role:     u.cfg.Role.String(),
		Boss:     u.cfg.Boss,
		Running:  st.Running,
		Section:  st.Section,
		Bar:      st.Bar,
		Beat:     st.Beat,
		Seq:      st.Seq,
		Desynced: u.desynced,
	}
}

func (u *Unit) notify(c Condition, detail string) {
	if u.notifier != nil {
		u.notifier.Notify(c, detail)
	}
}

// LoadSongOrDefault loads the song asset, substituting the built-in default
// on any format error so the unit always has something to play.
func LoadSongOrDefault(path string, notifier Notifier) model.Song {
	song, err := songfile.LoadFile(path)
	if err != nil {
		if notifier != nil {
			notifier.Notify(CondLoadFallback, err.Error())
		}
		return songfile.Default()
	}
	return song
}
