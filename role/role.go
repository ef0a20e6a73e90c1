// Package role holds the deterministic per-role note generators. An engine
// binds one section's payload at construction and maps a section-relative
// beat index to note events. Identical (payload, beat) always yields
// identical events, so a unit that just resynchronized renders exactly what
// a unit that played continuously renders.
package role

import (
	"errors"
	"fmt"

	"github.com/tightknit/bandsync/model"
)

// Engine renders the note events for one beat of the bound section. Render
// must be pure: no accumulated state, no side effects.
type Engine interface {
	Render(beat int) []model.NoteEvent
}

var ErrUnknownRole = errors.New("role: no engine for role")

// ForSection builds the engine for a role over one section's payload. The
// role set is closed; boss and arp have no stored payload (the boss only
// drives transport, the arp derives everything at runtime).
func ForSection(id model.RoleID, section model.Section) (Engine, error) {
	payload := section.Payload(id)
	switch id {
	case model.RolePitch:
		return NewPitch(payload)
	case model.RolePattern:
		return NewPattern(payload)
	case model.RoleChords:
		return NewChords(payload)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownRole, id)
}
