package chord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tightknit/bandsync/util"
)

// Quality of a chord symbol. The set is closed: every symbol byte in a chords
// payload or a sync message decodes to a (root, quality) pair.
type Quality uint8

const (
	Maj Quality = iota
	Min
	Dom7

	numQualities = 3
)

// None is the symbol byte meaning "no chord active".
const None uint8 = 0

// Playable range chord pitches are folded into. Matches the range the
// instruments can actually voice.
const (
	minNote = 48
	maxNote = 84
)

var intervals = map[Quality][]int{
	Maj:  {0, 4, 7},
	Min:  {0, 3, 7},
	Dom7: {0, 4, 7, 10},
}

var qualityNames = map[Quality]string{
	Maj:  "maj",
	Min:  "min",
	Dom7: "7",
}

var rootNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Symbol packs a root pitch class and quality into one symbol byte.
func Symbol(root uint8, quality Quality) uint8 {
	return 1 + uint8(quality)*12 + root%12
}

func split(symbol uint8) (uint8, Quality) {
	v := symbol - 1
	return v % 12, Quality(v / 12)
}

// Valid reports whether the symbol byte decodes to a known chord.
func Valid(symbol uint8) bool {
	if symbol == None {
		return false
	}
	_, q := split(symbol)
	return q < numQualities
}

// Name renders a symbol byte as e.g. "Cmaj", "Amin", "G7".
func Name(symbol uint8) string {
	if symbol == None {
		return "-"
	}
	root, q := split(symbol)
	if q >= numQualities {
		return fmt.Sprintf("chord(%d)", symbol)
	}
	return rootNames[root] + qualityNames[q]
}

// ParseName is the inverse of Name.
func ParseName(name string) (uint8, error) {
	for root, rn := range rootNames {
		if !strings.HasPrefix(name, rn) {
			continue
		}
		// "C#" must win over "C"
		if strings.HasPrefix(name, rn+"#") {
			continue
		}
		rest := strings.TrimPrefix(name, rn)
		for q, qn := range qualityNames {
			if rest == qn {
				return Symbol(uint8(root), q), nil
			}
		}
	}
	return None, fmt.Errorf("unknown chord name %q", name)
}

// Pitches returns the constituent MIDI pitches of a symbol, folded into the
// playable range and sorted ascending. Unknown symbols yield nil.
func Pitches(symbol uint8) []uint8 {
	if !Valid(symbol) {
		return nil
	}
	root, q := split(symbol)
	base := 60 + int(root)
	var notes []uint8
	for _, iv := range intervals[q] {
		notes = append(notes, util.FoldNote(base+iv, minNote, maxNote))
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i] < notes[j]
	})
	return notes
}

// Voicing is Pitches in as-played order: root first, then the upper chord
// tones in interval order, before any range folding reshuffles them.
func Voicing(symbol uint8) []uint8 {
	if !Valid(symbol) {
		return nil
	}
	root, q := split(symbol)
	base := 60 + int(root)
	var notes []uint8
	for _, iv := range intervals[q] {
		notes = append(notes, util.FoldNote(base+iv, minNote, maxNote))
	}
	return notes
}

// CreateChordKey renders pitches as a stable display key, e.g. "60-64-67".
func CreateChordKey(notes []uint8) string {
	sorted := append([]uint8(nil), notes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}
