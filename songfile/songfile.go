// Package songfile encodes and decodes the binary song asset shared by all
// units. The asset is baked offline and treated as read-only at runtime; a
// unit that cannot load it falls back to Default so playback never halts.
//
// Layout (big-endian):
//
//	header: magic "LBND" (4) | version (1) | tempo (2) | beats/bar (1) | sections (2)
//	table:  per section: bars (2) | role count (1) | per role: id (1) | offset (4) | length (4)
//	payloads: raw role payload bytes, addressed by absolute offset
package songfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/tightknit/bandsync/constants"
	"github.com/tightknit/bandsync/model"
)

var (
	ErrBadMagic   = errors.New("song: bad magic")
	ErrBadVersion = errors.New("song: unsupported version")
	ErrTruncated  = errors.New("song: truncated")
)

// IsFormatError reports whether err is one of the asset format errors, as
// opposed to an I/O failure.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrBadMagic) || errors.Is(err, ErrBadVersion) || errors.Is(err, ErrTruncated)
}

const headerSize = 10

// Load decodes a song asset. Unknown role ids in the section table are
// skipped; anything structurally inconsistent fails the whole load.
func Load(data []byte) (model.Song, error) {
	var song model.Song

	if len(data) < headerSize {
		return song, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
	}
	if string(data[0:4]) != constants.SongMagic {
		return song, ErrBadMagic
	}
	if data[4] != constants.SongVersion {
		return song, fmt.Errorf("%w: got %d, want %d", ErrBadVersion, data[4], constants.SongVersion)
	}

	song.Tempo = binary.BigEndian.Uint16(data[5:7])
	song.BeatsPerBar = data[7]
	numSections := int(binary.BigEndian.Uint16(data[8:10]))
	if song.Tempo == 0 || song.BeatsPerBar == 0 {
		return model.Song{}, fmt.Errorf("%w: zero tempo or meter", ErrTruncated)
	}

	pos := headerSize
	for s := 0; s < numSections; s++ {
		if pos+3 > len(data) {
			return model.Song{}, fmt.Errorf("%w: section %d table entry", ErrTruncated, s)
		}
		var section model.Section
		section.Bars = binary.BigEndian.Uint16(data[pos : pos+2])
		numRoles := int(data[pos+2])
		pos += 3
		if section.Bars == 0 {
			return model.Song{}, fmt.Errorf("%w: section %d has no bars", ErrTruncated, s)
		}

		section.Payloads = make(map[model.RoleID][]byte)
		for r := 0; r < numRoles; r++ {
			if pos+9 > len(data) {
				return model.Song{}, fmt.Errorf("%w: section %d role entry %d", ErrTruncated, s, r)
			}
			id := model.RoleID(data[pos])
			offset := binary.BigEndian.Uint32(data[pos+1 : pos+5])
			length := binary.BigEndian.Uint32(data[pos+5 : pos+9])
			pos += 9

			if int(offset)+int(length) > len(data) {
				return model.Song{}, fmt.Errorf("%w: section %d role %v payload out of range", ErrTruncated, s, id)
			}
			// future role ids must not fail the load
			if id > model.RoleArp {
				continue
			}
			section.Payloads[id] = data[offset : offset+length]
		}
		song.Sections = append(song.Sections, section)
	}

	if len(song.Sections) == 0 {
		return model.Song{}, fmt.Errorf("%w: no sections", ErrTruncated)
	}
	return song, nil
}

// LoadFile loads a song asset from disk.
func LoadFile(path string) (model.Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Song{}, fmt.Errorf("song: read %v: %w", path, err)
	}
	return Load(data)
}

// Encode is the inverse of Load (bake path).
func Encode(song model.Song) []byte {
	// table size is known up front, payloads are appended after it
	tableSize := headerSize
	for _, s := range song.Sections {
		tableSize += 3 + 9*len(s.Payloads)
	}

	res := make([]byte, headerSize, tableSize)
	copy(res[0:4], constants.SongMagic)
	res[4] = constants.SongVersion
	binary.BigEndian.PutUint16(res[5:7], song.Tempo)
	res[7] = song.BeatsPerBar
	binary.BigEndian.PutUint16(res[8:10], uint16(len(song.Sections)))

	var payloads []byte
	offset := uint32(tableSize)
	for _, s := range song.Sections {
		var entry [3]byte
		binary.BigEndian.PutUint16(entry[0:2], s.Bars)
		entry[2] = uint8(len(s.Payloads))
		res = append(res, entry[:]...)

		// deterministic table order so identical songs encode identically
		for _, id := range sortedRoles(s.Payloads) {
			payload := s.Payloads[id]
			var re [9]byte
			re[0] = uint8(id)
			binary.BigEndian.PutUint32(re[1:5], offset)
			binary.BigEndian.PutUint32(re[5:9], uint32(len(payload)))
			res = append(res, re[:]...)
			payloads = append(payloads, payload...)
			offset += uint32(len(payload))
		}
	}

	return append(res, payloads...)
}

func sortedRoles(m map[model.RoleID][]byte) []model.RoleID {
	roles := make([]model.RoleID, 0, len(m))
	for id := model.RoleID(0); id <= model.RoleArp; id++ {
		if _, ok := m[id]; ok {
			roles = append(roles, id)
		}
	}
	return roles
}

// Default is the built-in fallback song: one empty section, all roles
// silent. Substituted whenever loading the real asset fails.
func Default() model.Song {
	return model.Song{
		Tempo:       constants.DefaultTempo,
		BeatsPerBar: constants.DefaultBeatsPerBar,
		Sections: []model.Section{
			{Bars: 1, Payloads: map[model.RoleID][]byte{}},
		},
	}
}
