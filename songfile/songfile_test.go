package songfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tightknit/bandsync/model"
)

func TestEncodeLoadRoundTrip(t *testing.T) {
	original := Demo()
	loaded, err := Load(Encode(original))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(original.Tempo, loaded.Tempo)
	assert.Equal(original.BeatsPerBar, loaded.BeatsPerBar)
	assert.Equal(len(original.Sections), len(loaded.Sections))
	for i := range original.Sections {
		assert.Equal(original.Sections[i].Bars, loaded.Sections[i].Bars)
		assert.Equal(original.Sections[i].Payloads, loaded.Sections[i].Payloads)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Encode(Demo()), Encode(Demo()))
}

func TestLoadRejectsBadMagic(t *testing.T) {
	data := Encode(Demo())
	data[0] = 'X'

	_, err := Load(data)
	assert := assert.New(t)
	assert.ErrorIs(err, ErrBadMagic)
	assert.True(IsFormatError(err))
}

func TestLoadRejectsBadVersion(t *testing.T) {
	data := Encode(Demo())
	data[4] = 99

	_, err := Load(data)
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestLoadRejectsTruncatedHeader(t *testing.T) {
	_, err := Load([]byte{'L', 'B'})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestLoadRejectsPayloadPastEnd(t *testing.T) {
	data := Encode(Demo())
	// chop the payload area so a declared range runs off the buffer
	_, err := Load(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestLoadSkipsUnknownRoles(t *testing.T) {
	song := model.Song{
		Tempo:       100,
		BeatsPerBar: 4,
		Sections: []model.Section{
			{Bars: 2, Payloads: map[model.RoleID][]byte{
				model.RolePitch: {0, 0, 60, 1, 100},
			}},
		},
	}
	data := Encode(song)

	// rewrite the single role table entry's id to a future role
	// header is 10 bytes, section entry is bars (2) + role count (1)
	data[13] = 200

	loaded, err := Load(data)
	assert := assert.New(t)
	assert.NoError(err)
	assert.Empty(loaded.Sections[0].Payloads)
}

func TestDefaultIsOneSilentSection(t *testing.T) {
	song := Default()

	assert := assert.New(t)
	assert.Equal(1, len(song.Sections))
	assert.Empty(song.Sections[0].Payloads)
	assert.NotZero(song.Tempo)
	assert.NotZero(song.BeatsPerBar)
}

func TestDemoHasAllStoredRoles(t *testing.T) {
	song := Demo()

	assert := assert.New(t)
	assert.NotNil(song.Sections[0].Payload(model.RolePitch))
	assert.NotNil(song.Sections[0].Payload(model.RolePattern))
	assert.NotNil(song.Sections[0].Payload(model.RoleChords))
	assert.Nil(song.Sections[0].Payload(model.RoleArp))
}
