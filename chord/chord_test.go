package chord

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPitchesForCMajor(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]uint8{60, 64, 67}, Pitches(Symbol(0, Maj)))
}

func TestPitchesAreFoldedIntoPlayableRange(t *testing.T) {
	for symbol := uint8(1); Valid(symbol); symbol++ {
		for _, note := range Pitches(symbol) {
			if note < minNote || note > maxNote {
				t.Errorf("%v: note %v outside playable range", Name(symbol), note)
			}
		}
	}
}

func TestPitchesSortedAscending(t *testing.T) {
	notes := Pitches(Symbol(11, Dom7)) // B7 forces folding
	for i := 1; i < len(notes); i++ {
		if notes[i-1] > notes[i] {
			t.Errorf("notes not sorted: %v", notes)
		}
	}
}

func TestNoneHasNoPitches(t *testing.T) {
	assert := assert.New(t)
	assert.Nil(Pitches(None))
	assert.False(Valid(None))
}

func TestNameParseNameRoundTrip(t *testing.T) {
	for root := uint8(0); root < 12; root++ {
		for _, q := range []Quality{Maj, Min, Dom7} {
			symbol := Symbol(root, q)
			name := Name(symbol)
			t.Run(fmt.Sprintf("round trip %v", name), func(t *testing.T) {
				parsed, err := ParseName(name)
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(symbol, parsed)
			})
		}
	}
}

func TestParseNameRejectsGarbage(t *testing.T) {
	assert := assert.New(t)
	_, err := ParseName("Hmaj")
	assert.Error(err)
}

func TestVoicingKeepsRootFirst(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]uint8{60, 64, 67}, Voicing(Symbol(0, Maj)))
	assert.Equal(uint8(69), Voicing(Symbol(9, Min))[0])
}

func TestCreateChordKey(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("60-64-67", CreateChordKey([]uint8{67, 60, 64}))
}
