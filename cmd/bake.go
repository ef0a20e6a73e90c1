package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tightknit/bandsync/constants"
	"github.com/tightknit/bandsync/model"
	"github.com/tightknit/bandsync/role"
	"github.com/tightknit/bandsync/songfile"
	"gitlab.com/gomidi/midi/v2/smf"
)

var fromMidi string

func init() {
	bakeCmd.Flags().StringVar(&fromMidi, "from-midi", "", "bake the pitch role from a MIDI file instead of the bundled demo")
	rootCmd.AddCommand(bakeCmd)
}

var bakeCmd = &cobra.Command{
	Use:   "bake [name]",
	Short: "Bakes a song asset",
	Long:  `Bakes a song asset into the asset dir (the bundled demo, or a MIDI import)`,
	Run: func(cmd *cobra.Command, args []string) {
		name := "demo.bin"
		if len(args) == 1 {
			name = args[0]
		}
		bake(name)
	},
}

func bake(name string) {
	song := songfile.Demo()
	if fromMidi != "" {
		parsed, err := readMidiFile(fromMidi)
		if err != nil {
			panic("Could not read MIDI file: " + err.Error())
		}
		song, err = songFromMidi(parsed)
		if err != nil {
			panic("Could not convert MIDI file: " + err.Error())
		}
	}

	if err := os.MkdirAll(constants.GetAssetDir(), 0777); err != nil {
		panic("Could not create asset dir: " + err.Error())
	}
	path := filepath.Join(constants.GetAssetDir(), name)
	if err := os.WriteFile(path, songfile.Encode(song), 0666); err != nil {
		panic("Write failed for song asset: " + err.Error())
	}
	fmt.Printf("Baked %v: %v sections, %v bpm\n", path, len(song.Sections), song.Tempo)
}

func readMidiFile(path string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// the smf reader panics on some malformed files
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		return &blank, fmt.Errorf("error reading midi file... %w", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, fmt.Errorf("error parsing midi file... %w", err)
	}
	return res, nil
}

// songFromMidi flattens a MIDI file into a single-section pitch payload,
// quantized to beats. Drum and chord roles are left to the bundled demo or
// hand-edited assets.
func songFromMidi(mf *smf.SMF) (model.Song, error) {
	metric, ok := mf.TimeFormat.(smf.MetricTicks)
	if !ok {
		return model.Song{}, fmt.Errorf("unsupported time format %v", mf.TimeFormat)
	}
	ticksPerBeat := int64(metric.Resolution())

	type onNote struct {
		tick int64
		vel  uint8
	}

	var events []model.PitchEvent
	maxBeat := 0
	for _, track := range mf.Tracks {
		var absTicks int64
		pressed := make(map[uint8]onNote)
		for _, event := range track {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteStart(&channel, &key, &velocity):
				pressed[key] = onNote{tick: absTicks, vel: velocity}
			case event.Message.GetNoteEnd(&channel, &key):
				on, ok := pressed[key]
				if !ok {
					continue
				}
				delete(pressed, key)
				beat := int(on.tick / ticksPerBeat)
				duration := int((absTicks - on.tick + ticksPerBeat - 1) / ticksPerBeat)
				if duration < 1 {
					duration = 1
				}
				if duration > 255 {
					duration = 255
				}
				events = append(events, model.PitchEvent{
					Beat:     uint16(beat),
					Pitch:    key,
					Duration: uint8(duration),
					Velocity: on.vel,
				})
				if beat > maxBeat {
					maxBeat = beat
				}
			}
		}
	}
	if len(events) == 0 {
		return model.Song{}, fmt.Errorf("no notes found")
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Beat != events[j].Beat {
			return events[i].Beat < events[j].Beat
		}
		return events[i].Pitch < events[j].Pitch
	})

	bars := uint16(maxBeat/constants.DefaultBeatsPerBar + 1)
	return model.Song{
		Tempo:       constants.DefaultTempo,
		BeatsPerBar: constants.DefaultBeatsPerBar,
		Sections: []model.Section{
			{
				Bars: bars,
				Payloads: map[model.RoleID][]byte{
					model.RolePitch: role.EncodePitch(events),
				},
			},
		},
	}, nil
}
