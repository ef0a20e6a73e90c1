package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tightknit/bandsync/chord"
	"github.com/tightknit/bandsync/db"
	"github.com/tightknit/bandsync/model"
	"github.com/tightknit/bandsync/role"
	"github.com/tightknit/bandsync/songfile"
	"github.com/tightknit/bandsync/util"
)

var withMetadata bool

func init() {
	inspectCmd.Flags().BoolVar(&withMetadata, "metadata", false, "also look up the asset's sidecar metadata")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspects a song asset",
	Long:  `Inspects a song asset`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	song, err := songfile.Load(util.ReadFileOrPanic(path))
	if err != nil {
		panic("Could not load song asset: " + err.Error())
	}

	fmt.Printf("tempo: %v bpm, %v beats/bar, %v sections\n", song.Tempo, song.BeatsPerBar, len(song.Sections))
	for i, section := range song.Sections {
		fmt.Printf("section %v: %v bars (%v beats)\n", i, section.Bars, section.TotalBeats(song.BeatsPerBar))
		for _, id := range util.GetKeysSorted(section.Payloads) {
			describePayload(id, section.Payloads[id])
		}
	}

	if withMetadata {
		name := filepath.Base(path)
		metadatas := db.GetSongMetadatas([]string{name})
		if m, ok := metadatas[name]; ok {
			fmt.Printf("metadata: %v - %v (%v, from %v)\n", m.Artist, m.Title, m.Year, m.Source)
		} else {
			fmt.Printf("metadata: none for %v\n", name)
		}
	}
}

func describePayload(id model.RoleID, payload []byte) {
	switch id {
	case model.RolePitch:
		events, err := role.DecodePitch(payload)
		if err != nil {
			fmt.Printf("  %v: %v\n", id, err)
			return
		}
		fmt.Printf("  %v: %v events\n", id, len(events))
	case model.RolePattern:
		voices, err := role.DecodePattern(payload)
		if err != nil {
			fmt.Printf("  %v: %v\n", id, err)
			return
		}
		for _, v := range voices {
			fmt.Printf("  %v: voice %v over %v beats\n", id, v.Note, len(v.Steps))
		}
	case model.RoleChords:
		spans, err := role.DecodeChords(payload)
		if err != nil {
			fmt.Printf("  %v: %v\n", id, err)
			return
		}
		for _, s := range spans {
			fmt.Printf("  %v: beat %v %v x%v (%v)\n", id, s.Beat, chord.Name(s.Symbol),
				s.Duration, chord.CreateChordKey(chord.Pitches(s.Symbol)))
		}
	default:
		fmt.Printf("  %v: %v bytes\n", id, len(payload))
	}
}
