package constants

import "os"

func GetAssetDir() string {
	path := os.Getenv("ASSET_PATH")
	if path != "" {
		return path
	}
	return "./assets"
}

func GetMetadataEndpoint() string {
	endpoint := os.Getenv("METADATA_ENDPOINT")
	if endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

// Song asset format: 4-byte magic, 1-byte version.
const SongMagic = "LBND"
const SongVersion = 1

// Fixed sync frame: 1 type byte + 11-byte record + 4-byte origin tag.
const SyncFrameSize = 16

// Subdivisions per beat used by the pattern hit masks and the arp stepper.
const PatternSubdiv = 4
const ArpSubdiv = 2

// Consecutive locally interpolated beats a follower tolerates before
// reporting sync loss. Conservative; overridable from config.
const DefaultSyncTolerance = 8

const DefaultSyncPort = 7331
const DefaultTempo = 120
const DefaultBeatsPerBar = 4

// DefaultVelocity is the velocity used for generated notes that carry no
// explicit intensity (arp steps, chord strikes).
const DefaultVelocity = 100
