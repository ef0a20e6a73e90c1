package model

// SongMetadata is the sidecar record kept for a baked song asset (artist,
// source midi, year). Stored outside the asset itself so units never need it.
type SongMetadata struct {
	Title  string
	Artist string
	Source string
	Year   uint
}
