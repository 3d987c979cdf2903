// Package model defines the core data structures used throughout
// ultimate-tab.
//
// # Lines
//
// A tab is reconstructed into a sequence of Line values. Each Line is one of
// four kinds: blank, lyric, chords, or combined (a chord line merged with the
// lyric below it):
//
//	line := model.Combined([]model.ChordToken{{Symbol: "G", Column: 0}}, "I found a love")
//	fmt.Println(line.Kind) // combined
//
// ChordToken.Column keeps the chord's position in its source line, which is
// what lets a renderer put chords back above the right syllable.
//
// # Tab and Result
//
// Tab pairs page Metadata with its lines. Result adds the presentation shapes
// (DualTrack and Combined) and the list of acquisition attempts.
//
// Missing title, artist or author become Unknown:
//
//	meta := model.NewMetadata()
//	fmt.Println(meta.Title) // UNKNOWN
package model
