package model

import (
	"fmt"
	"strings"
)

// LineKind identifies which variant a Line holds.
type LineKind int

const (
	// LineBlank is an empty separator line with no payload.
	LineBlank LineKind = iota

	// LineLyric is a plain text line. Its text is kept verbatim.
	LineLyric

	// LineChords is a chord-only line.
	LineChords

	// LineCombined is a chord line merged with the lyric line directly below it.
	LineCombined
)

var lineKindNames = [...]string{
	LineBlank:    "blank",
	LineLyric:    "lyric",
	LineChords:   "chords",
	LineCombined: "combined",
}

// String returns the lower-case name used in JSON output.
func (k LineKind) String() string {
	if k < 0 || int(k) >= len(lineKindNames) {
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
	return lineKindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k LineKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(lineKindNames) {
		return nil, fmt.Errorf("unknown line kind %d", int(k))
	}
	return []byte(lineKindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *LineKind) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range lineKindNames {
		if n == name {
			*k = LineKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown line kind %q", text)
}

// ChordToken is a chord symbol and the column it starts at in its source line.
//
// Column is a zero-based character index in the original line, so writing
// Column spaces followed by Symbol puts the chord back where it was in a
// fixed-width rendering.
type ChordToken struct {
	Symbol string `json:"symbol"`
	Column int    `json:"column"`
}

// Line is one reconstructed line of a tab.
//
// Which fields are set depends on Kind:
//   - LineBlank: none
//   - LineLyric: Lyric
//   - LineChords: Chords
//   - LineCombined: Chords and Lyric
//
// Chord columns of a combined line come from the chord line and may run past
// the end of the lyric.
type Line struct {
	Kind   LineKind     `json:"type"`
	Chords []ChordToken `json:"chords,omitempty"`
	Lyric  string       `json:"lyric,omitempty"`
}

// Blank returns a blank line.
func Blank() Line {
	return Line{Kind: LineBlank}
}

// Lyric returns a lyric line holding text.
func Lyric(text string) Line {
	return Line{Kind: LineLyric, Lyric: text}
}

// ChordRun returns a chord-only line.
func ChordRun(chords []ChordToken) Line {
	return Line{Kind: LineChords, Chords: chords}
}

// Combined returns a chord line paired with the lyric it annotates.
func Combined(chords []ChordToken, lyric string) Line {
	return Line{Kind: LineCombined, Chords: chords, Lyric: lyric}
}

// IsBlank reports whether the line carries no content.
func (l Line) IsBlank() bool {
	switch l.Kind {
	case LineChords:
		return len(l.Chords) == 0
	case LineLyric:
		return strings.TrimSpace(l.Lyric) == ""
	case LineCombined:
		return len(l.Chords) == 0 && strings.TrimSpace(l.Lyric) == ""
	default:
		return true
	}
}
