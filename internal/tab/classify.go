package tab

import (
	"regexp"
	"strings"
	"unicode"
)

// LineClass is the outcome of classifying a single line.
type LineClass int

const (
	// ClassBlank is a line with no visible characters.
	ClassBlank LineClass = iota

	// ClassLyric is any non-blank line that is not a chord line.
	ClassLyric

	// ClassChord is a line made up mostly of chord symbols.
	ClassChord
)

func (c LineClass) String() string {
	switch c {
	case ClassBlank:
		return "blank"
	case ClassChord:
		return "chord"
	default:
		return "lyric"
	}
}

const (
	// minWordRatio is the share of words that must look like chords.
	minWordRatio = 0.70

	// minDensityRatio is the number of chord-like words per visible
	// character. It catches short chord runs padded with lots of spacing.
	minDensityRatio = 0.60
)

// chordShape matches the start of a chord symbol: root, optional accidental,
// optional quality. Longer qualities come first so they win over "m".
var chordShape = regexp.MustCompile(`^[A-G][#b]?(?:maj7|maj|min|m7|m|dim|aug|sus2|sus4|add\d+|13|11|7|6|9)?`)

// Classify decides whether line is blank, a chord line or a lyric line.
//
// It is a heuristic: a line is a chord line when at least 70% of its words
// start like a chord, or when chord-like words make up at least 0.6 per
// visible character. Short lyric lines such as "Am I" can be misread as
// chords; that is accepted.
func Classify(line string) LineClass {
	words := strings.Fields(line)
	if len(words) == 0 {
		return ClassBlank
	}

	matches := 0
	for _, w := range words {
		if chordShape.MatchString(w) {
			matches++
		}
	}

	visible := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			visible++
		}
	}

	wordRatio := float64(matches) / float64(len(words))
	densityRatio := float64(matches) / float64(visible)
	if wordRatio >= minWordRatio || densityRatio >= minDensityRatio {
		return ClassChord
	}
	return ClassLyric
}

// IsChordLine reports whether Classify(line) is ClassChord.
func IsChordLine(line string) bool {
	return Classify(line) == ClassChord
}
