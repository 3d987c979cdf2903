package tab

import (
	"strings"

	"github.com/handiism/ultimate-tab/internal/model"
)

// Assembly holds the presentation shapes built from a line sequence.
type Assembly struct {
	// Structured is the line sequence with blank runs collapsed.
	Structured []model.Line

	// DualTrack splits every line into a lyric and a chord track.
	DualTrack model.DualTrack

	// Combined pairs every line's rendered chords with its lyric.
	Combined []model.AlignedPair
}

// Assemble builds every output shape from lines.
//
// Each shape is cleaned the same way: runs of blank entries collapse to a
// single blank, and blank entries at the start and end are dropped. An entry
// is blank when all of its fields are empty or whitespace.
//
// Assemble does not modify lines and keeps no state between calls.
func Assemble(lines []model.Line) Assembly {
	structured := compact(lines, model.Line.IsBlank)

	pairs := make([]model.AlignedPair, 0, len(lines))
	for _, l := range lines {
		pairs = append(pairs, pairFor(l))
	}
	pairs = compact(pairs, pairIsBlank)

	// Both tracks derive from the same pairs, so they stay the same length.
	dual := model.DualTrack{
		Lyrics: make([]string, len(pairs)),
		Tabs:   make([]string, len(pairs)),
	}
	for i, p := range pairs {
		dual.Lyrics[i] = p.Lyric
		dual.Tabs[i] = p.Chords
	}

	return Assembly{
		Structured: structured,
		DualTrack:  dual,
		Combined:   pairs,
	}
}

func pairFor(l model.Line) model.AlignedPair {
	switch l.Kind {
	case model.LineLyric:
		return model.AlignedPair{Lyric: l.Lyric}
	case model.LineChords:
		return model.AlignedPair{Chords: RenderChords(l.Chords)}
	case model.LineCombined:
		return model.AlignedPair{Lyric: l.Lyric, Chords: RenderChords(l.Chords)}
	default:
		return model.AlignedPair{}
	}
}

func pairIsBlank(p model.AlignedPair) bool {
	return isBlankText(p.Lyric) && isBlankText(p.Chords)
}

func isBlankText(s string) bool {
	return strings.TrimSpace(s) == ""
}

// compact collapses runs of blank items to one and strips leading and
// trailing blanks. It always returns a new slice.
func compact[T any](items []T, blank func(T) bool) []T {
	out := make([]T, 0, len(items))
	prevBlank := true // drops leading blanks
	for _, it := range items {
		b := blank(it)
		if b && prevBlank {
			continue
		}
		out = append(out, it)
		prevBlank = b
	}
	for len(out) > 0 && blank(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}
