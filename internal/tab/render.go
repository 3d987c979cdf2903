package tab

import (
	"strings"

	"github.com/handiism/ultimate-tab/internal/model"
)

// Sheet renders aligned pairs as a plain-text chord sheet, chords above
// lyrics. A blank pair becomes an empty line.
func Sheet(pairs []model.AlignedPair) string {
	return SheetFunc(pairs, nil)
}

// SheetFunc is Sheet with each chord row passed through style, e.g. to
// colour it for a terminal. A nil style leaves rows unchanged.
func SheetFunc(pairs []model.AlignedPair, style func(string) string) string {
	var sb strings.Builder
	for _, p := range pairs {
		if p.Chords == "" && p.Lyric == "" {
			sb.WriteByte('\n')
			continue
		}
		if p.Chords != "" {
			if style != nil {
				sb.WriteString(style(p.Chords))
			} else {
				sb.WriteString(p.Chords)
			}
			sb.WriteByte('\n')
		}
		if p.Lyric != "" {
			sb.WriteString(p.Lyric)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// LyricsText returns the lyric track as text. Rows that only carry chords
// are skipped and blank runs collapse to a single empty line.
func LyricsText(dual model.DualTrack) string {
	return trackText(dual.Lyrics, dual.Tabs)
}

// ChordsText returns the chord track as text, skipping lyric-only rows.
func ChordsText(dual model.DualTrack) string {
	return trackText(dual.Tabs, dual.Lyrics)
}

func trackText(track, other []string) string {
	kept := make([]string, 0, len(track))
	for i, s := range track {
		if isBlankText(s) && i < len(other) && !isBlankText(other[i]) {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(compact(kept, isBlankText), "\n")
}
