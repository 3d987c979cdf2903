package tab

import (
	"strings"
	"unicode/utf8"

	"github.com/handiism/ultimate-tab/internal/model"
)

// Tokenize extracts chord tokens from a chord line.
//
// A token is a maximal run of ASCII letters, digits, '#' and '/'. Its column
// is the character index of its first character in line, counted in runes of
// the original string. No harmonic validation is done here.
func Tokenize(line string) []model.ChordToken {
	var tokens []model.ChordToken
	var sb strings.Builder
	start := -1
	col := 0

	flush := func() {
		if start >= 0 {
			tokens = append(tokens, model.ChordToken{Symbol: sb.String(), Column: start})
			sb.Reset()
			start = -1
		}
	}

	for _, r := range line {
		if isTokenRune(r) {
			if start < 0 {
				start = col
			}
			sb.WriteRune(r)
		} else {
			flush()
		}
		col++
	}
	flush()

	return tokens
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '#' || r == '/':
		return true
	}
	return false
}

// RenderChords lays tokens out on one line, padding with spaces so every
// symbol starts at its column. Tokens that would overlap are separated by a
// single space.
func RenderChords(tokens []model.ChordToken) string {
	var sb strings.Builder
	col := 0
	for _, t := range tokens {
		if t.Column > col {
			sb.WriteString(strings.Repeat(" ", t.Column-col))
			col = t.Column
		} else if col > 0 {
			sb.WriteByte(' ')
			col++
		}
		sb.WriteString(t.Symbol)
		col += utf8.RuneCountInString(t.Symbol)
	}
	return sb.String()
}
