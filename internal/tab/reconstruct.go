package tab

import "github.com/handiism/ultimate-tab/internal/model"

// Reconstruct turns raw text lines into typed lines.
//
// Noise lines are removed first. Then, walking the remaining lines:
//   - a blank line becomes a blank Line
//   - a chord line directly followed by a lyric line is merged with it into a
//     combined Line, consuming both
//   - any other chord line becomes a chord-only Line
//   - a lyric line becomes a lyric Line; if the next line is a chord line a
//     blank Line is inserted after it to separate the sections
//
// Blank lines are all kept; collapsing them is left to Assemble.
func Reconstruct(raw []string) []model.Line {
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if !IsNoise(l) {
			lines = append(lines, l)
		}
	}

	classes := make([]LineClass, len(lines))
	for i, l := range lines {
		classes[i] = Classify(l)
	}

	out := make([]model.Line, 0, len(lines))
	for i := 0; i < len(lines); {
		switch classes[i] {
		case ClassBlank:
			out = append(out, model.Blank())
			i++

		case ClassChord:
			if i+1 < len(lines) && classes[i+1] == ClassLyric {
				out = append(out, model.Combined(Tokenize(lines[i]), lines[i+1]))
				i += 2
				continue
			}
			out = append(out, model.ChordRun(Tokenize(lines[i])))
			i++

		default:
			out = append(out, model.Lyric(lines[i]))
			i++
			if i < len(lines) && classes[i] == ClassChord {
				out = append(out, model.Blank())
			}
		}
	}

	return out
}
