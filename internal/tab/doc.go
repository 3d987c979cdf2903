// Package tab reconstructs chord and lyric lines from the plain text of a
// tab page.
//
// The pipeline has four steps, each usable on its own:
//
//  1. Classify decides whether a line is blank, a chord line or a lyric line.
//  2. Tokenize extracts chord symbols from a chord line with their columns.
//  3. Reconstruct walks raw lines, drops noise such as "[Chorus]" or
//     "Capo: 3", and pairs chord lines with the lyric line below them.
//  4. Assemble builds the structured, dual-track and combined shapes and
//     collapses redundant blank lines.
//
// # Example
//
//	raw := []string{"G   D", "I found a love", "", "Em", "for me somebody"}
//	lines := tab.Reconstruct(raw)
//	out := tab.Assemble(lines)
//	fmt.Print(tab.Sheet(out.Combined))
//	// G   D
//	// I found a love
//	//
//	// Em
//	// for me somebody
//
// # Alignment
//
// Chord columns are character indexes in the original line. RenderChords puts
// every symbol back at its column, so chords stay above the syllable they were
// written over when shown in a fixed-width font.
//
// All functions are pure and safe for concurrent use.
package tab
