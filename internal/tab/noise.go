package tab

import "strings"

// noiseLabels are section and info labels that some pages put inline with
// the tab text. Lines starting with them are dropped.
var noiseLabels = []string{
	"capo",
	"tuning",
	"key:",
	"difficulty:",
	"author:",
	"transpose:",
	"chords:",
	"intro",
	"verse",
	"chorus",
	"bridge",
	"outro",
}

// IsNoise reports whether line is a structural annotation such as
// "[Chorus]" or "Capo: 3" rather than tab content.
func IsNoise(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
		return true
	}
	lower := strings.ToLower(t)
	for _, label := range noiseLabels {
		if strings.HasPrefix(lower, label) {
			return true
		}
	}
	return false
}
