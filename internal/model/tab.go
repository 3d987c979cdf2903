package model

// Unknown is the value used for title, artist and author when a page
// does not expose them.
const Unknown = "UNKNOWN"

// Metadata holds the song information of a tab page.
//
// Title, Artist and Author are always set, falling back to Unknown.
// The optional fields are empty when the page does not show them.
type Metadata struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Author     string `json:"author"`
	Difficulty string `json:"difficulty,omitempty"`
	Key        string `json:"key,omitempty"`
	Capo       string `json:"capo,omitempty"`
	Tuning     string `json:"tuning,omitempty"`
}

// NewMetadata returns Metadata with the required fields set to Unknown.
func NewMetadata() Metadata {
	return Metadata{
		Title:  Unknown,
		Artist: Unknown,
		Author: Unknown,
	}
}

// Tab is a parsed tab page: its metadata and reconstructed lines.
//
// A Tab is built once per parse and not modified afterwards.
type Tab struct {
	Metadata Metadata `json:"metadata"`
	Lines    []Line   `json:"lines"`
}

// HasContent reports whether at least one line is not blank.
func (t *Tab) HasContent() bool {
	for _, l := range t.Lines {
		if !l.IsBlank() {
			return true
		}
	}
	return false
}

// DualTrack holds two parallel tracks with one entry per line.
// Lyrics[i] and Tabs[i] describe the same line.
type DualTrack struct {
	Lyrics []string `json:"lyrics"`
	Tabs   []string `json:"tabs"`
}

// AlignedPair is one line of a chord sheet: a rendered chord line and
// the lyric below it. Either field may be empty.
type AlignedPair struct {
	Lyric  string `json:"lyric"`
	Chords string `json:"chords"`
}

// Result is what a successful acquisition returns.
type Result struct {
	// URL is the page the tab was read from.
	URL string `json:"url"`

	Metadata  Metadata      `json:"metadata"`
	Lines     []Line        `json:"lines"`
	DualTrack DualTrack     `json:"dual_track"`
	Combined  []AlignedPair `json:"combined"`

	// Attempts lists the acquisition attempts made, the last one
	// being the successful one.
	Attempts []Attempt `json:"attempts,omitempty"`
}
