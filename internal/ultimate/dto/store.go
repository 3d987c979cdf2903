package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/handiism/ultimate-tab/internal/model"
)

// FlexString accepts a JSON string or number. Ultimate Guitar sends some
// fields, such as capo or difficulty, as either. Any other JSON value
// (null, bool, array, object) decodes to the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (fs *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*fs = ""
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*fs = FlexString(s)
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*fs = FlexString(n.String())
	default:
		*fs = ""
	}
	return nil
}

// JSONStore is the page state embedded in the data-content attribute of
// the js-store element.
type JSONStore struct {
	Store struct {
		Page struct {
			Data JSONPageData `json:"data"`
		} `json:"page"`
	} `json:"store"`
}

// JSONPageData holds the tab description and its rendered view.
//
// Each section is decoded on its own; a section with an unexpected shape
// is left nil instead of failing the whole store.
type JSONPageData struct {
	Tab     *JSONTab     `json:"tab"`
	TabView *JSONTabView `json:"tab_view"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *JSONPageData) UnmarshalJSON(data []byte) error {
	var raw struct {
		Tab     json.RawMessage `json:"tab"`
		TabView json.RawMessage `json:"tab_view"`
	}
	if !isObject(data) || json.Unmarshal(data, &raw) != nil {
		*d = JSONPageData{}
		return nil
	}
	d.Tab = decodeSection[JSONTab](raw.Tab)
	d.TabView = decodeSection[JSONTabView](raw.TabView)
	return nil
}

// JSONTab contains song-level information.
type JSONTab struct {
	SongName     FlexString `json:"song_name"`
	ArtistName   FlexString `json:"artist_name"`
	Username     FlexString `json:"username"`
	TonalityName FlexString `json:"tonality_name"`
	Difficulty   FlexString `json:"difficulty"`
}

// JSONTabView contains the tab text and its meta block.
type JSONTabView struct {
	WikiTab *JSONWikiTab `json:"wiki_tab"`
	Meta    *JSONMeta    `json:"meta"`
}

// UnmarshalJSON implements json.Unmarshaler. The meta block is often sent
// as [] when empty; that, or any other bad shape, leaves Meta nil without
// losing the tab text.
func (v *JSONTabView) UnmarshalJSON(data []byte) error {
	var raw struct {
		WikiTab json.RawMessage `json:"wiki_tab"`
		Meta    json.RawMessage `json:"meta"`
	}
	if !isObject(data) || json.Unmarshal(data, &raw) != nil {
		*v = JSONTabView{}
		return nil
	}
	v.WikiTab = decodeSection[JSONWikiTab](raw.WikiTab)
	v.Meta = decodeSection[JSONMeta](raw.Meta)
	return nil
}

// JSONWikiTab holds the tab text in wiki markup, with chords wrapped in
// [ch]..[/ch] and tab blocks in [tab]..[/tab].
type JSONWikiTab struct {
	Content string `json:"content"`
}

// JSONMeta holds optional details shown above the tab.
type JSONMeta struct {
	Capo       FlexString  `json:"capo"`
	Tonality   FlexString  `json:"tonality"`
	Difficulty FlexString  `json:"difficulty"`
	Tuning     *JSONTuning `json:"tuning"`
}

// UnmarshalJSON implements json.Unmarshaler. A tuning that is not an
// object is ignored.
func (m *JSONMeta) UnmarshalJSON(data []byte) error {
	var raw struct {
		Capo       FlexString      `json:"capo"`
		Tonality   FlexString      `json:"tonality"`
		Difficulty FlexString      `json:"difficulty"`
		Tuning     json.RawMessage `json:"tuning"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = JSONMeta{
		Capo:       raw.Capo,
		Tonality:   raw.Tonality,
		Difficulty: raw.Difficulty,
		Tuning:     decodeSection[JSONTuning](raw.Tuning),
	}
	return nil
}

// JSONTuning is the tuning of the tab.
type JSONTuning struct {
	Name  FlexString `json:"name"`
	Value FlexString `json:"value"`
}

// decodeSection decodes raw into a new T, or returns nil if raw is not a
// JSON object or does not fit T.
func decodeSection[T any](raw json.RawMessage) *T {
	if !isObject(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

var wikiMarkup = strings.NewReplacer(
	"[ch]", "",
	"[/ch]", "",
	"[tab]", "",
	"[/tab]", "",
)

// Content returns the tab text with wiki markup removed.
// The second result is false when the store carries no tab text.
func (s *JSONStore) Content() (string, bool) {
	view := s.Store.Page.Data.TabView
	if view == nil || view.WikiTab == nil || strings.TrimSpace(view.WikiTab.Content) == "" {
		return "", false
	}
	return wikiMarkup.Replace(view.WikiTab.Content), true
}

// FillMetadata copies store values into fields of meta that are still
// missing. Fields already set are left alone.
func (s *JSONStore) FillMetadata(meta *model.Metadata) {
	data := s.Store.Page.Data

	if t := data.Tab; t != nil {
		setIfUnknown(&meta.Title, string(t.SongName))
		setIfUnknown(&meta.Artist, string(t.ArtistName))
		setIfUnknown(&meta.Author, string(t.Username))
		setIfEmpty(&meta.Key, string(t.TonalityName))
		setIfEmpty(&meta.Difficulty, string(t.Difficulty))
	}

	if data.TabView == nil || data.TabView.Meta == nil {
		return
	}
	m := data.TabView.Meta
	setIfEmpty(&meta.Difficulty, string(m.Difficulty))
	setIfEmpty(&meta.Key, string(m.Tonality))
	if capo := strings.TrimSpace(string(m.Capo)); capo != "0" {
		setIfEmpty(&meta.Capo, capo)
	}
	if m.Tuning != nil {
		if m.Tuning.Value != "" {
			setIfEmpty(&meta.Tuning, string(m.Tuning.Value))
		} else {
			setIfEmpty(&meta.Tuning, string(m.Tuning.Name))
		}
	}
}

func setIfUnknown(field *string, value string) {
	value = strings.TrimSpace(value)
	if value != "" && (*field == "" || *field == model.Unknown) {
		*field = value
	}
}

func setIfEmpty(field *string, value string) {
	value = strings.TrimSpace(value)
	if value != "" && *field == "" {
		*field = value
	}
}
