package audio

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/handiism/ultimate-tab/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the tab page.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify

	// TagFillEmpty sets the tag only if the file has no value for it yet.
	TagFillEmpty
)

// lyricsDescriptor marks the USLT frame written by the Tagger so that
// re-tagging replaces it instead of adding a second copy.
const lyricsDescriptor = "Chords"

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    Artist:     TagFillEmpty,   // Keep the artist if the file has one
//	    TrackTitle: TagFillEmpty,
//	    Lyrics:     TagModify,      // Always write the chord sheet
//	    Comments:   TagDoNotModify,
//	}
type TagConfig struct {
	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Lyrics controls the USLT (Unsynchronized lyrics) frame holding the
	// chord sheet.
	Lyrics TagEditAction

	// Comments controls a COMM frame with capo, key and tuning.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// Artist and title are only filled in when missing, the chord sheet is
// always written and the playing notes go into a comment.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Artist:     TagFillEmpty,
		TrackTitle: TagFillEmpty,
		Lyrics:     TagModify,
		Comments:   TagModify,
	}
}

// Tagger writes a chord sheet and song details into an MP3's ID3 tag.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.SaveTags("song.mp3", res.Metadata, tab.Sheet(res.Combined))
//	if err != nil {
//	    log.Printf("Failed to tag song.mp3: %v", err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes the tab metadata and sheet into the MP3 at path.
//
// The file must exist. A file without an ID3 tag gets a new one.
func (t *Tagger) SaveTags(path string, meta model.Metadata, sheet string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer tag.Close()

	t.updateStringTags(tag, meta)
	t.updateLyrics(tag, sheet)
	t.updateComments(tag, meta)

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tag %s: %w", path, err)
	}
	return nil
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, meta model.Metadata) {
	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		setKnown(tag.SetArtist, meta.Artist)
	case TagFillEmpty:
		if tag.Artist() == "" {
			setKnown(tag.SetArtist, meta.Artist)
		}
	}

	// Track Title (TIT2)
	switch t.config.TrackTitle {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		setKnown(tag.SetTitle, meta.Title)
	case TagFillEmpty:
		if tag.Title() == "" {
			setKnown(tag.SetTitle, meta.Title)
		}
	}
}

// updateLyrics writes the sheet as a USLT frame, replacing any frame
// previously written by the Tagger.
func (t *Tagger) updateLyrics(tag *id3v2.Tag, sheet string) {
	id := tag.CommonID("Unsynchronised lyrics/text transcription")

	switch t.config.Lyrics {
	case TagEmpty:
		tag.DeleteFrames(id)
	case TagModify, TagFillEmpty:
		existing := lyricsFrames(tag)
		if t.config.Lyrics == TagFillEmpty && len(existing) > 0 {
			return
		}
		if strings.TrimSpace(sheet) == "" {
			return
		}

		// Keep lyrics frames from other sources.
		tag.DeleteFrames(id)
		for _, f := range existing {
			if f.ContentDescriptor != lyricsDescriptor {
				tag.AddUnsynchronisedLyricsFrame(f)
			}
		}
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding:          id3v2.EncodingUTF8,
			Language:          "eng",
			ContentDescriptor: lyricsDescriptor,
			Lyrics:            sheet,
		})
	}
}

func (t *Tagger) updateComments(tag *id3v2.Tag, meta model.Metadata) {
	id := tag.CommonID("Comments")

	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(id)
	case TagModify, TagFillEmpty:
		existing := commentFrames(tag)
		if t.config.Comments == TagFillEmpty && len(existing) > 0 {
			return
		}
		text := PlayingNotes(meta)
		if text == "" {
			return
		}

		// Keep comments from other sources.
		tag.DeleteFrames(id)
		for _, f := range existing {
			if f.Description != lyricsDescriptor {
				tag.AddCommentFrame(f)
			}
		}
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: lyricsDescriptor,
			Text:        text,
		})
	}
}

// PlayingNotes summarises key, capo and tuning, e.g.
// "Key: G; Capo: 2; Tuning: E A D G B E". Missing fields are left out.
func PlayingNotes(meta model.Metadata) string {
	var parts []string
	if meta.Key != "" {
		parts = append(parts, "Key: "+meta.Key)
	}
	if meta.Capo != "" {
		parts = append(parts, "Capo: "+meta.Capo)
	}
	if meta.Tuning != "" {
		parts = append(parts, "Tuning: "+meta.Tuning)
	}
	return strings.Join(parts, "; ")
}

func lyricsFrames(tag *id3v2.Tag) []id3v2.UnsynchronisedLyricsFrame {
	var frames []id3v2.UnsynchronisedLyricsFrame
	for _, f := range tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription")) {
		if uslf, ok := f.(id3v2.UnsynchronisedLyricsFrame); ok {
			frames = append(frames, uslf)
		}
	}
	return frames
}

func commentFrames(tag *id3v2.Tag) []id3v2.CommentFrame {
	var frames []id3v2.CommentFrame
	for _, f := range tag.GetFrames(tag.CommonID("Comments")) {
		if cf, ok := f.(id3v2.CommentFrame); ok {
			frames = append(frames, cf)
		}
	}
	return frames
}

func setKnown(set func(string), value string) {
	if value != "" && value != model.Unknown {
		set(value)
	}
}
