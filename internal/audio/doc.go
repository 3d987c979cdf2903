// Package audio embeds reconstructed chord sheets into MP3 files.
//
// # ID3 Tagging
//
// Use the Tagger to write a chord sheet into an MP3's unsynchronised
// lyrics (USLT) frame:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags("Perfect.mp3", res.Metadata, tab.Sheet(res.Combined))
//
// The tagger handles:
//   - Artist and title, filled in from the tab page when missing
//   - The chord sheet as lyrics
//   - Key, capo and tuning as a comment
//
// Each field is controlled by a TagEditAction in TagConfig.
package audio
