// Package ioutils provides file system utilities for saving tabs.
//
// This package contains functions for:
//   - File writing
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//
// # Saving a tab
//
//	path, err := ioutils.SaveTab(ctx, "./tabs", res.Metadata, "txt", []byte(sheet))
//	// Writes ./tabs/Ed Sheeran - Perfect.txt
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
package ioutils
