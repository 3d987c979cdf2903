package ioutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/handiism/ultimate-tab/internal/model"
)

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots   = regexp.MustCompile(`\.+$`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing. The write is skipped if ctx is
// already done.
//
// Example:
//
//	err := WriteFile(ctx, "/tabs/Ed Sheeran - Perfect.txt", []byte(sheet))
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Leading and trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")     // Returns "Song_ Part 1_2"
//	SanitizeFileName("Track...")           // Returns "Track"
//	SanitizeFileName("Name   with  spaces") // Returns "Name with spaces"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = whitespaceRuns.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// TabFileName returns "<artist> - <title>.<ext>" for a tab, sanitized.
//
// Example:
//
//	TabFileName(meta, "txt") // "Ed Sheeran - Perfect.txt"
func TabFileName(meta model.Metadata, ext string) string {
	name := SanitizeFileName(fmt.Sprintf("%s - %s", meta.Artist, meta.Title))
	if name == "" {
		name = model.Unknown
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

// SaveTab writes data to TabFileName(meta, ext) inside dir, creating dir
// if needed, and returns the written path.
func SaveTab(ctx context.Context, dir string, meta model.Metadata, ext string, data []byte) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, TabFileName(meta, ext))
	if err := WriteFile(ctx, path, data); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
