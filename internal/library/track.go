// Package library discovers playable tracks under a directory tree and
// handles the numeric track selection prompt.
package library

import (
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// Track is one playable file found during a library scan. Immutable once
// discovered.
type Track struct {
	Path   string `yaml:"path"`
	Artist string `yaml:"artist,omitempty"`
	Title  string `yaml:"title,omitempty"`
	Album  string `yaml:"album,omitempty"`
	Size   int64  `yaml:"size"`
}

// DisplayName returns "Artist - Title" when tags are available, otherwise the
// file name without its extension.
func (t Track) DisplayName() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	default:
		base := filepath.Base(t.Path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
}

// HumanSize returns the file size formatted for the track listing.
func (t Track) HumanSize() string {
	if t.Size <= 0 {
		return ""
	}
	return humanize.Bytes(uint64(t.Size))
}

// Ext returns the lowercased file extension, including the leading dot.
func (t Track) Ext() string {
	return strings.ToLower(filepath.Ext(t.Path))
}
