package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog/log"
)

// Scan walks the tree rooted at root and returns every regular file whose
// extension is in exts, ordered by path. Tags are read best-effort; a file
// with unreadable tags is still listed under its file name.
func Scan(root string, exts []string) ([]Track, error) {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	var tracks []Track
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectories are skipped, not fatal
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		track := Track{Path: path}
		if info, err := d.Info(); err == nil {
			track.Size = info.Size()
		}
		readTags(&track)

		tracks = append(tracks, track)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Path < tracks[j].Path })

	log.Debug().Int("count", len(tracks)).Str("root", root).Msg("Library scan completed")
	return tracks, nil
}

func readTags(track *Track) {
	f, err := os.Open(track.Path)
	if err != nil {
		log.Debug().Err(err).Str("path", track.Path).Msg("Failed to open file for tag reading")
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		log.Debug().Err(err).Str("path", track.Path).Msg("No readable tags")
		return
	}

	track.Artist = m.Artist()
	track.Title = m.Title()
	track.Album = m.Album()
}
