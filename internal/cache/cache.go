// Package cache provides disk-based caching of library scan results, so
// repeated runs against a large music directory skip the full walk.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/glebovdev/localfm-cli/internal/library"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultExpiry is how long a cached scan is considered fresh.
	DefaultExpiry = 24 * time.Hour
	// ScanSubdir is the subdirectory for cached scan results.
	ScanSubdir = "library"
	// AppName is used for the cache directory name.
	AppName = "localfm"
)

// Cache manages cached scan results, one file per scanned root.
type Cache struct {
	baseDir string
	expiry  time.Duration
}

type scanRecord struct {
	Root       string          `yaml:"root"`
	Extensions []string        `yaml:"extensions"`
	ScannedAt  time.Time       `yaml:"scanned_at"`
	Tracks     []library.Track `yaml:"tracks"`
}

// NewCache creates a new Cache instance with the default expiry.
func NewCache() (*Cache, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return nil, err
	}

	return &Cache{
		baseDir: cacheDir,
		expiry:  DefaultExpiry,
	}, nil
}

// GetCacheDir returns the platform-specific cache directory for the application.
func GetCacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}

	cacheDir := filepath.Join(userCacheDir, AppName)
	return cacheDir, nil
}

func (c *Cache) ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func hashRoot(root string) string {
	hash := md5.Sum([]byte(root))
	return hex.EncodeToString(hash[:])
}

func (c *Cache) scanPath(root string) string {
	return filepath.Join(c.baseDir, ScanSubdir, hashRoot(root)+".yml")
}

// normalizeExts lowercases, dot-prefixes and sorts an extension list so two
// filters compare equal regardless of spelling or order.
func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func sameExts(a, b []string) bool {
	a, b = normalizeExts(a), normalizeExts(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GetTracks retrieves a cached scan for root. Returns nil if missing, stale,
// unreadable, or scanned with a different extension filter.
func (c *Cache) GetTracks(root string, exts []string) []library.Track {
	path := c.scanPath(root)

	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	if time.Since(info.ModTime()) > c.expiry {
		if err := os.Remove(path); err != nil {
			log.Debug().Err(err).Str("file", path).Msg("Failed to remove expired cache file")
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var record scanRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		log.Debug().Err(err).Str("file", path).Msg("Failed to decode cached scan")
		return nil
	}

	if record.Root != root || len(record.Tracks) == 0 {
		return nil
	}

	if !sameExts(record.Extensions, exts) {
		log.Debug().Str("root", root).Msg("Cached scan used a different extension filter")
		return nil
	}

	log.Debug().Int("count", len(record.Tracks)).Str("root", root).Msg("Library scan loaded from cache")
	return record.Tracks
}

// SaveTracks stores a scan result, keyed by the scanned root and the
// extension filter it was produced with.
func (c *Cache) SaveTracks(root string, exts []string, tracks []library.Track) error {
	scanDir := filepath.Join(c.baseDir, ScanSubdir)

	if err := c.ensureDir(scanDir); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	record := scanRecord{
		Root:       root,
		Extensions: normalizeExts(exts),
		ScannedAt:  time.Now(),
		Tracks:     tracks,
	}

	data, err := yaml.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to encode scan record: %w", err)
	}

	if err := os.WriteFile(c.scanPath(root), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// CleanExpired removes cache files older than the expiry duration.
func (c *Cache) CleanExpired() error {
	scanDir := filepath.Join(c.baseDir, ScanSubdir)

	entries, err := os.ReadDir(scanDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	now := time.Now()
	var removed, failed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Debug().Err(err).Str("file", entry.Name()).Msg("Failed to get file info")
			continue
		}

		if now.Sub(info.ModTime()) > c.expiry {
			filePath := filepath.Join(scanDir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				log.Debug().Err(err).Str("file", filePath).Msg("Failed to remove expired cache file")
				failed++
			} else {
				removed++
			}
		}
	}

	if removed > 0 || failed > 0 {
		log.Debug().Int("removed", removed).Int("failed", failed).Msg("Cache cleanup completed")
	}

	return nil
}
