package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists the prose formats discovered inside directories.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".tex":      true,
	".rst":      true,
}

// Walker finds checkable text files.
type Walker struct {
	// Exclude holds glob patterns matched against slash-separated paths
	// relative to the walked root.
	Exclude []string
}

// NewWalker creates a Walker skipping paths that match exclude.
func NewWalker(exclude ...string) *Walker {
	return &Walker{Exclude: exclude}
}

// FileEntry represents a discovered file ready for checking.
type FileEntry struct {
	Path string
	Ext  string
}

// Collect resolves command-line arguments to files. Directories are walked,
// glob patterns (including **) are expanded, and plain files are taken as
// given whatever their extension. The result is sorted and free of
// duplicates.
func (w *Walker) Collect(args []string) ([]FileEntry, error) {
	seen := make(map[string]bool)
	var entries []FileEntry
	add := func(found []FileEntry) {
		for _, e := range found {
			if !seen[e.Path] {
				seen[e.Path] = true
				entries = append(entries, e)
			}
		}
	}

	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[{") {
			matches, err := zglob.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("expand %s: %w", arg, err)
			}
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && !info.IsDir() {
					add([]FileEntry{newEntry(m)})
				}
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add([]FileEntry{newEntry(arg)})
			continue
		}
		found, err := w.Walk(arg)
		if err != nil {
			return nil, err
		}
		add(found)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Walk discovers all supported files under the given root directory.
// Hidden directories are skipped.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if path != root && w.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !SupportedExtensions[ext] || w.excluded(rel) {
			return nil
		}
		entries = append(entries, FileEntry{Path: path, Ext: ext})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}

func (w *Walker) excluded(rel string) bool {
	for _, pattern := range w.Exclude {
		ok, err := zglob.Match(pattern, rel)
		if err != nil {
			log.Warn().Err(err).Str("pattern", pattern).Msg("Invalid exclude pattern")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

func newEntry(path string) FileEntry {
	return FileEntry{Path: path, Ext: strings.ToLower(filepath.Ext(path))}
}
