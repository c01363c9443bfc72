package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"grammarcheck/internal/problem"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when diskEntry changes.
const diskSchemaVersion uint16 = 1

type diskEntry struct {
	Schema  uint16
	Key     string
	Matches []problem.Match
}

// ResponseCache provides in-memory + on-disk caching of decoded check
// responses, keyed by a request hash.
type ResponseCache struct {
	mu     sync.RWMutex
	memory map[string][]problem.Match // request hash → matches
	dir    string
}

// NewResponseCache creates a cache. An empty dir keeps entries in memory only.
func NewResponseCache(dir string) *ResponseCache {
	return &ResponseCache{
		memory: make(map[string][]problem.Match),
		dir:    dir,
	}
}

// Get retrieves cached matches. Returns nil and false if not found.
func (c *ResponseCache) Get(_ context.Context, key string) ([]problem.Match, bool) {
	// Check in-memory cache first.
	c.mu.RLock()
	if v, ok := c.memory[key]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.dir == "" {
		return nil, false
	}

	matches, err := c.readDisk(key)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Debug().Err(err).Str("key", key[:min(12, len(key))]).Msg("Ignoring unreadable cache entry")
		}
		return nil, false
	}

	// Populate in-memory cache.
	c.mu.Lock()
	c.memory[key] = matches
	c.mu.Unlock()

	return matches, true
}

// Set stores matches in memory and, when configured, on disk.
func (c *ResponseCache) Set(_ context.Context, key string, matches []problem.Match) error {
	c.mu.Lock()
	c.memory[key] = matches
	c.mu.Unlock()

	if c.dir == "" {
		return nil
	}
	if err := c.writeDisk(key, matches); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Len returns the number of entries held in memory.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}

func (c *ResponseCache) path(key string) string {
	return filepath.Join(c.dir, key+".msgpack")
}

func (c *ResponseCache) writeDisk(key string, matches []problem.Match) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := msgpack.NewEncoder(tmp)
	if err := enc.Encode(diskEntry{Schema: diskSchemaVersion, Key: key, Matches: matches}); err != nil {
		tmp.Close()
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close entry: %w", err)
	}
	return os.Rename(tmp.Name(), c.path(key))
}

func (c *ResponseCache) readDisk(key string) ([]problem.Match, error) {
	f, err := os.Open(c.path(key))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entry diskEntry
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&entry); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	if entry.Schema != diskSchemaVersion {
		return nil, fmt.Errorf("schema %d, want %d", entry.Schema, diskSchemaVersion)
	}
	if entry.Key != key {
		return nil, fmt.Errorf("entry key mismatch")
	}
	return entry.Matches, nil
}
