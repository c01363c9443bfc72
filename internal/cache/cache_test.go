package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"grammarcheck/internal/problem"
	"grammarcheck/internal/textutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

var sample = []problem.Match{{
	Offset:       10,
	Length:       4,
	Category:     "Possible Typo",
	Message:      "Did you mean...",
	Replacements: []string{"fix"},
	RuleID:       "MORFOLOGIK_RULE_EN_US",
	URLs:         []string{"https://example.org/typo"},
}}

func TestResponseCache_Memory(t *testing.T) {
	c := NewResponseCache("")
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", sample))
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, sample, got)
	assert.Equal(t, 1, c.Len())
}

func TestResponseCache_DiskSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	key := textutil.Hash("server", "en-US", "text")

	require.NoError(t, NewResponseCache(dir).Set(ctx, key, sample))

	fresh := NewResponseCache(dir)
	got, ok := fresh.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, sample, got)
	assert.Equal(t, 1, fresh.Len())
}

func TestResponseCache_SchemaMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	key := textutil.Hash("old")

	data, err := msgpack.Marshal(diskEntry{Schema: diskSchemaVersion + 1, Key: key, Matches: sample})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".msgpack"), data, 0644))

	_, ok := NewResponseCache(dir).Get(context.Background(), key)
	assert.False(t, ok)
}

func TestResponseCache_CorruptIsMiss(t *testing.T) {
	dir := t.TempDir()
	key := textutil.Hash("corrupt")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".msgpack"), []byte{0xc1}, 0644))

	_, ok := NewResponseCache(dir).Get(context.Background(), key)
	assert.False(t, ok)
}
