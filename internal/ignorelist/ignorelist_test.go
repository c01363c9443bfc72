package ignorelist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "user.json"))
	rules, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "user.json")
	fs := NewFileStore(path)
	ctx := context.Background()

	want := []Rule{
		{ID: "EN_A_VS_AN", Description: "Use 'an'"},
		{ID: "WHITESPACE_RULE", Description: "Possible typo: repeated whitespace"},
	}
	require.NoError(t, fs.Save(ctx, want))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ignored"`)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestList_AddRemove(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "user.json"))
	l := New(store)
	require.NoError(t, l.Load(ctx))

	require.NoError(t, l.Add(ctx, Rule{ID: "A", Description: "first"}))
	require.NoError(t, l.Add(ctx, Rule{ID: "B", Description: "second"}))
	require.NoError(t, l.Add(ctx, Rule{ID: "A", Description: "updated"}))

	assert.Equal(t, []string{"A", "B"}, l.IDs())
	assert.Equal(t, "updated", l.Rules()[0].Description)
	assert.True(t, l.Has("B"))

	removed, err := l.Remove(ctx, "A")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = l.Remove(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	reloaded := New(store)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []Rule{{ID: "B", Description: "second"}}, reloaded.Rules())
}

type failingStore struct{}

func (failingStore) Load(context.Context) ([]Rule, error) { return nil, errors.New("boom") }
func (failingStore) Save(context.Context, []Rule) error   { return errors.New("boom") }

func TestList_SaveFailureKeepsState(t *testing.T) {
	l := New(failingStore{})
	assert.Error(t, l.Load(context.Background()))
	assert.Error(t, l.Add(context.Background(), Rule{ID: "A"}))
	assert.Empty(t, l.IDs())
}

func TestSchemaGuard_RetriesAfterFailure(t *testing.T) {
	var g schemaGuard
	calls := 0
	create := func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return context.Canceled
		}
		return nil
	}

	err := g.ensure(context.Background(), create)
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, g.ensure(context.Background(), create))
	require.NoError(t, g.ensure(context.Background(), create))
	assert.Equal(t, 2, calls, "schema created once after the failed attempt")
}
