package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		path := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("text"), 0644))
	}
}

func paths(root string, entries []FileEntry) []string {
	var out []string
	for _, e := range entries {
		rel, _ := filepath.Rel(root, e.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalk_SupportedFilesOnly(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"README.md",
		"notes/todo.txt",
		"paper/main.tex",
		"src/main.go",
		".git/COMMIT_EDITMSG.txt",
		"docs/Guide.RST",
	)

	entries, err := NewWalker().Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"README.md", "notes/todo.txt", "paper/main.tex", "docs/Guide.RST"},
		paths(root, entries))

	for _, e := range entries {
		if filepath.Base(e.Path) == "Guide.RST" {
			assert.Equal(t, ".rst", e.Ext)
		}
	}
}

func TestWalk_Exclude(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.md", "vendor/b.md", "drafts/old/c.md", "drafts/new/d.md")

	entries, err := NewWalker("vendor", "drafts/**/*.md").Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, paths(root, entries))
}

func TestWalk_NotADirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.md")
	_, err := NewWalker().Walk(filepath.Join(root, "a.md"))
	assert.Error(t, err)
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "book/ch1.md", "book/ch2.md", "letter.odt.txt", "plain.log")

	entries, err := NewWalker().Collect([]string{
		filepath.Join(root, "book"),
		filepath.Join(root, "book", "ch1.md"),
		filepath.Join(root, "plain.log"),
		filepath.Join(root, "*.txt"),
	})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"book/ch1.md", "book/ch2.md", "letter.odt.txt", "plain.log"},
		paths(root, entries))
}

func TestCollect_Missing(t *testing.T) {
	_, err := NewWalker().Collect([]string{filepath.Join(t.TempDir(), "nope.md")})
	assert.Error(t, err)
}
