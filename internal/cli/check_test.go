package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"grammarcheck/internal/controller"
	"grammarcheck/internal/filewalker"
	"grammarcheck/internal/languagetool"
	"grammarcheck/internal/problem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tehChecker reports every "teh" as a typo.
type tehChecker struct{}

func (tehChecker) Check(_ context.Context, req languagetool.Request) ([]problem.Match, error) {
	var out []problem.Match
	runes := []rune(req.Text)
	for i := 0; i+3 <= len(runes); i++ {
		if string(runes[i:i+3]) == "teh" {
			out = append(out, problem.Match{
				Offset:       i,
				Length:       3,
				Category:     problem.TypoCategory,
				Message:      "Possible spelling mistake found.",
				Replacements: []string{"the"},
				RuleID:       "MORFOLOGIK_RULE_EN_US",
			})
		}
	}
	return out, nil
}

type failingChecker struct{}

func (failingChecker) Check(_ context.Context, req languagetool.Request) ([]problem.Match, error) {
	return nil, &languagetool.Failure{Kind: languagetool.Unreachable, Server: req.Server, Err: errors.New("connection refused")}
}

func writeFiles(t *testing.T, files map[string]string) (string, []filewalker.FileEntry) {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0644))
	}
	entries, err := filewalker.NewWalker().Walk(root)
	require.NoError(t, err)
	return root, entries
}

func TestCheckFiles_ReportsProblems(t *testing.T) {
	root, files := writeFiles(t, map[string]string{
		"a.txt": "fine text\n",
		"b.md":  "the start\nteh end\n",
	})

	var out bytes.Buffer
	err := checkFiles(context.Background(), &out, tehChecker{}, nil, controller.Options{}, "server", files, 2)
	assert.ErrorIs(t, err, errProblemsFound)

	assert.Contains(t, out.String(), filepath.Join(root, "b.md")+":2:1: MORFOLOGIK_RULE_EN_US: Possible spelling mistake found.")
	assert.Contains(t, out.String(), "suggestions: the")
	assert.Contains(t, out.String(), "1 language problem(s) in 2 file(s)")
}

func TestCheckFiles_Clean(t *testing.T) {
	_, files := writeFiles(t, map[string]string{"a.txt": "fine text\n"})

	var out bytes.Buffer
	err := checkFiles(context.Background(), &out, tehChecker{}, nil, controller.Options{}, "server", files, 1)
	require.NoError(t, err)
	assert.Equal(t, "no language problems were found in 1 file(s) :-)\n", out.String())
}

func TestCheckFiles_IgnoredScopes(t *testing.T) {
	_, files := writeFiles(t, map[string]string{"paper.tex": "% teh comment\nteh body\n"})

	var out bytes.Buffer
	opts := controller.Options{IgnoredScopes: []string{"comment.*"}}
	err := checkFiles(context.Background(), &out, tehChecker{}, nil, opts, "server", files, 1)
	assert.ErrorIs(t, err, errProblemsFound)
	assert.Contains(t, out.String(), "paper.tex:2:1:")
	assert.NotContains(t, out.String(), "paper.tex:1:")
}

func TestCheckFiles_ServerFailure(t *testing.T) {
	_, files := writeFiles(t, map[string]string{"a.txt": "teh\n"})

	var out bytes.Buffer
	err := checkFiles(context.Background(), &out, failingChecker{}, nil, controller.Options{}, "server", files, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errProblemsFound)

	want := controller.Describe(&languagetool.Failure{Kind: languagetool.Unreachable})
	assert.Contains(t, out.String(), want)
}
