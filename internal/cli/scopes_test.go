package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTexScopes(t *testing.T) {
	text := []rune("text % comment\n50\\% off\n")
	assert.Equal(t, "text.tex", texScopes(text, 2))
	assert.Equal(t, "text.tex comment.line.percentage.tex", texScopes(text, 9))
	assert.Equal(t, "text.tex", texScopes(text, 20), "escaped percent")
}

func TestMarkdownScopes(t *testing.T) {
	text := []rune("intro\n```\ncode\n```\nafter `x` y")
	assert.Equal(t, "text.html.markdown", markdownScopes(text, 1))
	assert.Equal(t, "text.html.markdown markup.raw.block.markdown", markdownScopes(text, 11))
	assert.Equal(t, "text.html.markdown", markdownScopes(text, 20))
	assert.Equal(t, "text.html.markdown markup.raw.inline.markdown", markdownScopes(text, 26))
	assert.Equal(t, "text.html.markdown", markdownScopes(text, 29))
}

func TestScopesFor(t *testing.T) {
	assert.Equal(t, "text.plain", scopesFor(".txt")(nil, 0))
	assert.Equal(t, "text.restructuredtext", scopesFor(".rst")(nil, 0))
}
