package cli

import (
	"grammarcheck/internal/host"
)

// scopesFor returns a scope function approximating the syntax scopes an
// editor would report for files with extension ext, so that ignored_scopes
// applies on the command line too.
func scopesFor(ext string) host.ScopeFunc {
	switch ext {
	case ".tex":
		return texScopes
	case ".md", ".markdown":
		return markdownScopes
	case ".rst":
		return func([]rune, int) string { return "text.restructuredtext" }
	}
	return func([]rune, int) string { return "text.plain" }
}

// texScopes marks text after an unescaped % on the same line as a comment.
func texScopes(text []rune, pos int) string {
	start := lineStart(text, pos)
	for i := start; i < pos && i < len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if text[i] == '%' {
			return "text.tex comment.line.percentage.tex"
		}
	}
	return "text.tex"
}

// markdownScopes marks fenced code blocks and inline code spans as raw.
func markdownScopes(text []rune, pos int) string {
	const base = "text.html.markdown"

	inFence := false
	for i := 0; i < pos && i < len(text); {
		if hasPrefix(text[i:], "```") {
			inFence = !inFence
		}
		next := lineEnd(text, i) + 1
		if next > pos {
			break
		}
		i = next
	}
	if inFence {
		return base + " markup.raw.block.markdown"
	}

	ticks := 0
	for i := lineStart(text, pos); i < pos && i < len(text); i++ {
		if text[i] == '`' {
			ticks++
		}
	}
	if ticks%2 == 1 {
		return base + " markup.raw.inline.markdown"
	}
	return base
}

func lineStart(text []rune, pos int) int {
	pos = min(pos, len(text))
	for pos > 0 && text[pos-1] != '\n' {
		pos--
	}
	return pos
}

func lineEnd(text []rune, pos int) int {
	for pos < len(text) && text[pos] != '\n' {
		pos++
	}
	return pos
}

func hasPrefix(text []rune, prefix string) bool {
	i := 0
	for _, r := range prefix {
		if i >= len(text) || text[i] != r {
			return false
		}
		i++
	}
	return true
}
