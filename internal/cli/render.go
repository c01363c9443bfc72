package cli

import (
	"fmt"
	"io"
	"strings"

	"grammarcheck/internal/problem"
	"grammarcheck/internal/textpos"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	locationColor   = color.New(color.Bold)
	ruleColor       = color.New(color.FgYellow, color.Bold)
	underlineColor  = color.New(color.FgRed, color.Bold)
	suggestionColor = color.New(color.FgGreen)
	faintColor      = color.New(color.Faint)
)

const tabWidth = 4

// renderProblem prints one problem as
//
//	<path>:<line>:<col>: <RULE>: <message>
//	    <source line>
//	    ^~~~
//	    suggestions: a, b
//
// Line and column are one-based; the underline is aligned by display width.
func renderProblem(w io.Writer, path string, lines *textpos.Map, text []rune, p *problem.Problem, r problem.Region) {
	line, col := lines.LineCol(r.Begin())
	fmt.Fprintf(w, "%s: %s: %s\n",
		locationColor.Sprintf("%s:%d:%d", path, line+1, col+1),
		ruleColor.Sprint(p.RuleID),
		p.Message)

	renderContext(w, lines, text, r)
	if len(p.Replacements) > 0 {
		fmt.Fprintf(w, "    %s %s\n", faintColor.Sprint("suggestions:"), suggestionColor.Sprint(strings.Join(p.Replacements, ", ")))
	}
}

// renderContext prints the source line holding the start of r with r
// underlined. Only the part of r on that line is marked.
func renderContext(w io.Writer, lines *textpos.Map, text []rune, r problem.Region) {
	line, col := lines.LineCol(r.Begin())
	lineText := lineAt(lines, text, line)
	col = min(col, len(lineText))
	end := min(col+r.Len(), len(lineText))

	prefix := expandTabs(string(lineText[:col]))
	marked := expandTabs(string(lineText[col:end]))
	width := max(1, runewidth.StringWidth(marked))
	underline := "^" + strings.Repeat("~", width-1)

	fmt.Fprintf(w, "    %s\n", expandTabs(string(lineText)))
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", runewidth.StringWidth(prefix)), underlineColor.Sprint(underline))
}

// renderSummary prints the closing line of a check run.
func renderSummary(w io.Writer, files, problems int) {
	if problems == 0 {
		fmt.Fprintf(w, "%s\n", suggestionColor.Sprintf("no language problems were found in %d file(s) :-)", files))
		return
	}
	fmt.Fprintf(w, "%s\n", underlineColor.Sprintf("%d language problem(s) in %d file(s)", problems, files))
}

// lineAt returns line n of text without its newline.
func lineAt(lines *textpos.Map, text []rune, n int) []rune {
	if n < 0 || n >= lines.LineCount() {
		return nil
	}
	start := lines.Offset(n, 0)
	end := start
	for end < len(text) && text[end] != '\n' && text[end] != '\r' {
		end++
	}
	return text[start:end]
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
