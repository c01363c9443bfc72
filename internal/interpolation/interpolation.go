package interpolation

import (
	"regexp"
	"sort"
	"unicode/utf8"
)

// Span is a detected interpolation variable. Start and End are rune offsets.
type Span struct {
	Start int
	End   int
	Value string
}

// patterns to detect interpolation variables in message strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                           // {0}, {1}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %f, %2d, etc.
	regexp.MustCompile(`%%`),                                   // escaped percent literal
}

// Find returns the interpolation variables of text ordered by position.
// Overlapping detections are resolved in favour of the earlier, then the
// longer one.
func Find(text string) []Span {
	var all []Span
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, Span{
				Start: loc[0],
				End:   loc[1],
				Value: text[loc[0]:loc[1]],
			})
		}
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End-all[i].Start > all[j].End-all[j].Start
	})

	var spans []Span
	lastEnd := -1
	for _, s := range all {
		if s.Start >= lastEnd {
			spans = append(spans, s)
			lastEnd = s.End
		}
	}

	// Byte offsets to rune offsets, in one pass since spans are ordered.
	runes, prev := 0, 0
	for i := range spans {
		runes += utf8.RuneCountInString(text[prev:spans[i].Start])
		prev = spans[i].Start
		length := utf8.RuneCountInString(spans[i].Value)
		spans[i].Start = runes
		spans[i].End = runes + length
	}
	return spans
}

// Overlaps reports whether [start, end) shares a character with any span.
func Overlaps(spans []Span, start, end int) bool {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].End > start })
	return i < len(spans) && spans[i].Start < end
}
