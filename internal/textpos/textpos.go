package textpos

import (
	"sort"
	"unicode/utf16"
)

// Map converts character offsets to and from (line, column) pairs.
// Offsets count runes; offsets, lines and columns are all zero-based.
type Map struct {
	CharCount   int   // CharCount is the number of runes in the text
	LineOffsets []int // LineOffsets contains the offset of the first rune of each line
}

// NewMap creates a map for the given text.
func NewMap(s string) *Map {
	m := Map{LineOffsets: []int{0}}
	for _, r := range s {
		m.CharCount++
		if r == '\n' {
			m.LineOffsets = append(m.LineOffsets, m.CharCount)
		}
	}
	return &m
}

// Offset converts a line and column to an offset. Like an editor's text
// point primitive it clamps out-of-range lines and offsets past the end.
func (m *Map) Offset(line, column int) int {
	if line < 0 {
		line = 0
	}
	if line >= len(m.LineOffsets) {
		line = len(m.LineOffsets) - 1
	}
	off := m.LineOffsets[line] + column
	if off < 0 {
		return 0
	}
	if off > m.CharCount {
		return m.CharCount
	}
	return off
}

// LineCol converts an offset to a line and column.
func (m *Map) LineCol(offset int) (line, column int) {
	line = sort.Search(len(m.LineOffsets)-1, func(i int) bool { return offset < m.LineOffsets[i+1] })
	return line, offset - m.LineOffsets[line]
}

// LineCount gets the number of lines (newlines plus one).
func (m *Map) LineCount() int {
	return len(m.LineOffsets)
}

// UTF16Index converts utf16 code-unit offsets into rune offsets of the
// same text.
type UTF16Index struct {
	// starts holds the code-unit offset of every rune. It stays nil when
	// every rune is a single code unit and offsets coincide.
	starts []int
	runes  int
}

// NewUTF16Index creates an index for the given text.
func NewUTF16Index(s string) *UTF16Index {
	idx := &UTF16Index{}
	wide := false
	for _, r := range s {
		idx.runes++
		if utf16.RuneLen(r) == 2 {
			wide = true
		}
	}
	if !wide {
		return idx
	}

	idx.starts = make([]int, 0, idx.runes)
	units := 0
	for _, r := range s {
		idx.starts = append(idx.starts, units)
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		units += n
	}
	return idx
}

// RuneOffset returns the rune offset for a code-unit offset. An offset that
// falls inside a surrogate pair resolves to the following rune.
func (x *UTF16Index) RuneOffset(unit int) int {
	if x.starts == nil {
		return unit
	}
	return sort.SearchInts(x.starts, unit)
}
