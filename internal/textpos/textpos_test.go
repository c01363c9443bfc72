package textpos

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	for _, s := range []string{"abc", "abc\ndef", "", "\n", "a\na\na\n", "π\nテスト"} {
		numlines := strings.Count(s, "\n") + 1
		t.Logf("%q", s)
		m := NewMap(s)
		assert.Equal(t, utf8.RuneCountInString(s), m.CharCount)
		assert.Equal(t, numlines, m.LineCount())

		var curline, curcol int
		runes := []rune(s)
		for i := 0; i <= len(runes); i++ {
			line, col := m.LineCol(i)
			assert.Equal(t, curline, line)
			assert.Equal(t, curcol, col)
			assert.Equal(t, i, m.Offset(curline, curcol))
			if i < len(runes) && runes[i] == '\n' {
				curline++
				curcol = 0
			} else {
				curcol++
			}
		}
	}
}

func TestMap_OffsetClamps(t *testing.T) {
	m := NewMap("ab\ncd")
	assert.Equal(t, 5, m.Offset(7, 0))
	assert.Equal(t, 5, m.Offset(1, 10))
	assert.Equal(t, 0, m.Offset(-1, 0))
}

func TestUTF16Index_BMPIsIdentity(t *testing.T) {
	idx := NewUTF16Index("héllo wörld")
	assert.Nil(t, idx.starts)
	assert.Equal(t, 4, idx.RuneOffset(4))
}

func TestUTF16Index_SurrogatePairs(t *testing.T) {
	// "😀" takes two code units, so "teh" starts at unit 3 but rune 2.
	idx := NewUTF16Index("😀 teh")
	assert.Equal(t, 0, idx.RuneOffset(0))
	assert.Equal(t, 1, idx.RuneOffset(2))
	assert.Equal(t, 2, idx.RuneOffset(3))
	assert.Equal(t, 5, idx.RuneOffset(6))
	assert.Equal(t, 1, idx.RuneOffset(1))
}
