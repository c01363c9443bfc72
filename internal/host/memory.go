package host

import (
	"grammarcheck/internal/problem"
	"grammarcheck/internal/textpos"
)

type storedRegions struct {
	regions []problem.Region
	style   string
}

// Memory is a Host over an in-memory rune buffer. Stored regions follow
// edits made through Replace.
type Memory struct {
	text    []rune
	regions map[string]*storedRegions
	sel     problem.Region
	center  problem.Region

	statuses     []string
	panel        string
	panelVisible bool
	undoMarks    int

	opt *options
}

var (
	_ Host       = (*Memory)(nil)
	_ UndoMarker = (*Memory)(nil)
)

func NewMemory(text string, opts ...Option) *Memory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Memory{
		text:    []rune(text),
		regions: make(map[string]*storedRegions),
		opt:     o,
	}
}

func (m *Memory) Text() string { return string(m.text) }

func (m *Memory) Size() int { return len(m.text) }

func (m *Memory) Substr(r problem.Region) string {
	r = m.clamp(r)
	return string(m.text[r.Begin():r.End()])
}

// Offset converts a zero-based line and column of the current text to a
// character offset.
func (m *Memory) Offset(line, column int) int {
	return textpos.NewMap(string(m.text)).Offset(line, column)
}

func (m *Memory) ScopeName(pos int) string {
	return m.opt.scopes(m.text, pos)
}

// Replace substitutes the text in r. Region ends before the edit stay,
// ends after it shift by the length change, and ends inside the replaced
// span move to the end of the inserted text. The caret is left after the
// inserted text.
func (m *Memory) Replace(r problem.Region, text string) {
	r = m.clamp(r)
	s, e := r.Begin(), r.End()
	ins := []rune(text)
	n := len(ins)

	next := make([]rune, 0, len(m.text)-(e-s)+n)
	next = append(next, m.text[:s]...)
	next = append(next, ins...)
	next = append(next, m.text[e:]...)
	m.text = next

	for _, stored := range m.regions {
		for i, reg := range stored.regions {
			stored.regions[i] = followEdit(reg, s, e, n)
		}
	}
	m.sel = problem.Region{A: s + n, B: s + n}
}

func followEdit(reg problem.Region, s, e, n int) problem.Region {
	a := mapPos(reg.Begin(), s, e, n, true)
	b := mapPos(reg.End(), s, e, n, false)
	if b < a {
		b = a
	}
	return problem.Region{A: a, B: b}
}

// mapPos moves pos across the replacement of [s, e) by n characters.
// stickRight decides which side of a pure insertion at pos it ends on.
func mapPos(pos, s, e, n int, stickRight bool) int {
	delta := n - (e - s)
	switch {
	case s == e && pos == s:
		if stickRight {
			return pos + n
		}
		return pos
	case pos <= s:
		return pos
	case pos >= e:
		return pos + delta
	default:
		return s + n
	}
}

func (m *Memory) Regions(key string) []problem.Region {
	stored, ok := m.regions[key]
	if !ok {
		return nil
	}
	return append([]problem.Region(nil), stored.regions...)
}

func (m *Memory) AddRegions(key string, regions []problem.Region, style string) {
	clamped := make([]problem.Region, 0, len(regions))
	for _, r := range regions {
		clamped = append(clamped, m.clamp(r))
	}
	m.regions[key] = &storedRegions{regions: clamped, style: style}
}

func (m *Memory) EraseRegions(key string) {
	delete(m.regions, key)
}

// Style returns the style regions under key are drawn with.
func (m *Memory) Style(key string) (string, bool) {
	stored, ok := m.regions[key]
	if !ok {
		return "", false
	}
	return stored.style, true
}

// RegionKeys returns the number of stored keys.
func (m *Memory) RegionKeys() int { return len(m.regions) }

func (m *Memory) Selection() problem.Region { return m.sel }

func (m *Memory) SetSelection(r problem.Region) { m.sel = m.clamp(r) }

func (m *Memory) ShowAtCenter(r problem.Region) { m.center = r }

// Centered returns the region last scrolled into view.
func (m *Memory) Centered() problem.Region { return m.center }

func (m *Memory) StatusMessage(msg string) {
	m.statuses = append(m.statuses, msg)
	if m.opt.status != nil {
		m.opt.status(msg)
	}
}

// Status returns the latest status message.
func (m *Memory) Status() string {
	if len(m.statuses) == 0 {
		return ""
	}
	return m.statuses[len(m.statuses)-1]
}

func (m *Memory) ShowPanel(text string) {
	m.panel = text
	m.panelVisible = true
	if m.opt.panel != nil {
		m.opt.panel(text)
	}
}

func (m *Memory) HidePanel() { m.panelVisible = false }

// Panel returns the panel text and whether the panel is shown.
func (m *Memory) Panel() (string, bool) { return m.panel, m.panelVisible }

func (m *Memory) ShowChoices(items []string, done func(index int)) {
	idx := m.opt.chooser(items)
	if idx < -1 || idx >= len(items) {
		idx = -1
	}
	done(idx)
}

func (m *Memory) MarkUndo() { m.undoMarks++ }

// UndoMarks returns how many undo checkpoints were recorded.
func (m *Memory) UndoMarks() int { return m.undoMarks }

func (m *Memory) clamp(r problem.Region) problem.Region {
	size := len(m.text)
	a := max(0, min(r.A, size))
	b := max(0, min(r.B, size))
	return problem.Region{A: a, B: b}
}
