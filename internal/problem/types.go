package problem

import "fmt"

// TypoCategory is the category whose ignores apply to every identical typo.
const TypoCategory = "Possible Typo"

// Region is a half-open character range [A, B) in a document.
type Region struct {
	A int
	B int
}

// NewRegion builds the region covering length characters from offset.
func NewRegion(offset, length int) Region {
	return Region{A: offset, B: offset + length}
}

func (r Region) Begin() int { return min(r.A, r.B) }

func (r Region) End() int { return max(r.A, r.B) }

func (r Region) Empty() bool { return r.A == r.B }

func (r Region) Len() int { return r.End() - r.Begin() }

// Contains reports whether other lies entirely inside r.
func (r Region) Contains(other Region) bool {
	return r.Begin() <= other.Begin() && other.End() <= r.End()
}

// Shift moves both ends of the region by n characters.
func (r Region) Shift(n int) Region {
	return Region{A: r.A + n, B: r.B + n}
}

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d)", r.A, r.B)
}

// Match is a problem as reported by the checking service, normalized
// across wire formats.
type Match struct {
	// Offset is the character offset of the problem in the submitted text.
	Offset int `json:"offset" msgpack:"offset"`
	// Length is the number of characters covered by the problem.
	Length int `json:"length" msgpack:"length"`
	// Category is the human readable rule category.
	Category string `json:"category" msgpack:"category"`
	// Message describes the problem.
	Message string `json:"message" msgpack:"message"`
	// Replacements are suggestions in server order, possibly empty.
	Replacements []string `json:"replacements" msgpack:"replacements"`
	// RuleID identifies the server rule, empty if the server did not send one.
	RuleID string `json:"ruleId" msgpack:"rule_id"`
	// URLs point to further information, possibly empty.
	URLs []string `json:"urls" msgpack:"urls"`
}

// Region returns the range the match covers in the submitted text.
func (m Match) Region() Region {
	return NewRegion(m.Offset, m.Length)
}

// Problem is a match bound to a live region in a document.
//
// Offset and Length stay at their detection-time values; the current
// bounds are owned by the host's region store under Key.
type Problem struct {
	Match

	// Key is the host region handle.
	Key string
	// OriginalContent is the text covered by the region when it was created.
	OriginalContent string
}

// Set is the ordered collection of problems of one check cycle.
type Set struct {
	items []*Problem
}

func NewSet() *Set {
	return &Set{}
}

func (s *Set) Add(p *Problem) {
	s.items = append(s.items, p)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns the problems in check order. The slice must not be modified.
func (s *Set) Items() []*Problem {
	if s == nil {
		return nil
	}
	return s.items
}

