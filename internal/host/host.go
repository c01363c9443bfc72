// Package host describes the editor primitives the problem controller
// drives, and provides an in-memory implementation of them.
package host

import "grammarcheck/internal/problem"

// Buffer is the document text.
type Buffer interface {
	Text() string
	// Size is the document length in characters.
	Size() int
	Substr(r problem.Region) string
	// Replace substitutes the text covered by r.
	Replace(r problem.Region, text string)
	// ScopeName returns the space-separated syntax scopes at pos.
	ScopeName(pos int) string
}

// Regions stores edit-following highlighted ranges by key.
type Regions interface {
	// Regions returns the current ranges stored under key, or nil.
	Regions(key string) []problem.Region
	// AddRegions stores ranges under key, replacing any previous ones.
	// An empty style draws nothing.
	AddRegions(key string, regions []problem.Region, style string)
	EraseRegions(key string)
}

// Selection is the caret and selection of the view.
type Selection interface {
	Selection() problem.Region
	SetSelection(r problem.Region)
	ShowAtCenter(r problem.Region)
}

// UI is the message surface of the host.
type UI interface {
	StatusMessage(msg string)
	ShowPanel(text string)
	HidePanel()
	// ShowChoices presents items and calls done with the chosen index, or
	// -1 when the user cancels.
	ShowChoices(items []string, done func(index int))
}

// Host is everything a check session needs from the editor.
type Host interface {
	Buffer
	Regions
	Selection
	UI
}

// UndoMarker is implemented by hosts where region-only changes are not
// undoable unless a no-op edit is recorded.
type UndoMarker interface {
	MarkUndo()
}
