// Package controller owns the problem set of one document: it turns server
// matches into highlighted problems and drives navigation, resolution and
// rule deactivation through a host.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"grammarcheck/internal/host"
	"grammarcheck/internal/ignorelist"
	"grammarcheck/internal/interpolation"
	"grammarcheck/internal/languagetool"
	"grammarcheck/internal/problem"

	"github.com/rs/zerolog/log"
)

// DisplayMode selects where the selected problem is described.
type DisplayMode string

const (
	DisplayPanel     DisplayMode = "panel"
	DisplayStatusBar DisplayMode = "statusbar"
)

// Direction of navigation relative to the caret.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Options configures a Session.
type Options struct {
	DisplayMode DisplayMode
	// HighlightStyle is the style of open problem regions.
	HighlightStyle string
	// IgnoredScopes are glob patterns; matches starting in such a scope are dropped.
	IgnoredScopes []string
	// Language is sent with every check.
	Language string
	// CheckSelectionOnly submits only the selected text instead of the
	// whole document.
	CheckSelectionOnly bool
	// SkipPlaceholders drops matches touching format placeholders such as
	// %s, {0} or ${name}.
	SkipPlaceholders bool
}

// Checker runs one check request.
type Checker interface {
	Check(ctx context.Context, req languagetool.Request) ([]problem.Match, error)
}

// Session is the problem set of one document together with the host that
// displays it. It is not safe for concurrent use; hosts call it from their
// UI thread.
type Session struct {
	host    host.Host
	ignored *ignorelist.List
	opts    Options
	set     *problem.Set
}

// NewSession creates a session. ignored may be nil, in which case rules can
// not be deactivated.
func NewSession(h host.Host, ignored *ignorelist.List, opts Options) *Session {
	if opts.DisplayMode == "" {
		opts.DisplayMode = DisplayPanel
	}
	if opts.Language == "" {
		opts.Language = languagetool.Auto
	}
	return &Session{
		host:    h,
		ignored: ignored,
		opts:    opts,
		set:     problem.NewSet(),
	}
}

// Host returns the host the session draws on.
func (s *Session) Host() host.Host { return s.host }

// Problems returns the current problems in server order.
func (s *Session) Problems() []*problem.Problem { return s.set.Items() }

// Language returns the language sent with checks.
func (s *Session) Language() string { return s.opts.Language }

// SetLanguage changes the language sent with subsequent checks.
func (s *Session) SetLanguage(tag string) { s.opts.Language = tag }

// Check clears the current problems, submits the document (or the
// selection) to checker and ingests the result. Matches outside a non-empty
// selection are dropped.
func (s *Session) Check(ctx context.Context, checker Checker, server string) (int, error) {
	region := s.host.Selection()
	if region.Empty() {
		region = problem.Region{A: 0, B: s.host.Size()}
	}
	s.ClearAll()

	var disabled []string
	if s.ignored != nil {
		if err := s.ignored.Load(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to reload ignored rules, using previous list")
		}
		disabled = s.ignored.IDs()
	}

	req := languagetool.Request{
		Server:        server,
		Text:          s.host.Text(),
		Language:      s.opts.Language,
		DisabledRules: disabled,
	}
	shift := 0
	if s.opts.CheckSelectionOnly && region.Len() < s.host.Size() {
		req.Text = s.host.Substr(region)
		shift = region.Begin()
	} else if pos, ok := s.host.(languagetool.Positioner); ok {
		req.Positioner = pos
	}

	s.host.StatusMessage("checking text...")
	matches, err := checker.Check(ctx, req)
	if err != nil {
		s.host.StatusMessage(Describe(err))
		return 0, err
	}
	if shift != 0 {
		shifted := make([]problem.Match, len(matches))
		for i, m := range matches {
			m.Offset = m.Region().Shift(shift).Begin()
			shifted[i] = m
		}
		matches = shifted
	}
	return s.Ingest(matches, region, s.opts.IgnoredScopes), nil
}

// Ingest replaces the problem set with the matches that lie inside
// checkRegion and do not start in an ignored scope (nor touch a placeholder
// when SkipPlaceholders is set). Each kept match gets a fresh key and a
// highlighted region. The first problem is selected, or a status message
// reports that nothing was found. It returns the number of problems kept.
func (s *Session) Ingest(matches []problem.Match, checkRegion problem.Region, ignoredScopes []string) int {
	s.eraseAll()
	set := problem.NewSet()

	var placeholders []interpolation.Span
	if s.opts.SkipPlaceholders {
		placeholders = interpolation.Find(s.host.Text())
	}

	for _, m := range matches {
		r := m.Region()
		if !checkRegion.Contains(r) {
			continue
		}
		if scopeIgnored(s.host.ScopeName(r.Begin()), ignoredScopes) {
			log.Debug().Str("rule", m.RuleID).Stringer("region", r).Msg("Dropping match in ignored scope")
			continue
		}
		if interpolation.Overlaps(placeholders, r.Begin(), r.End()) {
			continue
		}
		key := strconv.Itoa(set.Len())
		s.host.AddRegions(key, []problem.Region{r}, s.opts.HighlightStyle)
		set.Add(&problem.Problem{
			Match:           m,
			Key:             key,
			OriginalContent: s.host.Substr(r),
		})
	}
	s.set = set

	log.Debug().Int("matches", len(matches)).Int("problems", set.Len()).Msg("Ingested check result")

	if set.Len() == 0 {
		s.host.StatusMessage(msgNoProblems)
		return 0
	}
	s.selectProblem(set.Items()[0])
	return set.Len()
}

// liveRegion returns the current region of p as the host tracks it.
func (s *Session) liveRegion(p *problem.Problem) (problem.Region, bool) {
	regions := s.host.Regions(p.Key)
	if len(regions) == 0 {
		return problem.Region{}, false
	}
	return regions[0], true
}

// IsOpen reports whether p is still unresolved: its region exists, is not
// empty and still covers the text it was reported on.
func (s *Session) IsOpen(p *problem.Problem) bool {
	r, ok := s.liveRegion(p)
	if !ok {
		log.Warn().Str("key", p.Key).Msg("Tried to find non-existing region")
		return false
	}
	return !r.Empty() && s.host.Substr(r) == p.OriginalContent
}

// Navigate selects the nearest open problem strictly after (Forward) or
// before (Backward) caret. Among problems at the same start, forward picks
// the first in set order and backward the last.
func (s *Session) Navigate(dir Direction, caret int) (*problem.Problem, bool) {
	var best *problem.Problem
	bestStart := 0
	for _, p := range s.set.Items() {
		if !s.IsOpen(p) {
			continue
		}
		r, _ := s.liveRegion(p)
		start := r.Begin()
		switch dir {
		case Forward:
			if start > caret && (best == nil || start < bestStart) {
				best, bestStart = p, start
			}
		case Backward:
			if start < caret && (best == nil || start >= bestStart) {
				best, bestStart = p, start
			}
		}
	}

	if best == nil {
		s.host.StatusMessage(msgNoFurther)
		s.host.HidePanel()
		return nil, false
	}
	s.selectProblem(best)
	return best, true
}

// SelectedProblem returns the open problem whose region equals the
// selection.
func (s *Session) SelectedProblem() (*problem.Problem, error) {
	sel := s.host.Selection()
	for _, p := range s.set.Items() {
		r, ok := s.liveRegion(p)
		if ok && r.Begin() == sel.Begin() && r.End() == sel.End() && s.IsOpen(p) {
			return p, nil
		}
	}
	return nil, ErrNoSelection
}

// RecomputeHighlights redraws every problem: open ones with the highlight
// style, resolved ones with nothing. Hosts call it after each modification.
func (s *Session) RecomputeHighlights() {
	for _, p := range s.set.Items() {
		regions := s.host.Regions(p.Key)
		if len(regions) == 0 {
			continue
		}
		style := s.opts.HighlightStyle
		if !s.IsOpen(p) {
			style = ""
		}
		s.host.AddRegions(p.Key, regions, style)
	}
}

// ClearAll erases every problem region, empties the set, hides the panel
// and collapses the selection to its end.
func (s *Session) ClearAll() {
	s.eraseAll()
	s.set = problem.NewSet()
	s.host.HidePanel()
	sel := s.host.Selection()
	s.host.SetSelection(problem.Region{A: sel.End(), B: sel.End()})
}

func (s *Session) eraseAll() {
	for _, p := range s.set.Items() {
		s.host.EraseRegions(p.Key)
	}
}

func (s *Session) selectProblem(p *problem.Problem) {
	r, ok := s.liveRegion(p)
	if !ok {
		return
	}
	s.host.SetSelection(r)
	s.host.ShowAtCenter(r)
	s.showProblem(p)
}

func (s *Session) showProblem(p *problem.Problem) {
	if s.opts.DisplayMode == DisplayStatusBar {
		s.host.StatusMessage(StatusText(p))
		return
	}
	s.host.ShowPanel(PanelText(p))
}

// PanelText is the multi-line description of p.
func PanelText(p *problem.Problem) string {
	var b strings.Builder
	b.WriteString(p.Message)
	if len(p.Replacements) > 0 {
		b.WriteString("\n\nSuggestion(s): ")
		b.WriteString(strings.Join(p.Replacements, ", "))
	}
	if len(p.URLs) > 0 {
		b.WriteString("\n\nMore Info: ")
		b.WriteString(strings.Join(p.URLs, "\n"))
	}
	return b.String()
}

// StatusText is the one-line description of p.
func StatusText(p *problem.Problem) string {
	if len(p.Replacements) == 0 {
		return p.Message
	}
	return fmt.Sprintf("%s (%s)", p.Message, strings.Join(p.Replacements, ", "))
}

// Action is how Resolve settles a problem.
type Action interface {
	isAction()
}

// ApplyReplacement substitutes one of the problem's suggestions. A negative
// Index lets the user choose when there is more than one.
type ApplyReplacement struct {
	Index int
}

// Ignore marks the problem as resolved without touching the text. Ignoring
// a "Possible Typo" ignores every open typo on the same word.
type Ignore struct{}

func (ApplyReplacement) isAction() {}
func (Ignore) isAction()           {}

// Resolve settles the open problem p and moves on to the next one.
func (s *Session) Resolve(p *problem.Problem, action Action) error {
	if p == nil || !s.IsOpen(p) {
		return ErrNoSelection
	}

	switch a := action.(type) {
	case Ignore:
		return s.ignore(p)
	case ApplyReplacement:
		switch n := len(p.Replacements); {
		case n == 0:
			return s.ignore(p)
		case a.Index >= n:
			return fmt.Errorf("%w: %d of %d", ErrNoSuggestion, a.Index+1, n)
		case a.Index >= 0:
			return s.apply(p, a.Index)
		case n == 1:
			return s.apply(p, 0)
		}
		var err error
		s.host.ShowChoices(p.Replacements, func(i int) {
			if i < 0 {
				s.selectProblem(p)
				return
			}
			err = s.apply(p, i)
		})
		return err
	}
	return fmt.Errorf("unknown action %T", action)
}

func (s *Session) apply(p *problem.Problem, index int) error {
	// The region is looked up again: a host may answer choices after
	// further edits.
	r, ok := s.liveRegion(p)
	if !ok || !s.IsOpen(p) {
		return ErrNoSelection
	}
	text := p.Replacements[index]
	s.host.Replace(r, text)

	caret := r.Begin() + utf8.RuneCountInString(text)
	s.host.AddRegions(p.Key, []problem.Region{{A: caret, B: caret}}, "")
	s.host.SetSelection(problem.Region{A: caret, B: caret})

	log.Debug().Str("rule", p.RuleID).Str("replacement", text).Msg("Applied suggestion")
	s.Navigate(Forward, caret)
	return nil
}

func (s *Session) ignore(p *problem.Problem) error {
	r, _ := s.liveRegion(p)
	targets := []*problem.Problem{p}
	if p.Category == problem.TypoCategory {
		targets = targets[:0]
		for _, q := range s.set.Items() {
			if q.Category == p.Category && q.OriginalContent == p.OriginalContent && s.IsOpen(q) {
				targets = append(targets, q)
			}
		}
	}
	s.collapse(targets)

	next := r.Begin()
	s.host.SetSelection(problem.Region{A: next, B: next})
	s.Navigate(Forward, next)
	return nil
}

// collapse turns each problem's region into an empty one at its start,
// which resolves it.
func (s *Session) collapse(problems []*problem.Problem) {
	for _, q := range problems {
		r, ok := s.liveRegion(q)
		if !ok {
			continue
		}
		s.host.AddRegions(q.Key, []problem.Region{{A: r.Begin(), B: r.Begin()}}, "")
	}
	if m, ok := s.host.(host.UndoMarker); ok && len(problems) > 0 {
		m.MarkUndo()
	}
}

// DeactivateRule adds the rule of the single open problem inside the
// selection to the ignore list and resolves every open problem of that rule.
// A problem is selected when its live region lies within the selection, so
// selecting a whole sentence around one problem picks that problem; an exact
// match of the two ranges is not required.
func (s *Session) DeactivateRule(ctx context.Context) (ignorelist.Rule, error) {
	if s.ignored == nil {
		return ignorelist.Rule{}, errors.New("no ignore list configured")
	}

	sel := s.host.Selection()
	var selected []*problem.Problem
	for _, p := range s.set.Items() {
		r, ok := s.liveRegion(p)
		if ok && s.IsOpen(p) && sel.Contains(r) {
			selected = append(selected, p)
		}
	}
	switch len(selected) {
	case 0:
		return ignorelist.Rule{}, ErrNoSelection
	case 1:
	default:
		return ignorelist.Rule{}, ErrAmbiguousSelection
	}

	p := selected[0]
	rule := ignorelist.Rule{ID: p.RuleID, Description: p.Message}
	if err := s.ignored.Add(ctx, rule); err != nil {
		return ignorelist.Rule{}, fmt.Errorf("deactivate %s: %w", rule.ID, err)
	}

	var same []*problem.Problem
	for _, q := range s.set.Items() {
		if q.RuleID == rule.ID && s.IsOpen(q) {
			same = append(same, q)
		}
	}
	r, _ := s.liveRegion(p)
	s.collapse(same)

	log.Info().Str("rule", rule.ID).Int("resolved", len(same)).Msg("Deactivated rule")
	s.Navigate(Forward, r.Begin())
	s.host.StatusMessage("deactivated rule " + rule.ID)
	return rule, nil
}

// ReactivateRule removes id from the ignore list. Current problems are not
// touched; the rule is reported again from the next check.
func (s *Session) ReactivateRule(ctx context.Context, id string) error {
	if s.ignored == nil {
		return errors.New("no ignore list configured")
	}
	removed, err := s.ignored.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("reactivate %s: %w", id, err)
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrUnknownRule, id)
	}
	log.Info().Str("rule", id).Msg("Reactivated rule")
	return nil
}

// IgnoredRules returns the deactivated rules, or nil without an ignore list.
func (s *Session) IgnoredRules() []ignorelist.Rule {
	if s.ignored == nil {
		return nil
	}
	return s.ignored.Rules()
}
