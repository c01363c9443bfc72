package controller

import (
	"context"
	"errors"
	"fmt"

	"grammarcheck/internal/languagetool"

	"github.com/rs/zerolog/log"
)

// ServerFunc resolves the check endpoint. force is "local", "remote" or
// empty for the configured default.
type ServerFunc func(force string) (string, error)

// Commands are the user-facing actions of an editor integration. They
// never fail: problems are reported on the status line.
type Commands struct {
	session *Session
	checker Checker
	server  ServerFunc
}

func NewCommands(session *Session, checker Checker, server ServerFunc) *Commands {
	return &Commands{
		session: session,
		checker: checker,
		server:  server,
	}
}

// Session returns the session the commands act on.
func (c *Commands) Session() *Session { return c.session }

// Check runs a check against the default server, or the forced one.
func (c *Commands) Check(ctx context.Context, force string) {
	server, err := c.server(force)
	if err != nil {
		c.report("check", err)
		return
	}
	if _, err := c.session.Check(ctx, c.checker, server); err != nil {
		c.report("check", err)
	}
}

// Goto moves to the next or previous open problem from the caret.
func (c *Commands) Goto(jumpForward bool) {
	dir := Forward
	if !jumpForward {
		dir = Backward
	}
	sel := c.session.host.Selection()
	c.session.Navigate(dir, sel.Begin())
}

// MarkSolved resolves the selected problem. With applyFix it applies
// suggestion (negative asks when there are several), otherwise it ignores
// the problem.
func (c *Commands) MarkSolved(applyFix bool, suggestion int) {
	p, err := c.session.SelectedProblem()
	if err != nil {
		c.report("mark solved", err)
		return
	}
	var action Action = Ignore{}
	if applyFix {
		action = ApplyReplacement{Index: suggestion}
	}
	if err := c.session.Resolve(p, action); err != nil {
		c.report("mark solved", err)
	}
}

// Deactivate puts the rule of the selected problem on the ignore list.
func (c *Commands) Deactivate(ctx context.Context) {
	_, err := c.session.DeactivateRule(ctx)
	if errors.Is(err, ErrNoSelection) {
		c.session.host.StatusMessage(msgSelectToDeact)
		return
	}
	if err != nil {
		c.report("deactivate rule", err)
	}
}

// Activate offers the ignored rules as a choice list and removes the
// chosen one from the ignore list.
func (c *Commands) Activate(ctx context.Context) {
	rules := c.session.IgnoredRules()
	if len(rules) == 0 {
		c.session.host.StatusMessage(msgNoIgnored)
		return
	}
	items := make([]string, len(rules))
	for i, r := range rules {
		items[i] = fmt.Sprintf("%s: %s", r.ID, r.Description)
	}
	c.session.host.ShowChoices(items, func(i int) {
		if i < 0 {
			return
		}
		id := rules[i].ID
		if err := c.session.ReactivateRule(ctx, id); err != nil {
			c.report("activate rule", err)
			return
		}
		c.session.host.StatusMessage("activated rule " + id)
	})
}

// Clear removes all problems.
func (c *Commands) Clear() {
	c.session.ClearAll()
}

// SetLanguage validates tag and uses it for subsequent checks.
func (c *Commands) SetLanguage(tag string) {
	normalized, err := languagetool.NormalizeLanguage(tag)
	if err != nil {
		c.report("set language", err)
		return
	}
	c.session.SetLanguage(normalized)
	c.session.host.StatusMessage("language set to " + languagetool.DisplayName(normalized))
}

func (c *Commands) report(op string, err error) {
	log.Warn().Err(err).Str("op", op).Msg("Command failed")
	c.session.host.StatusMessage(Describe(err))
}
