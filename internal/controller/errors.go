package controller

import (
	"errors"

	"grammarcheck/internal/languagetool"
)

var (
	// ErrNoSelection means no open problem lies under the selection.
	ErrNoSelection = errors.New("no language problem selected")
	// ErrAmbiguousSelection means more than one open problem lies under the selection.
	ErrAmbiguousSelection = errors.New("multiple language problems selected")
	// ErrNoSuggestion means a suggestion index outside the problem's replacements.
	ErrNoSuggestion = errors.New("no such suggestion")
	// ErrUnknownRule means a rule id that is not on the ignore list.
	ErrUnknownRule = errors.New("rule is not deactivated")
)

// User-facing status texts.
const (
	msgUnreachable   = "could not reach the LanguageTool server; check your connection or start the local server"
	msgMalformed     = "could not parse server response (may be due to quota if using http://languagetool.org)"
	msgNoSelection   = "no language problem selected"
	msgAmbiguous     = "there are multiple selected problems; select only one to deactivate"
	msgNoProblems    = "no language problems were found :-)"
	msgNoFurther     = "no further language problems to fix"
	msgNoIgnored     = "there are no ignored rules"
	msgSelectToDeact = "select a problem to deactivate its rule"
)

// Describe turns an error from a session operation into the message shown
// to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case languagetool.KindOf(err) == languagetool.Unreachable:
		return msgUnreachable
	case languagetool.KindOf(err) == languagetool.Malformed:
		return msgMalformed
	case errors.Is(err, ErrNoSelection):
		return msgNoSelection
	case errors.Is(err, ErrAmbiguousSelection):
		return msgAmbiguous
	}
	return err.Error()
}
