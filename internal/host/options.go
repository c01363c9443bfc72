package host

// Option configures a Memory host.
type Option func(*options)

// Chooser picks an item from a choice list, returning -1 to cancel.
type Chooser func(items []string) int

// ScopeFunc reports the syntax scopes at a position of text.
type ScopeFunc func(text []rune, pos int) string

type options struct {
	chooser Chooser
	scopes  ScopeFunc
	status  func(msg string)
	panel   func(text string)
}

func defaultOptions() *options {
	return &options{
		chooser: func([]string) int { return -1 },
		scopes:  func([]rune, int) string { return "text.plain " },
	}
}

// WithChooser sets how choice lists are answered.
func WithChooser(c Chooser) Option {
	return func(o *options) {
		o.chooser = c
	}
}

// WithScopes sets the scope function used by ScopeName.
func WithScopes(f ScopeFunc) Option {
	return func(o *options) {
		o.scopes = f
	}
}

// WithStatusFunc receives every status message.
func WithStatusFunc(f func(msg string)) Option {
	return func(o *options) {
		o.status = f
	}
}

// WithPanelFunc receives the panel text each time it is shown.
func WithPanelFunc(f func(text string)) Option {
	return func(o *options) {
		o.panel = f
	}
}
