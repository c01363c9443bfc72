package controller

import (
	"strings"

	"github.com/mattn/go-zglob"
	"github.com/rs/zerolog/log"
)

// scopeIgnored reports whether any scope in the space-separated scopeName
// matches one of the glob patterns.
func scopeIgnored(scopeName string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, scope := range strings.Fields(scopeName) {
		for _, pattern := range patterns {
			ok, err := zglob.Match(pattern, scope)
			if err != nil {
				log.Warn().Err(err).Str("pattern", pattern).Msg("Invalid ignored scope pattern")
				continue
			}
			if ok {
				return true
			}
		}
	}
	return false
}
