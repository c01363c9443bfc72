package ignorelist

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Rule is a deactivated server rule.
type Rule struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Store persists the rule list.
type Store interface {
	Load(ctx context.Context) ([]Rule, error)
	Save(ctx context.Context, rules []Rule) error
}

// List is the in-memory ignore list backed by a Store. Writes go straight
// through to the store; the last writer wins.
type List struct {
	store Store
	mu    sync.RWMutex
	rules []Rule
}

// New creates a list backed by store. Call Load before reading.
func New(store Store) *List {
	return &List{store: store}
}

// Load replaces the in-memory rules with the persisted ones.
func (l *List) Load(ctx context.Context) error {
	rules, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ignored rules: %w", err)
	}

	l.mu.Lock()
	l.rules = rules
	l.mu.Unlock()

	log.Debug().Int("count", len(rules)).Msg("Loaded ignored rules")
	return nil
}

// Rules returns a copy of the ignored rules in insertion order.
func (l *List) Rules() []Rule {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Rule(nil), l.rules...)
}

// IDs returns the ignored rule ids in insertion order.
func (l *List) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.rules))
	for _, r := range l.rules {
		ids = append(ids, r.ID)
	}
	return ids
}

// Has reports whether id is ignored.
func (l *List) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return indexOf(l.rules, id) >= 0
}

// Add ignores a rule and persists the list. Adding a known id updates its
// description.
func (l *List) Add(ctx context.Context, rule Rule) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := append([]Rule(nil), l.rules...)
	if i := indexOf(next, rule.ID); i >= 0 {
		next[i] = rule
	} else {
		next = append(next, rule)
	}
	return l.save(ctx, next)
}

// Remove re-activates a rule and persists the list. It reports whether the
// rule was present.
func (l *List) Remove(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOf(l.rules, id)
	if i < 0 {
		return false, nil
	}
	next := make([]Rule, 0, len(l.rules)-1)
	next = append(next, l.rules[:i]...)
	next = append(next, l.rules[i+1:]...)
	if err := l.save(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (l *List) save(ctx context.Context, rules []Rule) error {
	if err := l.store.Save(ctx, rules); err != nil {
		return fmt.Errorf("save ignored rules: %w", err)
	}
	l.rules = rules
	return nil
}

func indexOf(rules []Rule, id string) int {
	for i, r := range rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}
