package immutability

import (
	"fmt"

	"github.com/frroossst/readonlylint/internal/pattern"
)

// Override forces the level of named types matching Pattern. With Calculate
// set the entry only acknowledges the name: structural analysis proceeds, and
// later entries are not consulted.
type Override struct {
	Pattern   string
	Level     Level
	Calculate bool
}

type compiledOverride struct {
	matcher   pattern.Matcher
	level     Level
	calculate bool
}

// Registry is an ordered override table. The zero value and nil are empty.
type Registry struct {
	entries []compiledOverride
}

// NewRegistry compiles overrides in declared order.
func NewRegistry(overrides []Override) (*Registry, error) {
	r := &Registry{entries: make([]compiledOverride, 0, len(overrides))}
	for i, o := range overrides {
		m, err := pattern.ParseMatcher(o.Pattern)
		if err != nil {
			return nil, fmt.Errorf("override %d: %w", i, err)
		}
		if !o.Calculate && !o.Level.Valid() {
			return nil, fmt.Errorf("override %d (%s): %w: %d", i, o.Pattern, ErrUnknownLevel, int(o.Level))
		}
		r.entries = append(r.entries, compiledOverride{matcher: m, level: o.Level, calculate: o.Calculate})
	}
	return r, nil
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Lookup finds the first entry matching any of names. It reports a forced
// level only when that entry is not a Calculate marker.
func (r *Registry) Lookup(names ...string) (Level, bool) {
	if r == nil {
		return Mutable, false
	}
	for _, e := range r.entries {
		for _, name := range names {
			if name != "" && e.matcher.Match(name) {
				if e.calculate {
					return Mutable, false
				}
				return e.level, true
			}
		}
	}
	return Mutable, false
}
