// Package fixer proposes textual rewrites that raise a type to a required
// immutability level. Rewrites are regular expressions over the type's
// source text, keyed by the level they aim for.
package fixer

import (
	"fmt"
	"sort"

	"github.com/frroossst/readonlylint/immutability"
	"github.com/frroossst/readonlylint/internal/pattern"
	"github.com/frroossst/readonlylint/typenode"
)

// Pattern is one rewrite. Expr is matched against the type text; the first
// match is replaced by Replace with $n, $& and $$ expanded. Label is
// expanded the same way and defaults to "Replace with: <result>".
type Pattern struct {
	Expr    string `json:"pattern" yaml:"pattern" toml:"pattern" validate:"required"`
	Replace string `json:"replace" yaml:"replace" toml:"replace"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// Rules are the rewrites for one level. Fix patterns are tried in order and
// the first match is a deterministic fix. Suggest holds independent sets;
// each set contributes at most one suggestion, and only when no Fix
// pattern matched.
type Rules struct {
	Fix     []Pattern
	Suggest [][]Pattern
}

// Config maps a target level to its rules.
type Config map[immutability.Level]Rules

// Edit replaces Span in the original file with NewText. An empty span is an
// insertion.
type Edit struct {
	Span    typenode.Span `json:"span" yaml:"span"`
	NewText string        `json:"newText" yaml:"newText"`
}

// Fix is an edit safe to apply without review.
type Fix struct {
	Label string `json:"label" yaml:"label"`
	Edit  Edit   `json:"edit" yaml:"edit"`
}

// Suggestion is a named set of edits a user has to choose explicitly.
type Suggestion struct {
	Label string `json:"label" yaml:"label"`
	Edits []Edit `json:"edits" yaml:"edits"`
}

// Proposal holds either a Fix or Suggestions, never both.
type Proposal struct {
	Fix         *Fix
	Suggestions []Suggestion
}

// Empty reports whether nothing was proposed.
func (p Proposal) Empty() bool { return p.Fix == nil && len(p.Suggestions) == 0 }

// Request describes the type to rewrite.
type Request struct {
	Level immutability.Level
	// Text is the type's source text, or the printed inferred type.
	Text string
	// Span is where Text sits in the file. For Insert requests only
	// Span.Start is used.
	Span typenode.Span
	// Insert adds ": <rewritten text>" at Span.Start instead of replacing
	// Span. Used for declarations without a type annotation.
	Insert bool
}

type rule struct {
	re      *pattern.Regexp
	replace string
	label   string
}

type compiledRules struct {
	fix     []rule
	suggest [][]rule
}

// Engine holds compiled rules. It is read-only after New.
type Engine struct {
	rules map[immutability.Level]compiledRules
}

// Option configures New.
type Option func(*options)

type options struct {
	builtins bool
}

// WithoutBuiltins disables the built-in TypeScript rewrites, leaving only
// the configured ones.
func WithoutBuiltins() Option {
	return func(o *options) { o.builtins = false }
}

// New compiles cfg. A level present in cfg replaces the built-ins for that
// level entirely.
func New(cfg Config, opts ...Option) (*Engine, error) {
	o := options{builtins: true}
	for _, opt := range opts {
		opt(&o)
	}

	merged := Config{}
	if o.builtins {
		for level, rules := range Builtins() {
			merged[level] = rules
		}
	}
	for level, rules := range cfg {
		merged[level] = rules
	}

	e := &Engine{rules: make(map[immutability.Level]compiledRules, len(merged))}
	for _, level := range sortedLevels(merged) {
		compiled, err := compile(merged[level])
		if err != nil {
			return nil, fmt.Errorf("%s rewrites: %w", level, err)
		}
		e.rules[level] = compiled
	}
	return e, nil
}

func sortedLevels(cfg Config) []immutability.Level {
	levels := make([]immutability.Level, 0, len(cfg))
	for l := range cfg {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

func compile(r Rules) (compiledRules, error) {
	var out compiledRules
	for _, p := range r.Fix {
		c, err := compilePattern(p)
		if err != nil {
			return out, err
		}
		out.fix = append(out.fix, c)
	}
	for _, set := range r.Suggest {
		var cs []rule
		for _, p := range set {
			c, err := compilePattern(p)
			if err != nil {
				return out, err
			}
			cs = append(cs, c)
		}
		out.suggest = append(out.suggest, cs)
	}
	return out, nil
}

func compilePattern(p Pattern) (rule, error) {
	re, err := pattern.Compile(p.Expr)
	if err != nil {
		return rule{}, err
	}
	return rule{re: re, replace: p.Replace, label: p.Label}, nil
}

// Propose computes the rewrites for req. Every edit is computed against
// req.Text, so suggestions never depend on one another.
func (e *Engine) Propose(req Request) Proposal {
	if e == nil {
		return Proposal{}
	}
	rules, ok := e.rules[req.Level]
	if !ok {
		return Proposal{}
	}

	for _, r := range rules.fix {
		if label, edit, ok := r.apply(req); ok {
			return Proposal{Fix: &Fix{Label: label, Edit: edit}}
		}
	}

	var p Proposal
	seen := make(map[string]bool)
	for _, set := range rules.suggest {
		for _, r := range set {
			label, edit, ok := r.apply(req)
			if !ok {
				continue
			}
			if !seen[edit.NewText] {
				seen[edit.NewText] = true
				p.Suggestions = append(p.Suggestions, Suggestion{Label: label, Edits: []Edit{edit}})
			}
			break
		}
	}
	return p
}

// apply rewrites req.Text. A rewrite that leaves the text unchanged does
// not count as a match.
func (r rule) apply(req Request) (string, Edit, bool) {
	m, ok := r.re.Find(req.Text)
	if !ok {
		return "", Edit{}, false
	}
	replaced := m.Replace(r.replace)
	if replaced == req.Text {
		return "", Edit{}, false
	}

	label := "Replace with: " + replaced
	if r.label != "" {
		label = m.Expand(r.label)
	}

	if req.Insert {
		at := typenode.Span{Start: req.Span.Start, End: req.Span.Start}
		return label, Edit{Span: at, NewText: ": " + replaced}, true
	}
	return label, Edit{Span: req.Span, NewText: replaced}, true
}
