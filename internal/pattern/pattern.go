// Package pattern compiles the name and text patterns used throughout the
// configuration: ECMAScript-flavoured regular expressions, globs and exact
// names.
package pattern

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// ErrInvalid is wrapped by every compilation failure.
var ErrInvalid = errors.New("invalid pattern")

// matchTimeout bounds a single match; backtracking patterns from
// configuration must not hang an analysis run.
const matchTimeout = 250 * time.Millisecond

// Regexp is a compiled ECMAScript-flavoured regular expression. Lookaheads
// and backreferences are supported, as in the configuration the patterns are
// usually copied from.
type Regexp struct {
	expr string
	re   *regexp2.Regexp
}

// Compile compiles expr.
func Compile(expr string) (*Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalid, expr, err)
	}
	re.MatchTimeout = matchTimeout
	return &Regexp{expr: expr, re: re}, nil
}

func (r *Regexp) String() string { return r.expr }

// MatchString reports whether s contains a match. A match that times out
// counts as no match.
func (r *Regexp) MatchString(s string) bool {
	ok, err := r.re.MatchString(s)
	return err == nil && ok
}

// Find returns the first match in s.
func (r *Regexp) Find(s string) (*Match, bool) {
	m, err := r.re.FindStringMatch(s)
	if err != nil || m == nil {
		return nil, false
	}
	groups := m.Groups()
	captured := make([]string, len(groups))
	for i, g := range groups {
		if len(g.Captures) > 0 {
			captured[i] = g.String()
		}
	}
	// regexp2 reports rune offsets
	runes := []rune(s)
	return &Match{
		prefix: string(runes[:m.Index]),
		suffix: string(runes[m.Index+m.Length:]),
		groups: captured,
	}, true
}

// Match is one match of a Regexp against a string.
type Match struct {
	prefix, suffix string
	groups         []string
}

// Group returns capture i, or "" when it did not participate.
func (m *Match) Group(i int) string {
	if i < 0 || i >= len(m.groups) {
		return ""
	}
	return m.groups[i]
}

// Replace returns the matched string with the match replaced by the expanded
// template, like String.prototype.replace with a non-global pattern.
func (m *Match) Replace(template string) string {
	return m.prefix + m.Expand(template) + m.suffix
}

// Expand substitutes $n, $nn, $& and $$ in template. References to groups
// that do not exist are left as written.
func (m *Match) Expand(template string) string {
	if !strings.Contains(template, "$") {
		return template
	}
	var sb strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 == len(template) {
			sb.WriteByte(c)
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			sb.WriteByte('$')
			i++
		case next == '&':
			sb.WriteString(m.Group(0))
			i++
		case isDigit(next):
			n := int(next - '0')
			width := 1
			if i+2 < len(template) && isDigit(template[i+2]) {
				if two := n*10 + int(template[i+2]-'0'); two < len(m.groups) {
					n, width = two, 2
				}
			}
			if n == 0 || n >= len(m.groups) {
				sb.WriteByte('$')
				continue
			}
			sb.WriteString(m.groups[n])
			i += width
		default:
			sb.WriteByte('$')
		}
	}
	return sb.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Matcher tests names.
type Matcher interface {
	Match(name string) bool
	String() string
}

// ParseMatcher interprets p as a regular expression when written /expr/, as a
// glob when it contains *, ? or [, and as an exact name otherwise.
func ParseMatcher(p string) (Matcher, error) {
	switch {
	case len(p) >= 2 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/"):
		re, err := Compile(p[1 : len(p)-1])
		if err != nil {
			return nil, err
		}
		return regexpMatcher{re}, nil
	case strings.ContainsAny(p, "*?["):
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalid, p, err)
		}
		return globMatcher(p), nil
	case p == "":
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalid)
	default:
		return exactMatcher(p), nil
	}
}

// ParseLoose returns a matcher accepting names equal to p or containing a
// match of p read as a regular expression.
func ParseLoose(p string) (Matcher, error) {
	if p == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalid)
	}
	re, err := Compile(p)
	if err != nil {
		return nil, err
	}
	return looseMatcher{exact: p, re: re}, nil
}

type exactMatcher string

func (m exactMatcher) Match(name string) bool { return string(m) == name }
func (m exactMatcher) String() string         { return string(m) }

type globMatcher string

func (m globMatcher) Match(name string) bool {
	ok, _ := path.Match(string(m), name)
	return ok
}
func (m globMatcher) String() string { return string(m) }

type regexpMatcher struct{ re *Regexp }

func (m regexpMatcher) Match(name string) bool { return m.re.MatchString(name) }
func (m regexpMatcher) String() string         { return "/" + m.re.String() + "/" }

type looseMatcher struct {
	exact string
	re    *Regexp
}

func (m looseMatcher) Match(name string) bool {
	return name == m.exact || m.re.MatchString(name)
}
func (m looseMatcher) String() string { return m.exact }
