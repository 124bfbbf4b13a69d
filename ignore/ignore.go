// Package ignore decides whether a declaration is exempt from immutability
// enforcement because of where it sits or what it is called.
package ignore

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frroossst/readonlylint/internal/pattern"
)

// ClassMode controls the class-membership exemption.
type ClassMode int

const (
	ClassesOff ClassMode = iota
	// ClassesAll exempts every member of a class body.
	ClassesAll
	// ClassesFieldsOnly exempts property and field declarations but not
	// methods, accessors or their parameters.
	ClassesFieldsOnly
)

// ErrClassMode is returned for class settings other than a boolean or
// "fieldsOnly".
var ErrClassMode = errors.New(`class exemption must be true, false or "fieldsOnly"`)

func (m ClassMode) String() string {
	switch m {
	case ClassesAll:
		return "true"
	case ClassesFieldsOnly:
		return "fieldsOnly"
	default:
		return "false"
	}
}

// ParseClassMode accepts the shapes configuration files use: a bool, or the
// strings "true", "false" and "fieldsOnly".
func ParseClassMode(v any) (ClassMode, error) {
	switch v := v.(type) {
	case nil:
		return ClassesOff, nil
	case bool:
		if v {
			return ClassesAll, nil
		}
		return ClassesOff, nil
	case string:
		switch strings.TrimSpace(v) {
		case "", "false":
			return ClassesOff, nil
		case "true":
			return ClassesAll, nil
		case "fieldsOnly":
			return ClassesFieldsOnly, nil
		}
	}
	return ClassesOff, fmt.Errorf("%w: %v", ErrClassMode, v)
}

// Scope answers lexical questions about the declaration being checked. Hosts
// implement it over their syntax trees.
type Scope interface {
	// InClass reports whether the declaration is inside a class body.
	InClass() bool
	// InClassField reports whether it is a property or field declaration of
	// a class, as opposed to a method, accessor or one of their parameters.
	InClassField() bool
	// InInterface reports whether it is inside an interface or type literal.
	InInterface() bool
	// IsLocal reports whether it is a parameter or function-local variable.
	IsLocal() bool
	// EscapesLocalScope reports whether its value leaves the enclosing
	// function: returned, assigned to a non-local binding, or captured by an
	// escaping closure.
	EscapesLocalScope() bool
}

// Subject is the declaration being checked.
type Subject struct {
	Identifier string
	FilePath   string
	Scope      Scope
}

// Rule is the exemption configuration.
type Rule struct {
	Classes       ClassMode
	Interfaces    bool
	LocalMutation bool
	Patterns      []string
}

// Reason names the rule that exempted a subject.
type Reason int

const (
	NotExempt Reason = iota
	ByClass
	ByInterface
	ByLocalScope
	ByPattern
)

func (r Reason) String() string {
	switch r {
	case ByClass:
		return "class"
	case ByInterface:
		return "interface"
	case ByLocalScope:
		return "local"
	case ByPattern:
		return "pattern"
	default:
		return "none"
	}
}

// Evaluator applies a compiled Rule. It is read-only after construction. A
// nil Evaluator exempts nothing.
type Evaluator struct {
	rule     Rule
	patterns []pattern.Matcher
	logger   *slog.Logger
}

// NewEvaluator compiles the rule's name patterns. Each pattern matches a
// name equal to it or containing a match of it read as a regular
// expression.
func NewEvaluator(rule Rule, logger *slog.Logger) (*Evaluator, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Evaluator{rule: rule, logger: logger}
	for _, p := range rule.Patterns {
		m, err := pattern.ParseLoose(p)
		if err != nil {
			return nil, fmt.Errorf("ignore pattern: %w", err)
		}
		e.patterns = append(e.patterns, m)
	}
	return e, nil
}

// Check returns the first rule exempting s, in the order class, interface,
// local scope, name pattern.
func (e *Evaluator) Check(s Subject) Reason {
	if e == nil {
		return NotExempt
	}
	reason := e.check(s)
	if reason != NotExempt {
		e.logger.Debug("exempt", "identifier", s.Identifier, "file", s.FilePath, "reason", reason)
	}
	return reason
}

func (e *Evaluator) check(s Subject) Reason {
	if sc := s.Scope; sc != nil {
		switch e.rule.Classes {
		case ClassesAll:
			if sc.InClass() {
				return ByClass
			}
		case ClassesFieldsOnly:
			if sc.InClass() && sc.InClassField() {
				return ByClass
			}
		}
		if e.rule.Interfaces && sc.InInterface() {
			return ByInterface
		}
		if e.rule.LocalMutation && sc.IsLocal() && !sc.EscapesLocalScope() {
			return ByLocalScope
		}
	}
	for _, m := range e.patterns {
		if (s.Identifier != "" && m.Match(s.Identifier)) || (s.FilePath != "" && m.Match(s.FilePath)) {
			return ByPattern
		}
	}
	return NotExempt
}

// Exempt reports whether any rule exempts s.
func (e *Evaluator) Exempt(s Subject) bool { return e.Check(s) != NotExempt }
