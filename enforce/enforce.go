// Package enforce compares the immutability of declared types against the
// level configured for their position and reports the gaps as violations.
package enforce

import (
	"fmt"
	"log/slog"

	"github.com/frroossst/readonlylint/fixer"
	"github.com/frroossst/readonlylint/ignore"
	"github.com/frroossst/readonlylint/immutability"
	"github.com/frroossst/readonlylint/typenode"
)

// Kind categorizes a violation.
type Kind string

const (
	MissingReadonlyQualifier Kind = "missing-readonly-qualifier"
	MutableCollectionType    Kind = "mutable-collection-type"
	ParameterNotImmutable    Kind = "parameter-not-immutable"
	ReturnTypeTooMutable     Kind = "return-type-too-mutable"
	PropertyNotReadonly      Kind = "property-not-readonly"
	ImplicitMutableInference Kind = "implicit-mutable-inference"
)

// Anchor locates a target in its file. Line and Column are 1-based.
type Anchor struct {
	File   string        `json:"file" yaml:"file"`
	Span   typenode.Span `json:"span" yaml:"span"`
	Line   int           `json:"line" yaml:"line"`
	Column int           `json:"column" yaml:"column"`
}

func (a Anchor) String() string { return fmt.Sprintf("%s:%d:%d", a.File, a.Line, a.Column) }

// Modifier describes a declaration that can carry its own readonly
// modifier: class fields, interface members and parameter properties.
type Modifier struct {
	Readonly bool
	// InsertAt is the byte offset where "readonly " goes.
	InsertAt int
}

// Target is one declaration handed over by a host.
type Target struct {
	Position Position
	Anchor   Anchor
	Name     string
	Type     typenode.Node
	// Explicit is set when the type was written by the user rather than
	// inferred.
	Explicit bool
	// AnnotateAt is the byte offset after the identifier where an inferred
	// type annotation is inserted. Zero disables annotation fixes.
	AnnotateAt int
	Modifier   *Modifier
	Scope      ignore.Scope
	Resolver   typenode.Resolver
}

// Violation is a gap between the required and the actual level. Fix and
// Suggestions are never both set.
type Violation struct {
	Anchor      Anchor             `json:"anchor" yaml:"anchor"`
	Position    Position           `json:"position" yaml:"position"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Kind        Kind               `json:"kind" yaml:"kind"`
	Required    immutability.Level `json:"required" yaml:"required"`
	Actual      immutability.Level `json:"actual" yaml:"actual"`
	Uncertain   bool               `json:"uncertain,omitempty" yaml:"uncertain,omitempty"`
	Fix         *fixer.Fix         `json:"fix,omitempty" yaml:"fix,omitempty"`
	Suggestions []fixer.Suggestion `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

var positionSubjects = map[Position]string{
	Parameter:  "Parameter",
	ReturnType: "Return type",
	Variable:   "Variable",
	Property:   "Property",
}

// Message is the human-readable description of v.
func (v Violation) Message() string {
	subject := positionSubjects[v.Position]
	if v.Kind == PropertyNotReadonly {
		return subject + " should have a readonly modifier."
	}
	msg := fmt.Sprintf("%s should have an immutability of at least %q (actual: %q).", subject, v.Required.String(), v.Actual.String())
	if v.Kind == ImplicitMutableInference {
		msg += " Its type is inferred."
	}
	if v.Uncertain {
		msg += " Part of the type could not be resolved."
	}
	return msg
}

// Engine evaluates targets. All collaborators are read-only, so one Engine
// can serve concurrent callers.
type Engine struct {
	cfg        Config
	classifier *immutability.Classifier
	ignore     *ignore.Evaluator
	fixer      *fixer.Engine
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an engine. A nil evaluator exempts nothing; a nil fixer
// proposes no edits.
func New(cfg Config, classifier *immutability.Classifier, ig *ignore.Evaluator, fx *fixer.Engine, opts ...Option) *Engine {
	if classifier == nil {
		classifier = immutability.NewClassifier(nil)
	}
	e := &Engine{
		cfg:        cfg,
		classifier: classifier,
		ignore:     ig,
		fixer:      fx,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the violation at t, or nil.
func (e *Engine) Evaluate(t Target) *Violation {
	subject := ignore.Subject{Identifier: t.Name, FilePath: t.Anchor.File, Scope: t.Scope}
	if e.ignore.Exempt(subject) {
		return nil
	}

	pc := e.cfg.For(t.Position)
	if pc.IgnoreInferredTypes && !t.Explicit {
		return nil
	}
	if pc.Required.Off {
		return nil
	}
	if pc.IgnoreCollections && e.classifier.IsCollection(t.Type) {
		return nil
	}
	required := pc.Required.Level

	if v := e.checkModifier(t, required); v != nil {
		return v
	}

	res := e.classifier.Analyze(t.Type, t.Resolver)
	if res.Level >= required {
		return nil
	}

	v := &Violation{
		Anchor:    t.Anchor,
		Position:  t.Position,
		Name:      t.Name,
		Kind:      e.kind(t),
		Required:  required,
		Actual:    res.Level,
		Uncertain: res.Uncertain,
	}
	p := e.propose(t, required)
	v.Fix, v.Suggestions = p.Fix, p.Suggestions

	e.logger.Debug("violation", "at", t.Anchor.String(), "kind", v.Kind, "required", required, "actual", res.Level)
	return v
}

// EvaluateAll evaluates targets in order and returns every violation.
func (e *Engine) EvaluateAll(targets []Target) []Violation {
	var out []Violation
	for _, t := range targets {
		if v := e.Evaluate(t); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// checkModifier reports a property or parameter property that lacks its own
// readonly modifier. The fix is unambiguous, so it is deterministic.
func (e *Engine) checkModifier(t Target, required immutability.Level) *Violation {
	if t.Modifier == nil || t.Modifier.Readonly || required < immutability.ReadonlyShallow {
		return nil
	}
	if t.Position != Property && t.Position != Parameter {
		return nil
	}
	at := typenode.Span{Start: t.Modifier.InsertAt, End: t.Modifier.InsertAt}
	return &Violation{
		Anchor:   t.Anchor,
		Position: t.Position,
		Name:     t.Name,
		Kind:     PropertyNotReadonly,
		Required: required,
		Actual:   immutability.Mutable,
		Fix: &fixer.Fix{
			Label: "Add readonly modifier.",
			Edit:  fixer.Edit{Span: at, NewText: "readonly "},
		},
	}
}

func (e *Engine) kind(t Target) Kind {
	switch {
	case !t.Explicit:
		return ImplicitMutableInference
	case t.Position == Parameter:
		return ParameterNotImmutable
	case t.Position == ReturnType:
		return ReturnTypeTooMutable
	}
	if _, ok := e.classifier.MutableCollection(t.Type); ok {
		return MutableCollectionType
	}
	return MissingReadonlyQualifier
}

func (e *Engine) propose(t Target, required immutability.Level) fixer.Proposal {
	if !t.Explicit {
		if t.AnnotateAt <= 0 || t.Type == nil {
			return fixer.Proposal{}
		}
		return e.fixer.Propose(fixer.Request{
			Level:  required,
			Text:   typenode.Print(t.Type),
			Span:   typenode.Span{Start: t.AnnotateAt, End: t.AnnotateAt},
			Insert: true,
		})
	}
	text := typenode.TextOf(t.Type)
	if text == "" {
		return fixer.Proposal{}
	}
	return e.fixer.Propose(fixer.Request{Level: required, Text: text, Span: typenode.SpanOf(t.Type)})
}
