package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/frroossst/readonlylint/enforce"
	"github.com/frroossst/readonlylint/fixer"
	"github.com/frroossst/readonlylint/ignore"
	"github.com/frroossst/readonlylint/immutability"
)

// Engines is a compiled configuration. Everything in it is read-only and
// may be shared between goroutines.
type Engines struct {
	Policy     enforce.Config
	Overrides  *immutability.Registry
	Classifier *immutability.Classifier
	Ignore     *ignore.Evaluator
	Fixer      *fixer.Engine
	Enforcer   *enforce.Engine
}

// BuildOption adjusts compilation for a particular host.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger         *slog.Logger
	overrides      []immutability.Override
	classifierOpts []immutability.Option
	fixerOpts      []fixer.Option
}

// WithLogger sets the logger handed to every engine.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = logger }
}

// WithOverrides adds overrides consulted before the configured ones.
func WithOverrides(overrides ...immutability.Override) BuildOption {
	return func(o *buildOptions) { o.overrides = append(o.overrides, overrides...) }
}

// WithClassifierOptions passes options through to the classifier.
func WithClassifierOptions(opts ...immutability.Option) BuildOption {
	return func(o *buildOptions) { o.classifierOpts = append(o.classifierOpts, opts...) }
}

// WithFixerOptions passes options through to the fix engine.
func WithFixerOptions(opts ...fixer.Option) BuildOption {
	return func(o *buildOptions) { o.fixerOpts = append(o.fixerOpts, opts...) }
}

func parseOverrideLevel(s string) (immutability.Level, bool, error) {
	if strings.EqualFold(strings.TrimSpace(s), "calculate") {
		return immutability.Mutable, true, nil
	}
	level, err := immutability.ParseLevel(s)
	return level, false, err
}

// Build compiles f. Errors are *Error values, joined when there are
// several.
func (f *File) Build(opts ...BuildOption) (*Engines, error) {
	o := buildOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	var errs []error
	fail := func(field string, err error) { errs = append(errs, &Error{Field: field, Err: err}) }

	policy, err := f.Policy()
	if err != nil {
		errs = append(errs, err)
	}

	overrides := append([]immutability.Override(nil), o.overrides...)
	for i, ov := range f.Overrides {
		level, calculate, err := parseOverrideLevel(ov.Level)
		if err != nil {
			fail(fmt.Sprintf("overrides[%d].level", i), err)
			continue
		}
		overrides = append(overrides, immutability.Override{Pattern: ov.Pattern, Level: level, Calculate: calculate})
	}
	registry, err := immutability.NewRegistry(overrides)
	if err != nil {
		fail("overrides", err)
	}

	wrappers := make(map[string]immutability.Qualifier, len(f.Wrappers))
	for name, q := range f.Wrappers {
		switch strings.ToLower(q) {
		case "shallow":
			wrappers[name] = immutability.QualifyShallow
		case "deep":
			wrappers[name] = immutability.QualifyDeep
		default:
			fail("wrappers."+name, fmt.Errorf("qualifier must be shallow or deep, got %q", q))
		}
	}

	evaluator, err := ignore.NewEvaluator(ignore.Rule{
		Classes:       f.Ignore.Classes.Mode(),
		Interfaces:    f.Ignore.Interfaces,
		LocalMutation: f.Ignore.AllowLocalMutation,
		Patterns:      f.Ignore.Patterns,
	}, o.logger)
	if err != nil {
		fail("ignore.patterns", err)
	}

	rewrites, err := f.rewrites()
	if err != nil {
		errs = append(errs, err)
	}
	fx, err := fixer.New(rewrites, o.fixerOpts...)
	if err != nil {
		fail("fixer", err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	classifierOpts := append([]immutability.Option{
		immutability.WithWrappers(wrappers),
		immutability.WithLogger(o.logger),
	}, o.classifierOpts...)
	classifier := immutability.NewClassifier(registry, classifierOpts...)

	return &Engines{
		Policy:     policy,
		Overrides:  registry,
		Classifier: classifier,
		Ignore:     evaluator,
		Fixer:      fx,
		Enforcer:   enforce.New(policy, classifier, evaluator, fx, enforce.WithLogger(o.logger)),
	}, nil
}

// Policy resolves the per-position settings against the top-level ones.
func (f *File) Policy() (enforce.Config, error) {
	base := enforce.PositionConfig{
		Required:            enforce.Require(immutability.Immutable),
		IgnoreInferredTypes: f.IgnoreInferredTypes,
		IgnoreCollections:   f.IgnoreCollections,
	}
	if f.Enforcement != "" {
		e, err := enforce.ParseEnforcement(f.Enforcement)
		if err != nil {
			return enforce.Config{}, &Error{Field: "enforcement", Err: err}
		}
		base.Required = e
	}

	cfg := enforce.Uniform(base)
	positions := map[enforce.Position]*Position{
		enforce.Parameter:  f.Parameters,
		enforce.ReturnType: f.ReturnTypes,
		enforce.Variable:   f.Variables,
		enforce.Property:   f.Properties,
	}
	for pos, p := range positions {
		if p == nil {
			continue
		}
		pc := base
		if p.Enforcement != "" {
			e, err := enforce.ParseEnforcement(p.Enforcement)
			if err != nil {
				return enforce.Config{}, &Error{Field: pos.String() + ".enforcement", Err: err}
			}
			pc.Required = e
		}
		if p.IgnoreInferredTypes != nil {
			pc.IgnoreInferredTypes = *p.IgnoreInferredTypes
		}
		if p.IgnoreCollections != nil {
			pc.IgnoreCollections = *p.IgnoreCollections
		}
		cfg.Positions[pos] = pc
	}
	return cfg, nil
}

// rewrites merges the fixer and suggestions sections by level. A level
// named in either section replaces that level's built-ins.
func (f *File) rewrites() (fixer.Config, error) {
	out := fixer.Config{}
	keys := make([]string, 0, len(f.Fixer)+len(f.Suggestions))
	for k := range f.Fixer {
		keys = append(keys, k)
	}
	for k := range f.Suggestions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		level, err := immutability.ParseLevel(k)
		if err != nil {
			return nil, &Error{Field: "fixer." + k, Err: err}
		}
		rules := out[level]
		if fix, ok := f.Fixer[k]; ok {
			rules.Fix = fix
		}
		if sets, ok := f.Suggestions[k]; ok {
			rules.Suggest = sets
		}
		out[level] = rules
	}
	return out, nil
}
