package immutability

import (
	"log/slog"
	"math"

	"github.com/frroossst/readonlylint/typenode"
)

// Qualifier is the readonly qualification a wrapper type applies to its
// argument.
type Qualifier int

const (
	QualifyNone Qualifier = iota
	// QualifyShallow makes the top level readonly; nested slots keep their
	// own modifiers.
	QualifyShallow
	// QualifyDeep makes every nested container readonly.
	QualifyDeep
)

func (q Qualifier) String() string {
	switch q {
	case QualifyShallow:
		return "shallow"
	case QualifyDeep:
		return "deep"
	default:
		return "none"
	}
}

// Collection describes a mutable collection type.
type Collection struct {
	// Readonly names the readonly counterpart, used for fixes.
	Readonly string
	// WrapperReadonly is set when a shallow wrapper makes the collection
	// readonly. Readonly<T[]> is a readonly array, Readonly<Map<K, V>> still
	// exposes set.
	WrapperReadonly bool
}

// Collections lists the generic container types the classifier treats as
// sequences of their type arguments rather than resolving them.
type Collections struct {
	Mutable  map[string]Collection
	Readonly map[string]bool
}

// DefaultCollections returns the TypeScript standard library collections.
func DefaultCollections() Collections {
	return Collections{
		Mutable: map[string]Collection{
			"Array":   {Readonly: "ReadonlyArray", WrapperReadonly: true},
			"Map":     {Readonly: "ReadonlyMap"},
			"Set":     {Readonly: "ReadonlySet"},
			"WeakMap": {Readonly: "ReadonlyMap"},
			"WeakSet": {Readonly: "ReadonlySet"},
		},
		Readonly: map[string]bool{
			"ReadonlyArray": true,
			"ReadonlyMap":   true,
			"ReadonlySet":   true,
		},
	}
}

// DefaultWrappers returns the wrapper types known without configuration.
func DefaultWrappers() map[string]Qualifier {
	return map[string]Qualifier{"Readonly": QualifyShallow}
}

// Classifier computes immutability levels. It holds only compiled,
// read-only configuration and is safe for concurrent use.
type Classifier struct {
	overrides   *Registry
	wrappers    map[string]Qualifier
	collections Collections
	logger      *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithWrappers adds wrapper types, replacing defaults of the same name.
func WithWrappers(wrappers map[string]Qualifier) Option {
	return func(c *Classifier) {
		for name, q := range wrappers {
			c.wrappers[name] = q
		}
	}
}

// WithCollections replaces the recognized collections.
func WithCollections(collections Collections) Option {
	return func(c *Classifier) { c.collections = collections }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClassifier returns a classifier consulting overrides before structure.
// A nil registry means no overrides.
func NewClassifier(overrides *Registry, opts ...Option) *Classifier {
	c := &Classifier{
		overrides:   overrides,
		wrappers:    DefaultWrappers(),
		collections: DefaultCollections(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of Analyze. Uncertain is set when any part of the
// type could not be modelled or resolved.
type Result struct {
	Level     Level
	Uncertain bool
}

// Classify returns the immutability level of n.
func (c *Classifier) Classify(n typenode.Node, resolver typenode.Resolver) Level {
	return c.Analyze(n, resolver).Level
}

// Analyze classifies n and reports whether the answer relied on an
// unknown or unresolvable part.
func (c *Classifier) Analyze(n typenode.Node, resolver typenode.Resolver) Result {
	r := &run{
		Classifier: c,
		resolver:   resolver,
		memo:       make(map[refKey]Level),
		visiting:   make(map[refKey]int),
		open:       make(map[string]int),
		onStack:    make(map[typenode.Node]bool),
		assumed:    noAssumption,
	}
	level := r.classify(n, QualifyNone)
	return Result{Level: level, Uncertain: r.uncertain}
}

// IsCollection reports whether n is an array, a tuple or a recognized
// collection, looking through wrapper types.
func (c *Classifier) IsCollection(n typenode.Node) bool {
	switch n := n.(type) {
	case *typenode.Array, *typenode.Tuple:
		return true
	case *typenode.Reference:
		if _, ok := c.wrappers[n.Name]; ok && len(n.Args) == 1 {
			return c.IsCollection(n.Args[0])
		}
		_, mutable := c.collections.Mutable[n.Name]
		return mutable || c.collections.Readonly[n.Name]
	default:
		return false
	}
}

// MutableCollection reports whether n is written as a mutable array,
// tuple or collection, returning the readonly counterpart name for
// collections.
func (c *Classifier) MutableCollection(n typenode.Node) (string, bool) {
	switch n := n.(type) {
	case *typenode.Array:
		return "", !n.Readonly
	case *typenode.Tuple:
		return "", !n.Readonly
	case *typenode.Reference:
		coll, ok := c.collections.Mutable[n.Name]
		return coll.Readonly, ok
	default:
		return "", false
	}
}

type refKey struct {
	sig string
	q   Qualifier
}

// maxExpansions bounds how often one declaration may be open at once. A
// generic that refers to itself with growing arguments never repeats a
// signature, so the signature guard alone would not stop it.
const maxExpansions = 8

// run is the state of one top-level Analyze call.
type run struct {
	*Classifier
	resolver typenode.Resolver
	memo     map[refKey]Level
	// visiting holds the depth at which each open reference was entered.
	visiting map[refKey]int
	open     map[string]int
	onStack  map[typenode.Node]bool
	depth    int
	// assumed is the shallowest open depth whose optimistic answer the
	// current subtree relied on. Results below it are not memoized.
	assumed   int
	uncertain bool
}

func (r *run) classify(n typenode.Node, q Qualifier) Level {
	if n == nil {
		r.uncertain = true
		return Mutable
	}
	if r.onStack[n] {
		return Immutable
	}
	r.onStack[n] = true
	defer delete(r.onStack, n)

	inner := QualifyNone
	if q == QualifyDeep {
		inner = QualifyDeep
	}

	switch n := n.(type) {
	case *typenode.Primitive, *typenode.Literal, *typenode.Function:
		return Immutable
	case *typenode.Unknown:
		r.uncertain = true
		return Mutable
	case *typenode.Array:
		return container(n.Readonly || q != QualifyNone, r.classify(n.Element, inner))
	case *typenode.Tuple:
		return container(n.Readonly || q != QualifyNone, r.all(n.Elements, inner))
	case *typenode.Object:
		return r.object(n, q, inner)
	case *typenode.Union:
		level := Immutable
		for _, m := range n.Members {
			level = Min(level, r.classify(m, q))
		}
		return level
	case *typenode.Intersection:
		if len(n.Members) == 0 {
			return Immutable
		}
		level := Mutable
		for _, m := range n.Members {
			level = Max(level, r.classify(m, q))
		}
		return level
	case *typenode.Reference:
		return r.reference(n, q, inner)
	default:
		r.uncertain = true
		return Mutable
	}
}

// container applies the escalation rule to a slot holding values of level
// elem.
func container(readonly bool, elem Level) Level {
	switch {
	case !readonly:
		return Mutable
	case elem == Immutable:
		return Immutable
	case elem >= ReadonlyDeep:
		return ReadonlyDeep
	default:
		return ReadonlyShallow
	}
}

// all returns the minimum level over nodes, Immutable when empty.
func (r *run) all(nodes []typenode.Node, q Qualifier) Level {
	level := Immutable
	for _, m := range nodes {
		level = Min(level, r.classify(m, q))
	}
	return level
}

func (r *run) object(n *typenode.Object, q, inner Qualifier) Level {
	if len(n.Fields) == 0 && n.Index == nil {
		return Immutable
	}
	level := Immutable
	for _, f := range n.Fields {
		level = Min(level, container(f.Readonly || q != QualifyNone, r.classify(f.Type, inner)))
	}
	if idx := n.Index; idx != nil {
		level = Min(level, container(idx.Readonly || q != QualifyNone, r.classify(idx.Value, inner)))
	}
	return level
}

func (r *run) reference(n *typenode.Reference, q, inner Qualifier) Level {
	sig := typenode.Signature(n)
	if level, ok := r.overrides.Lookup(n.Name, n.Qualified, sig); ok {
		r.logger.Debug("override applied", "type", sig, "level", level)
		return level
	}

	if wq, ok := r.wrappers[n.Name]; ok && len(n.Args) == 1 {
		return r.classify(n.Args[0], max(q, wq))
	}

	if r.collections.Readonly[n.Name] {
		return container(true, r.typeArgs(n, inner))
	}
	if coll, ok := r.collections.Mutable[n.Name]; ok {
		readonly := q == QualifyDeep || (q == QualifyShallow && coll.WrapperReadonly)
		return container(readonly, r.typeArgs(n, inner))
	}

	key := refKey{sig: sig, q: q}
	if level, ok := r.memo[key]; ok {
		return level
	}
	if d, ok := r.visiting[key]; ok {
		r.logger.Debug("cyclic reference assumed immutable", "type", sig)
		r.assumed = min(r.assumed, d)
		return Immutable
	}
	if r.open[n.Name] >= maxExpansions {
		r.logger.Debug("expanding reference assumed immutable", "type", sig)
		r.assumed = 0
		return Immutable
	}
	if r.resolver == nil {
		r.uncertain = true
		return Mutable
	}
	body, ok := r.resolver.Resolve(n)
	if !ok {
		r.logger.Debug("unresolved reference", "type", sig)
		r.uncertain = true
		return Mutable
	}

	r.depth++
	depth := r.depth
	outer := r.assumed
	r.assumed = noAssumption
	r.visiting[key] = depth
	r.open[n.Name]++

	level := r.classify(body, q)

	r.open[n.Name]--
	delete(r.visiting, key)
	r.depth--
	// an assumption about this reference itself is settled here
	if r.assumed >= depth {
		r.memo[key] = level
		r.assumed = noAssumption
	}
	r.assumed = min(outer, r.assumed)
	return level
}

const noAssumption = math.MaxInt

// typeArgs classifies the element types of a collection reference. A
// collection written without arguments has unknown elements.
func (r *run) typeArgs(n *typenode.Reference, q Qualifier) Level {
	if len(n.Args) == 0 {
		r.uncertain = true
		return Mutable
	}
	return r.all(n.Args, q)
}
