// Package typenode models type expressions as a closed set of structural
// variants. Hosts (parsers, type checkers) build these graphs; the
// immutability classifier consumes them.
package typenode

// Kind identifies the variant of a Node.
type Kind int

const (
	KindPrimitive Kind = iota
	KindLiteral
	KindArray
	KindTuple
	KindObject
	KindUnion
	KindIntersection
	KindReference
	KindFunction
	KindUnknown
)

var kindNames = [...]string{
	KindPrimitive:    "primitive",
	KindLiteral:      "literal",
	KindArray:        "array",
	KindTuple:        "tuple",
	KindObject:       "object",
	KindUnion:        "union",
	KindIntersection: "intersection",
	KindReference:    "reference",
	KindFunction:     "function",
	KindUnknown:      "unknown",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Span is a half-open byte range into the file a node was read from.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool { return s.End <= s.Start }

// Source is the original text of a node and where it sits in its file.
// Synthesized nodes (inferred types) leave it zero.
type Source struct {
	Text string
	Span Span
}

func (s Source) source() Source { return s }

// Node is a type expression. The set of implementations is closed: only the
// variants declared in this package satisfy it.
type Node interface {
	Kind() Kind
	source() Source
}

// TextOf returns the source text n was parsed from, or "" for nil and
// synthesized nodes.
func TextOf(n Node) string {
	if n == nil {
		return ""
	}
	return n.source().Text
}

// SpanOf returns the span of n in its file.
func SpanOf(n Node) Span {
	if n == nil {
		return Span{}
	}
	return n.source().Span
}

// Primitive is a keyword type such as string, number or int64.
type Primitive struct {
	Source
	Name string
}

// Literal is a literal value type ("a", 1, true).
type Literal struct {
	Source
	Value string
}

// Array is a homogeneous sequence. Length is only meaningful when Fixed.
type Array struct {
	Source
	Element  Node
	Fixed    bool
	Length   int
	Readonly bool
}

// Tuple is a positional sequence.
type Tuple struct {
	Source
	Elements []Node
	Readonly bool
}

// Field is a named slot of an Object.
type Field struct {
	Name     string
	Type     Node
	Readonly bool
}

// IndexSignature is the keyed slot of an Object (maps, dictionaries).
type IndexSignature struct {
	Key      Node
	Value    Node
	Readonly bool
}

// Object is a structural record type.
type Object struct {
	Source
	Fields []Field
	Index  *IndexSignature
}

// Union is a value that may be any of Members.
type Union struct {
	Source
	Members []Node
}

// Intersection is a value that is all of Members at once.
type Intersection struct {
	Source
	Members []Node
}

// Reference names another type, possibly generic. Handle is opaque host
// data a Resolver may use to find the referenced declaration; it takes no
// part in signatures.
type Reference struct {
	Source
	Name string
	// Qualified, when set, names the type uniquely where Name may be shared
	// by unrelated declarations. Signatures use it in place of Name.
	Qualified string
	Args      []Node
	Handle    any
}

// Function is any callable type.
type Function struct {
	Source
}

// Unknown is a type the host could not model.
type Unknown struct {
	Source
	Reason string
}

func (*Primitive) Kind() Kind    { return KindPrimitive }
func (*Literal) Kind() Kind      { return KindLiteral }
func (*Array) Kind() Kind        { return KindArray }
func (*Tuple) Kind() Kind        { return KindTuple }
func (*Object) Kind() Kind       { return KindObject }
func (*Union) Kind() Kind        { return KindUnion }
func (*Intersection) Kind() Kind { return KindIntersection }
func (*Reference) Kind() Kind    { return KindReference }
func (*Function) Kind() Kind     { return KindFunction }
func (*Unknown) Kind() Kind      { return KindUnknown }
