//go:build cgo

package tsfront

import (
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/frroossst/readonlylint/typenode"
)

// extractor reads one syntax tree. base is subtracted from every byte
// offset, for sources that were wrapped before parsing.
type extractor struct {
	src  []byte
	base int
}

func (x *extractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(x.src[n.StartByte():n.EndByte()])
}

func (x *extractor) span(n *sitter.Node) typenode.Span {
	return typenode.Span{Start: int(n.StartByte()) - x.base, End: int(n.EndByte()) - x.base}
}

func (x *extractor) source(n *sitter.Node) typenode.Source {
	return typenode.Source{Text: x.text(n), Span: x.span(n)}
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// hasToken reports whether n has a direct anonymous child spelled tok, such
// as the readonly keyword.
func hasToken(n *sitter.Node, tok string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && !c.IsNamed() && c.Type() == tok {
			return true
		}
	}
	return false
}

func hasChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && c.Type() == typ {
			return true
		}
	}
	return false
}

// annotated returns the type inside a type_annotation, or nil.
func annotated(n *sitter.Node) *sitter.Node {
	if n == nil || n.Type() != "type_annotation" {
		return nil
	}
	return n.NamedChild(0)
}

// typ converts a type expression.
func (x *extractor) typ(n *sitter.Node) typenode.Node {
	if n == nil {
		return &typenode.Unknown{Reason: "missing type"}
	}
	src := x.source(n)
	switch n.Type() {
	case "predefined_type":
		return &typenode.Primitive{Source: src, Name: src.Text}
	case "literal_type":
		return &typenode.Literal{Source: src, Value: src.Text}
	case "template_literal_type":
		return &typenode.Primitive{Source: src, Name: "string"}
	case "index_type_query":
		// keyof always yields property keys.
		return &typenode.Primitive{Source: src, Name: src.Text}
	case "type_identifier", "nested_type_identifier", "identifier":
		return &typenode.Reference{Source: src, Name: src.Text}
	case "generic_type":
		ref := &typenode.Reference{Source: src, Name: x.text(n.ChildByFieldName("name"))}
		for _, a := range namedChildren(n.ChildByFieldName("type_arguments")) {
			ref.Args = append(ref.Args, x.typ(a))
		}
		return ref
	case "array_type":
		return &typenode.Array{Source: src, Element: x.typ(n.NamedChild(0))}
	case "tuple_type":
		return &typenode.Tuple{Source: src, Elements: x.tupleElements(n)}
	case "readonly_type":
		inner := x.typ(n.NamedChild(0))
		switch t := inner.(type) {
		case *typenode.Array:
			t.Source, t.Readonly = src, true
		case *typenode.Tuple:
			t.Source, t.Readonly = src, true
		}
		return inner
	case "parenthesized_type":
		return x.typ(n.NamedChild(0))
	case "union_type":
		return &typenode.Union{Source: src, Members: x.flatten(n, "union_type", nil)}
	case "intersection_type":
		return &typenode.Intersection{Source: src, Members: x.flatten(n, "intersection_type", nil)}
	case "function_type", "constructor_type":
		return &typenode.Function{Source: src}
	case "object_type", "interface_body":
		return x.object(n)
	}
	return &typenode.Unknown{Source: src, Reason: n.Type()}
}

// flatten collects the members of a left-nested union or intersection.
func (x *extractor) flatten(n *sitter.Node, kind string, out []typenode.Node) []typenode.Node {
	for _, c := range namedChildren(n) {
		if c.Type() == kind {
			out = x.flatten(c, kind, out)
			continue
		}
		out = append(out, x.typ(c))
	}
	return out
}

func (x *extractor) tupleElements(n *sitter.Node) []typenode.Node {
	var out []typenode.Node
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "optional_type", "rest_type":
			out = append(out, x.typ(c.NamedChild(0)))
		case "named_tuple_member", "tuple_parameter", "optional_tuple_parameter":
			t := c.ChildByFieldName("type")
			if t == nil {
				t = c.NamedChild(int(c.NamedChildCount()) - 1)
			}
			if a := annotated(t); a != nil {
				t = a
			}
			out = append(out, x.typ(t))
		case "comment":
		default:
			out = append(out, x.typ(c))
		}
	}
	return out
}

// object converts a type literal or interface body. Methods count as
// readonly slots since they cannot carry the modifier. Call and construct
// signatures make no slot.
func (x *extractor) object(n *sitter.Node) *typenode.Object {
	obj := &typenode.Object{Source: x.source(n)}
	for _, m := range namedChildren(n) {
		switch m.Type() {
		case "property_signature":
			obj.Fields = append(obj.Fields, typenode.Field{
				Name:     x.text(m.ChildByFieldName("name")),
				Type:     x.typeOrAny(annotated(m.ChildByFieldName("type"))),
				Readonly: hasToken(m, "readonly"),
			})
		case "method_signature", "abstract_method_signature":
			obj.Fields = append(obj.Fields, typenode.Field{
				Name:     x.text(m.ChildByFieldName("name")),
				Type:     &typenode.Function{Source: x.source(m)},
				Readonly: true,
			})
		case "index_signature":
			obj.Index = x.index(m)
		}
	}
	return obj
}

func (x *extractor) index(n *sitter.Node) *typenode.IndexSignature {
	key := n.ChildByFieldName("index_type")
	keyType := typenode.Node(&typenode.Unknown{Reason: "mapped key"})
	if key != nil {
		keyType = x.typ(key)
	}
	return &typenode.IndexSignature{
		Key:      keyType,
		Value:    x.typeOrAny(annotated(n.ChildByFieldName("type"))),
		Readonly: hasToken(n, "readonly") && !hasToken(n, "-"),
	}
}

// typeOrAny converts n, treating a missing annotation as implicit any.
func (x *extractor) typeOrAny(n *sitter.Node) typenode.Node {
	if n == nil {
		return &typenode.Primitive{Name: "any"}
	}
	return x.typ(n)
}

func (x *extractor) typeParams(n *sitter.Node) []string {
	var out []string
	for _, p := range namedChildren(n) {
		if p.Type() != "type_parameter" {
			continue
		}
		name := p.ChildByFieldName("name")
		if name == nil {
			name = p.NamedChild(0)
		}
		out = append(out, x.text(name))
	}
	return out
}

// declarations collects the named types of a file: aliases, interfaces,
// classes and enums. The first declaration of a name wins.
func (x *extractor) declarations(root *sitter.Node) typenode.Declarations {
	decls := typenode.Declarations{}
	add := func(name string, d typenode.Declaration) {
		if _, ok := decls[name]; !ok && name != "" {
			decls[name] = d
		}
	}
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "type_alias_declaration":
			add(x.text(n.ChildByFieldName("name")), typenode.Declaration{
				Params: x.typeParams(n.ChildByFieldName("type_parameters")),
				Body:   x.typ(n.ChildByFieldName("value")),
			})
		case "interface_declaration":
			add(x.text(n.ChildByFieldName("name")), typenode.Declaration{
				Params: x.typeParams(n.ChildByFieldName("type_parameters")),
				Body:   x.interfaceBody(n),
			})
		case "class_declaration", "abstract_class_declaration":
			add(x.text(n.ChildByFieldName("name")), typenode.Declaration{
				Params: x.typeParams(n.ChildByFieldName("type_parameters")),
				Body:   x.classBody(n),
			})
		case "enum_declaration":
			name := x.text(n.ChildByFieldName("name"))
			add(name, typenode.Declaration{Body: &typenode.Primitive{Name: name}})
		}
		return true
	})
	return decls
}

// interfaceBody merges an interface with the interfaces it extends.
func (x *extractor) interfaceBody(n *sitter.Node) typenode.Node {
	var body typenode.Node = &typenode.Object{}
	var bases []typenode.Node
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "object_type", "interface_body":
			body = x.object(c)
		case "extends_type_clause", "extends_clause":
			for _, b := range namedChildren(c) {
				bases = append(bases, x.heritage(b))
			}
		}
	}
	if len(bases) == 0 {
		return body
	}
	return &typenode.Intersection{Members: append(bases, body)}
}

// heritage converts a base named in an extends clause. Older grammars
// spell these as expressions.
func (x *extractor) heritage(n *sitter.Node) typenode.Node {
	switch n.Type() {
	case "identifier", "member_expression":
		return &typenode.Reference{Source: x.source(n), Name: x.text(n)}
	}
	return x.typ(n)
}

// classBody models the instance side of a class.
func (x *extractor) classBody(n *sitter.Node) typenode.Node {
	obj := &typenode.Object{}
	for _, m := range namedChildren(n.ChildByFieldName("body")) {
		if hasToken(m, "static") {
			continue
		}
		switch m.Type() {
		case "public_field_definition", "field_definition":
			typ := x.typeOf(m.ChildByFieldName("type"), m.ChildByFieldName("value"))
			if typ == nil {
				typ = &typenode.Primitive{Name: "any"}
			}
			obj.Fields = append(obj.Fields, typenode.Field{
				Name:     x.text(m.ChildByFieldName("name")),
				Type:     typ,
				Readonly: hasToken(m, "readonly"),
			})
		case "method_definition":
			name := x.text(m.ChildByFieldName("name"))
			if name == "constructor" {
				obj.Fields = append(obj.Fields, x.parameterProperties(m)...)
				continue
			}
			obj.Fields = append(obj.Fields, typenode.Field{Name: name, Type: &typenode.Function{}, Readonly: true})
		case "index_signature":
			obj.Index = x.index(m)
		}
	}

	var bases []typenode.Node
	for _, c := range namedChildren(n) {
		if c.Type() != "class_heritage" {
			continue
		}
		for _, clause := range namedChildren(c) {
			if clause.Type() != "extends_clause" {
				continue
			}
			for _, b := range namedChildren(clause) {
				if b.Type() != "type_arguments" {
					bases = append(bases, x.heritage(b))
				}
			}
		}
	}
	if len(bases) == 0 {
		return obj
	}
	return &typenode.Intersection{Members: append(bases, obj)}
}

func (x *extractor) parameterProperties(ctor *sitter.Node) []typenode.Field {
	var out []typenode.Field
	for _, p := range namedChildren(ctor.ChildByFieldName("parameters")) {
		if !isParameterProperty(p) {
			continue
		}
		typ := x.typeOf(p.ChildByFieldName("type"), p.ChildByFieldName("value"))
		if typ == nil {
			typ = &typenode.Primitive{Name: "any"}
		}
		out = append(out, typenode.Field{
			Name:     x.text(p.ChildByFieldName("pattern")),
			Type:     typ,
			Readonly: hasToken(p, "readonly"),
		})
	}
	return out
}

func isParameterProperty(p *sitter.Node) bool {
	if p.Type() != "required_parameter" && p.Type() != "optional_parameter" {
		return false
	}
	return hasChild(p, "accessibility_modifier") || hasChild(p, "override_modifier") || hasToken(p, "readonly")
}

// typeOf is the annotated type, or else the type inferred from value, or
// nil when neither is available.
func (x *extractor) typeOf(annotation, value *sitter.Node) typenode.Node {
	if t := annotated(annotation); t != nil {
		return x.typ(t)
	}
	if value != nil {
		return x.infer(value)
	}
	return nil
}

// walk visits n and its named descendants in source order. visit returns
// false to skip a node's children.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}

// propertyKey drops the quotes of a string key that is a plain
// identifier. Other keys keep their source form.
func propertyKey(key string) string {
	if len(key) < 2 || (key[0] != '"' && key[0] != '\'') || key[len(key)-1] != key[0] {
		return key
	}
	name := key[1 : len(key)-1]
	for i, r := range name {
		if r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return key
	}
	if name == "" {
		return key
	}
	return name
}
