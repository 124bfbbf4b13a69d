//go:build cgo

package tsfront

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/frroossst/readonlylint/typenode"
)

// collectionConstructors are the built-ins whose construction is inferred
// as a reference to the collection.
var collectionConstructors = map[string]bool{
	"Array": true, "Map": true, "Set": true, "WeakMap": true, "WeakSet": true,
}

// infer returns the type TypeScript would infer for an initializer, or nil
// when the expression is not one the frontend models. Inferred nodes carry
// no source, so printing them synthesizes the type text.
func (x *extractor) infer(n *sitter.Node) typenode.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "parenthesized_expression", "satisfies_expression", "non_null_expression":
		return x.infer(n.NamedChild(0))
	case "as_expression":
		if isConst(n) {
			return x.inferConst(n.NamedChild(0))
		}
		if t := n.NamedChild(1); t != nil {
			return x.typ(t)
		}
		return nil
	case "string", "template_string":
		return &typenode.Primitive{Name: "string"}
	case "number":
		return &typenode.Primitive{Name: "number"}
	case "true", "false":
		return &typenode.Primitive{Name: "boolean"}
	case "null":
		return &typenode.Literal{Value: "null"}
	case "undefined":
		return &typenode.Primitive{Name: "undefined"}
	case "array":
		return &typenode.Array{Element: x.elementType(namedChildren(n), false)}
	case "object":
		return x.inferObject(n, false)
	case "new_expression":
		ctor := n.ChildByFieldName("constructor")
		name := x.text(ctor)
		if !collectionConstructors[name] {
			return nil
		}
		ref := &typenode.Reference{Name: name}
		for _, a := range namedChildren(n.ChildByFieldName("type_arguments")) {
			ref.Args = append(ref.Args, x.typ(a))
		}
		return ref
	}
	return nil
}

// isConst reports an "as const" assertion, where const is a keyword token
// rather than a type.
func isConst(as *sitter.Node) bool { return hasToken(as, "const") }

// inferElement types a nested value. Unmodelled expressions are Unknown.
func (x *extractor) inferElement(n *sitter.Node, asConst bool) typenode.Node {
	if n == nil {
		return &typenode.Unknown{Reason: "missing value"}
	}
	var t typenode.Node
	if asConst {
		t = x.inferConst(n)
	} else {
		t = x.infer(n)
	}
	if t == nil {
		return &typenode.Unknown{Reason: "cannot infer " + n.Type()}
	}
	return t
}

// elementType is the union of the distinct element types.
func (x *extractor) elementType(elems []*sitter.Node, asConst bool) typenode.Node {
	var members []typenode.Node
	seen := map[string]bool{}
	for _, e := range elems {
		if e.Type() == "comment" {
			continue
		}
		t := x.inferElement(e, asConst)
		sig := typenode.Signature(t)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		members = append(members, t)
	}
	switch len(members) {
	case 0:
		return &typenode.Primitive{Name: "any"}
	case 1:
		return members[0]
	}
	return &typenode.Union{Members: members}
}

func (x *extractor) inferObject(n *sitter.Node, asConst bool) typenode.Node {
	obj := &typenode.Object{}
	for _, m := range namedChildren(n) {
		switch m.Type() {
		case "pair":
			obj.Fields = append(obj.Fields, typenode.Field{
				Name:     propertyKey(x.text(m.ChildByFieldName("key"))),
				Type:     x.inferElement(m.ChildByFieldName("value"), asConst),
				Readonly: asConst,
			})
		case "shorthand_property_identifier":
			obj.Fields = append(obj.Fields, typenode.Field{
				Name:     x.text(m),
				Type:     &typenode.Unknown{Reason: "cannot infer identifier"},
				Readonly: asConst,
			})
		case "method_definition":
			obj.Fields = append(obj.Fields, typenode.Field{
				Name:     x.text(m.ChildByFieldName("name")),
				Type:     &typenode.Function{},
				Readonly: asConst,
			})
		case "spread_element":
			return &typenode.Unknown{Reason: "object spread"}
		}
	}
	return obj
}

// inferConst types a value under an as-const assertion: literals keep
// their value and every container becomes readonly.
func (x *extractor) inferConst(n *sitter.Node) typenode.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "parenthesized_expression":
		return x.inferConst(n.NamedChild(0))
	case "string", "number", "true", "false", "null":
		return &typenode.Literal{Value: x.text(n)}
	case "array":
		t := &typenode.Tuple{Readonly: true}
		for _, e := range namedChildren(n) {
			if e.Type() != "comment" {
				t.Elements = append(t.Elements, x.inferElement(e, true))
			}
		}
		return t
	case "object":
		return x.inferObject(n, true)
	}
	return x.infer(n)
}
