//go:build cgo

package tsfront

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/frroossst/readonlylint/enforce"
	"github.com/frroossst/readonlylint/typenode"
)

// frame is the lexical context of the node being visited.
type frame struct {
	inClass     bool
	inInterface bool
	fn          *function
}

type collector struct {
	*extractor
	path     string
	resolver typenode.Resolver
	targets  []enforce.Target
}

func (c *collector) anchor(n *sitter.Node) enforce.Anchor {
	pt := n.StartPoint()
	return enforce.Anchor{
		File:   c.path,
		Span:   c.span(n),
		Line:   int(pt.Row) + 1,
		Column: int(pt.Column) + 1,
	}
}

func (c *collector) add(t enforce.Target) {
	t.Resolver = c.resolver
	c.targets = append(c.targets, t)
}

// annotateAfter is where an inferred annotation goes: after the name and
// any optional or definite-assignment marker that follows it.
func annotateAfter(decl, name *sitter.Node) int {
	at := int(name.EndByte())
	for i := 0; i < int(decl.ChildCount()); i++ {
		ch := decl.Child(i)
		if ch == nil || ch.IsNamed() || int(ch.StartByte()) != at {
			continue
		}
		if ch.Type() == "?" || ch.Type() == "!" {
			at = int(ch.EndByte())
		}
	}
	return at
}

// visit collects targets below n in source order.
func (c *collector) visit(n *sitter.Node, fr frame) {
	switch typ := n.Type(); {
	case functionTypes[typ]:
		fn := c.newFunction(n)
		c.function(n, fr, fn)
		fr.fn = fn
	case typ == "lexical_declaration" || typ == "variable_declaration":
		c.variables(n, fr)
	case typ == "public_field_definition" || typ == "field_definition":
		c.field(n, fr)
	case typ == "property_signature":
		c.propertySignature(n, fr)
	case typ == "index_signature":
		c.indexSignature(n, fr)
	case typ == "class_body":
		fr.inClass, fr.inInterface = true, false
	case typ == "object_type" || typ == "interface_body":
		fr.inInterface = true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child != nil {
			c.visit(child, fr)
		}
	}
}

func (c *collector) function(n *sitter.Node, fr frame, fn *function) {
	name := c.text(n.ChildByFieldName("name"))
	ctor := n.Type() == "method_definition" && name == "constructor"

	for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
		if p.Type() != "required_parameter" && p.Type() != "optional_parameter" {
			continue
		}
		c.parameter(p, fr, fn, ctor)
	}

	if rt := n.ChildByFieldName("return_type"); rt != nil {
		if t := annotated(rt); t != nil {
			c.add(enforce.Target{
				Position: enforce.ReturnType,
				Anchor:   c.anchor(t),
				Name:     name,
				Type:     c.typ(t),
				Explicit: true,
				Scope:    scope{inClass: fr.inClass, inInterface: fr.inInterface},
			})
		}
	}
}

func (c *collector) parameter(p *sitter.Node, fr frame, fn *function, ctor bool) {
	pattern := p.ChildByFieldName("pattern")
	if pattern == nil {
		return
	}
	t := enforce.Target{
		Position: enforce.Parameter,
		Anchor:   c.anchor(pattern),
		Name:     c.text(pattern),
	}
	if a := annotated(p.ChildByFieldName("type")); a != nil {
		t.Type, t.Explicit = c.typ(a), true
	} else if v := p.ChildByFieldName("value"); v != nil {
		if t.Type = c.infer(v); t.Type == nil {
			return
		}
		if pattern.Type() == "identifier" {
			t.AnnotateAt = annotateAfter(p, pattern) - c.base
		}
	} else {
		return
	}

	if ctor && isParameterProperty(p) {
		t.Modifier = &enforce.Modifier{Readonly: hasToken(p, "readonly"), InsertAt: int(pattern.StartByte()) - c.base}
		t.Scope = scope{inClass: true, inClassField: true}
	} else {
		t.Scope = scope{
			inClass:     fr.inClass,
			inInterface: fr.inInterface,
			local:       true,
			escapes:     c.escapes(fn, t.Name, map[string]bool{}),
		}
	}
	c.add(t)
}

func (c *collector) variables(n *sitter.Node, fr frame) {
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		if name == nil {
			continue
		}
		t := enforce.Target{
			Position: enforce.Variable,
			Anchor:   c.anchor(name),
			Name:     c.text(name),
		}
		if a := annotated(d.ChildByFieldName("type")); a != nil {
			t.Type, t.Explicit = c.typ(a), true
		} else if v := d.ChildByFieldName("value"); v != nil && name.Type() == "identifier" {
			if t.Type = c.infer(v); t.Type == nil {
				continue
			}
			t.AnnotateAt = annotateAfter(d, name) - c.base
		} else {
			continue
		}

		sc := scope{inClass: fr.inClass, inInterface: fr.inInterface}
		if fr.fn != nil {
			sc.local = true
			sc.escapes = c.escapes(fr.fn, t.Name, map[string]bool{})
		}
		t.Scope = sc
		c.add(t)
	}
}

// field handles class properties.
func (c *collector) field(n *sitter.Node, fr frame) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	t := enforce.Target{
		Position: enforce.Property,
		Anchor:   c.anchor(name),
		Name:     c.text(name),
		Modifier: &enforce.Modifier{Readonly: hasToken(n, "readonly"), InsertAt: int(name.StartByte()) - c.base},
		Scope:    scope{inClass: true, inClassField: true},
	}
	if a := annotated(n.ChildByFieldName("type")); a != nil {
		t.Type, t.Explicit = c.typ(a), true
	} else if v := n.ChildByFieldName("value"); v != nil {
		if t.Type = c.infer(v); t.Type == nil {
			return
		}
		t.AnnotateAt = annotateAfter(n, name) - c.base
	} else {
		return
	}
	c.add(t)
}

// propertySignature handles members of interfaces and type literals.
func (c *collector) propertySignature(n *sitter.Node, fr frame) {
	name := n.ChildByFieldName("name")
	a := annotated(n.ChildByFieldName("type"))
	if name == nil || a == nil {
		return
	}
	c.add(enforce.Target{
		Position: enforce.Property,
		Anchor:   c.anchor(name),
		Name:     c.text(name),
		Type:     c.typ(a),
		Explicit: true,
		Modifier: &enforce.Modifier{Readonly: hasToken(n, "readonly"), InsertAt: int(name.StartByte()) - c.base},
		Scope:    scope{inClass: fr.inClass, inInterface: fr.inInterface},
	})
}

// indexSignature handles index signatures. Mapped types have no key name
// and are left alone.
func (c *collector) indexSignature(n *sitter.Node, fr frame) {
	name := n.ChildByFieldName("name")
	a := annotated(n.ChildByFieldName("type"))
	if name == nil || a == nil {
		return
	}
	sc := scope{inClass: fr.inClass, inInterface: fr.inInterface}
	if fr.inClass && !fr.inInterface {
		sc.inClassField = true
	}
	c.add(enforce.Target{
		Position: enforce.Property,
		Anchor:   c.anchor(n),
		Name:     "[" + c.text(name) + "]",
		Type:     c.typ(a),
		Explicit: true,
		Modifier: &enforce.Modifier{Readonly: hasToken(n, "readonly"), InsertAt: int(n.StartByte()) - c.base},
		Scope:    sc,
	})
}
