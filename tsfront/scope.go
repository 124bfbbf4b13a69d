//go:build cgo

package tsfront

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// scope is where a target sits, computed while its tree is alive.
type scope struct {
	inClass      bool
	inClassField bool
	inInterface  bool
	local        bool
	escapes      bool
}

func (s scope) InClass() bool           { return s.inClass }
func (s scope) InClassField() bool      { return s.inClassField }
func (s scope) InInterface() bool       { return s.inInterface }
func (s scope) IsLocal() bool           { return s.local }
func (s scope) EscapesLocalScope() bool { return s.local && s.escapes }

var functionTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function":                       true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
	"method_signature":               true,
	"abstract_method_signature":      true,
	"function_signature":             true,
	"call_signature":                 true,
	"construct_signature":            true,
}

func isClosure(n *sitter.Node) bool {
	switch n.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
		return true
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// function is an enclosing function and the names bound inside it.
type function struct {
	node   *sitter.Node
	locals map[string]bool
}

func (x *extractor) newFunction(n *sitter.Node) *function {
	fn := &function{node: n, locals: map[string]bool{}}
	walk(n, func(c *sitter.Node) bool {
		switch c.Type() {
		case "required_parameter", "optional_parameter":
			x.bind(fn, c.ChildByFieldName("pattern"))
		case "variable_declarator":
			x.bind(fn, c.ChildByFieldName("name"))
		case "function_declaration", "generator_function_declaration":
			if !sameNode(c, n) {
				x.bind(fn, c.ChildByFieldName("name"))
			}
		}
		return true
	})
	if p := n.ChildByFieldName("parameter"); p != nil {
		x.bind(fn, p)
	}
	return fn
}

func (x *extractor) bind(fn *function, pattern *sitter.Node) {
	walk(pattern, func(c *sitter.Node) bool {
		switch c.Type() {
		case "identifier", "shorthand_property_identifier_pattern":
			fn.locals[x.text(c)] = true
		}
		return true
	})
}

// unwrap strips parentheses and type assertions from an expression.
func unwrap(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			n = n.NamedChild(0)
		default:
			return n
		}
	}
	return nil
}

func (x *extractor) mentions(n *sitter.Node, name string) bool {
	found := false
	walk(n, func(c *sitter.Node) bool {
		if found {
			return false
		}
		if (c.Type() == "identifier" || c.Type() == "shorthand_property_identifier") && x.text(c) == name {
			found = true
		}
		return true
	})
	return found
}

// carries reports whether evaluating v hands out name: v is name itself, a
// closure capturing it, or a literal or conditional holding either.
func (x *extractor) carries(v *sitter.Node, name string) bool {
	v = unwrap(v)
	if v == nil {
		return false
	}
	switch v.Type() {
	case "identifier", "shorthand_property_identifier":
		return x.text(v) == name
	case "object", "array":
		for _, c := range namedChildren(v) {
			if x.carries(c, name) {
				return true
			}
		}
		return false
	case "pair":
		return x.carries(v.ChildByFieldName("value"), name)
	case "spread_element":
		return x.carries(v.NamedChild(0), name)
	case "ternary_expression":
		return x.carries(v.ChildByFieldName("consequence"), name) ||
			x.carries(v.ChildByFieldName("alternative"), name)
	}
	return isClosure(v) && x.mentions(v, name)
}

// localBinding returns the name assigned to when left is a binding of fn.
func (x *extractor) localBinding(fn *function, left *sitter.Node) (string, bool) {
	left = unwrap(left)
	if left == nil || left.Type() != "identifier" {
		return "", false
	}
	name := x.text(left)
	return name, fn.locals[name]
}

// escapes reports whether name leaves fn: it is returned, assigned to a
// member or a non-local binding, or captured by a closure that is itself
// returned, assigned or passed along. Values copied into other locals are
// followed. Returns from nested closures count as escapes.
func (x *extractor) escapes(fn *function, name string, seen map[string]bool) bool {
	if fn == nil || seen[name] {
		return false
	}
	seen[name] = true

	escaped := false
	walk(fn.node, func(n *sitter.Node) bool {
		if escaped {
			return false
		}
		switch n.Type() {
		case "return_statement":
			if x.carries(n.NamedChild(0), name) {
				escaped = true
			}
		case "arrow_function":
			if body := n.ChildByFieldName("body"); body != nil && body.Type() != "statement_block" && x.carries(body, name) {
				escaped = true
			}
		case "assignment_expression", "augmented_assignment_expression":
			right := n.ChildByFieldName("right")
			if !x.carries(right, name) {
				break
			}
			if local, ok := x.localBinding(fn, n.ChildByFieldName("left")); ok {
				escaped = x.escapes(fn, local, seen)
			} else {
				escaped = true
			}
		case "variable_declarator":
			decl := n.ChildByFieldName("name")
			if decl != nil && decl.Type() == "identifier" && x.carries(n.ChildByFieldName("value"), name) {
				escaped = x.escapes(fn, x.text(decl), seen)
			}
		case "arguments":
			for _, a := range namedChildren(n) {
				if v := unwrap(a); v != nil && isClosure(v) && x.mentions(v, name) {
					escaped = true
				}
			}
		}
		return true
	})
	return escaped
}
