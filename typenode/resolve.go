package typenode

// Resolver follows one level of indirection for a Reference.
type Resolver interface {
	Resolve(ref *Reference) (Node, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ref *Reference) (Node, bool)

func (f ResolverFunc) Resolve(ref *Reference) (Node, bool) { return f(ref) }

// Declaration is a named, possibly generic, type declaration.
type Declaration struct {
	Params []string
	Body   Node
}

// Declarations is a Resolver over a table of declarations keyed by name.
// Generic declarations are instantiated by substituting the reference's
// arguments for the declared parameters; missing arguments become Unknown.
type Declarations map[string]Declaration

func (d Declarations) Resolve(ref *Reference) (Node, bool) {
	decl, ok := d[ref.Name]
	if !ok || decl.Body == nil {
		return nil, false
	}
	if len(decl.Params) == 0 {
		return decl.Body, true
	}
	bindings := make(map[string]Node, len(decl.Params))
	for i, name := range decl.Params {
		if i < len(ref.Args) {
			bindings[name] = ref.Args[i]
		} else {
			bindings[name] = &Unknown{Reason: "missing type argument " + name}
		}
	}
	return Substitute(decl.Body, bindings), true
}

// Substitute returns a copy of n in which every argument-less Reference
// whose name is bound is replaced by its binding. Source text is kept on the
// copies, so fixes computed on a substituted graph still point at the
// declaration.
func Substitute(n Node, bindings map[string]Node) Node {
	if len(bindings) == 0 || n == nil {
		return n
	}
	switch n := n.(type) {
	case *Reference:
		if len(n.Args) == 0 {
			if b, ok := bindings[n.Name]; ok {
				return b
			}
		}
		c := *n
		c.Args = substituteAll(n.Args, bindings)
		return &c
	case *Array:
		c := *n
		c.Element = Substitute(n.Element, bindings)
		return &c
	case *Tuple:
		c := *n
		c.Elements = substituteAll(n.Elements, bindings)
		return &c
	case *Object:
		c := *n
		c.Fields = make([]Field, len(n.Fields))
		for i, f := range n.Fields {
			f.Type = Substitute(f.Type, bindings)
			c.Fields[i] = f
		}
		if n.Index != nil {
			idx := *n.Index
			idx.Key = Substitute(idx.Key, bindings)
			idx.Value = Substitute(idx.Value, bindings)
			c.Index = &idx
		}
		return &c
	case *Union:
		c := *n
		c.Members = substituteAll(n.Members, bindings)
		return &c
	case *Intersection:
		c := *n
		c.Members = substituteAll(n.Members, bindings)
		return &c
	default:
		return n
	}
}

func substituteAll(nodes []Node, bindings map[string]Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, m := range nodes {
		out[i] = Substitute(m, bindings)
	}
	return out
}
