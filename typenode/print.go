package typenode

import (
	"strconv"
	"strings"
)

// Signature renders n canonically: structurally identical graphs produce
// identical signatures regardless of the whitespace or spans they came from.
// References are not followed.
func Signature(n Node) string {
	p := printer{canonical: true, seen: make(map[Node]bool)}
	p.node(n)
	return p.sb.String()
}

// Print renders n as TypeScript-like type syntax. Nodes that carry source
// text print as that text; synthesized nodes print structurally.
func Print(n Node) string {
	p := printer{seen: make(map[Node]bool)}
	p.node(n)
	return p.sb.String()
}

type printer struct {
	sb        strings.Builder
	canonical bool
	seen      map[Node]bool
}

func (p *printer) node(n Node) {
	if n == nil {
		p.sb.WriteString("unknown")
		return
	}
	if !p.canonical {
		if text := TextOf(n); text != "" {
			p.sb.WriteString(text)
			return
		}
	}
	if p.seen[n] {
		p.sb.WriteString("...")
		return
	}
	p.seen[n] = true
	defer delete(p.seen, n)

	switch n := n.(type) {
	case *Primitive:
		p.sb.WriteString(n.Name)
	case *Literal:
		p.sb.WriteString(n.Value)
	case *Array:
		if n.Readonly {
			p.sb.WriteString("readonly ")
		}
		p.operand(n.Element)
		if n.Fixed {
			p.sb.WriteString("[" + strconv.Itoa(n.Length) + "]")
		} else {
			p.sb.WriteString("[]")
		}
	case *Tuple:
		if n.Readonly {
			p.sb.WriteString("readonly ")
		}
		p.sb.WriteByte('[')
		p.list(n.Elements, ", ")
		p.sb.WriteByte(']')
	case *Object:
		p.object(n)
	case *Union:
		p.list(n.Members, " | ")
	case *Intersection:
		p.list(n.Members, " & ")
	case *Reference:
		if p.canonical && n.Qualified != "" {
			p.sb.WriteString(n.Qualified)
		} else {
			p.sb.WriteString(n.Name)
		}
		if len(n.Args) > 0 {
			p.sb.WriteByte('<')
			p.list(n.Args, ", ")
			p.sb.WriteByte('>')
		}
	case *Function:
		if p.canonical {
			p.sb.WriteString("function")
		} else {
			p.sb.WriteString("(...args: unknown[]) => unknown")
		}
	case *Unknown:
		p.sb.WriteString("unknown")
	}
}

// operand prints an array element, parenthesising composite types.
func (p *printer) operand(n Node) {
	switch n.(type) {
	case *Union, *Intersection, *Function:
		p.sb.WriteByte('(')
		p.node(n)
		p.sb.WriteByte(')')
	default:
		p.node(n)
	}
}

func (p *printer) list(nodes []Node, sep string) {
	for i, m := range nodes {
		if i > 0 {
			p.sb.WriteString(sep)
		}
		p.node(m)
	}
}

func (p *printer) object(o *Object) {
	if len(o.Fields) == 0 && o.Index == nil {
		p.sb.WriteString("{}")
		return
	}
	p.sb.WriteString("{ ")
	first := true
	sep := func() {
		if !first {
			p.sb.WriteString("; ")
		}
		first = false
	}
	for _, f := range o.Fields {
		sep()
		if f.Readonly {
			p.sb.WriteString("readonly ")
		}
		p.sb.WriteString(f.Name)
		p.sb.WriteString(": ")
		p.node(f.Type)
	}
	if o.Index != nil {
		sep()
		if o.Index.Readonly {
			p.sb.WriteString("readonly ")
		}
		p.sb.WriteString("[key: ")
		p.node(o.Index.Key)
		p.sb.WriteString("]: ")
		p.node(o.Index.Value)
	}
	p.sb.WriteString(" }")
}
