package immutablecheck

import (
	"go/ast"
	"go/token"
	"go/types"
)

// scope places a target for the ignore rules. Struct types stand in for
// classes and interface types for interfaces.
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

func stripParens(expr ast.Expr) ast.Expr {
	for {
		p, ok := expr.(*ast.ParenExpr)
		if !ok {
			return expr
		}
		expr = p.X
	}
}

func isBlank(expr ast.Expr) bool {
	ident, ok := stripParens(expr).(*ast.Ident)
	return ok && ident.Name == "_"
}

// escapeCheck finds where the value of a local leaves its function.
type escapeCheck struct {
	info *types.Info
	fn   ast.Node
	seen map[types.Object]bool
}

func newEscapeCheck(info *types.Info, fn ast.Node) *escapeCheck {
	return &escapeCheck{info: info, fn: fn, seen: make(map[types.Object]bool)}
}

// local returns the variable lhs assigns to when it is declared inside the
// function, or nil for fields, elements and package variables.
func (e *escapeCheck) local(lhs ast.Expr) types.Object {
	ident, ok := stripParens(lhs).(*ast.Ident)
	if !ok {
		return nil
	}
	obj := e.info.ObjectOf(ident)
	if _, ok := obj.(*types.Var); !ok {
		return nil
	}
	if obj.Pos() < e.fn.Pos() || obj.Pos() >= e.fn.End() {
		return nil
	}
	return obj
}

func (e *escapeCheck) mentions(n ast.Node, obj types.Object) bool {
	found := false
	ast.Inspect(n, func(n ast.Node) bool {
		if ident, ok := n.(*ast.Ident); ok && e.info.Uses[ident] == obj {
			found = true
		}
		return !found
	})
	return found
}

// carries reports whether evaluating expr hands out obj: expr is obj itself,
// a function literal capturing it, or a composite, address or slice of
// either.
func (e *escapeCheck) carries(expr ast.Expr, obj types.Object) bool {
	switch x := stripParens(expr).(type) {
	case *ast.Ident:
		return e.info.Uses[x] == obj
	case *ast.FuncLit:
		return e.mentions(x.Body, obj)
	case *ast.CompositeLit:
		for _, elt := range x.Elts {
			if e.carries(elt, obj) {
				return true
			}
		}
	case *ast.KeyValueExpr:
		return e.carries(x.Value, obj)
	case *ast.UnaryExpr:
		return x.Op == token.AND && e.carries(x.X, obj)
	case *ast.SliceExpr:
		return e.carries(x.X, obj)
	}
	return false
}

// escapes reports whether obj is returned, sent, assigned to anything but a
// local, or captured by a function literal that is passed along or run as
// a goroutine. Copies into other locals are followed.
func (e *escapeCheck) escapes(obj types.Object) bool {
	if obj == nil || e.seen[obj] {
		return false
	}
	e.seen[obj] = true

	found := false
	ast.Inspect(e.fn, func(n ast.Node) bool {
		if found {
			return false
		}
		switch n := n.(type) {
		case *ast.ReturnStmt:
			for _, r := range n.Results {
				if e.carries(r, obj) {
					found = true
				}
			}
		case *ast.AssignStmt:
			for i, r := range n.Rhs {
				if i >= len(n.Lhs) || !e.carries(r, obj) || isBlank(n.Lhs[i]) {
					continue
				}
				if local := e.local(n.Lhs[i]); local != nil {
					found = found || e.escapes(local)
				} else {
					found = true
				}
			}
		case *ast.ValueSpec:
			for i, v := range n.Values {
				if i < len(n.Names) && e.carries(v, obj) {
					found = found || e.escapes(e.info.Defs[n.Names[i]])
				}
			}
		case *ast.SendStmt:
			if e.carries(n.Value, obj) {
				found = true
			}
		case *ast.CallExpr:
			for _, a := range n.Args {
				if _, ok := stripParens(a).(*ast.FuncLit); ok && e.carries(a, obj) {
					found = true
				}
			}
		case *ast.GoStmt:
			if e.carries(n.Call.Fun, obj) {
				found = true
			}
		}
		return true
	})
	return found
}
