package immutablecheck

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/frroossst/readonlylint/enforce"
	"github.com/frroossst/readonlylint/typenode"
)

// sourceFile is an analyzed file and its content.
type sourceFile struct {
	ast     *ast.File
	tok     *token.File
	content []byte
}

// targetCollector turns the declarations of a package into targets.
type targetCollector struct {
	pass    *analysis.Pass
	files   map[*token.File]*sourceFile
	targets []enforce.Target
}

func newTargetCollector(pass *analysis.Pass, files []*sourceFile) *targetCollector {
	tc := &targetCollector{pass: pass, files: make(map[*token.File]*sourceFile, len(files))}
	for _, f := range files {
		tc.files[f.tok] = f
	}
	return tc
}

func (tc *targetCollector) fileOf(pos token.Pos) *sourceFile {
	return tc.files[tc.pass.Fset.File(pos)]
}

func (tc *targetCollector) anchor(n ast.Node) enforce.Anchor {
	p := tc.pass.Fset.PositionFor(n.Pos(), false)
	end := tc.pass.Fset.PositionFor(n.End(), false)
	return enforce.Anchor{
		File:   p.Filename,
		Span:   typenode.Span{Start: p.Offset, End: end.Offset},
		Line:   p.Line,
		Column: p.Column,
	}
}

// typeOf converts the type of an object, attaching the text of expr when
// the type was written out.
func (tc *targetCollector) typeOf(t types.Type, expr ast.Expr) typenode.Node {
	n := convert(t)
	if expr == nil {
		return n
	}
	f := tc.fileOf(expr.Pos())
	if f == nil {
		return n
	}
	start, end := f.tok.Offset(expr.Pos()), f.tok.Offset(expr.End())
	return withSource(n, typenode.Source{Text: string(f.content[start:end]), Span: typenode.Span{Start: start, End: end}})
}

func (tc *targetCollector) add(t enforce.Target) {
	t.Resolver = resolver
	tc.targets = append(tc.targets, t)
}

// enclosingFunc returns the innermost function in stack, excluding the top.
func enclosingFunc(stack []ast.Node) ast.Node {
	for i := len(stack) - 2; i >= 0; i-- {
		switch stack[i].(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			return stack[i]
		}
	}
	return nil
}

func (tc *targetCollector) collect(insp *inspector.Inspector) []enforce.Target {
	filter := []ast.Node{
		(*ast.FuncDecl)(nil),
		(*ast.FuncLit)(nil),
		(*ast.TypeSpec)(nil),
		(*ast.ValueSpec)(nil),
		(*ast.AssignStmt)(nil),
	}
	insp.WithStack(filter, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		switch n := n.(type) {
		case *ast.FuncDecl:
			name := n.Name.Name
			tc.signature(n, name, n.Type, scope{inClass: n.Recv != nil})
		case *ast.FuncLit:
			tc.signature(n, "", n.Type, scope{})
		case *ast.TypeSpec:
			tc.typeSpec(n)
		case *ast.ValueSpec:
			tc.valueSpec(n, enclosingFunc(stack))
		case *ast.AssignStmt:
			if n.Tok == token.DEFINE {
				tc.define(n, enclosingFunc(stack))
			}
		}
		return true
	})
	return tc.targets
}

// signature adds the parameters and results of a function. fn is the
// function whose body the parameters live in, or nil for interface methods.
func (tc *targetCollector) signature(fn ast.Node, name string, ft *ast.FuncType, sc scope) {
	info := tc.pass.TypesInfo
	if ft.Params != nil {
		for _, field := range ft.Params.List {
			for _, ident := range fieldNames(field) {
				obj := info.Defs[ident]
				if ident != nil && (ident.Name == "_" || obj == nil) {
					continue
				}
				t := info.TypeOf(field.Type)
				if obj != nil {
					t = obj.Type()
				}
				if t == nil {
					continue
				}
				psc := sc
				if fn != nil {
					psc.local = true
					psc.escapes = newEscapeCheck(info, fn).escapes(obj)
				}
				at := ast.Node(field.Type)
				paramName := ""
				if ident != nil {
					at, paramName = ident, ident.Name
				}
				tc.add(enforce.Target{
					Position: enforce.Parameter,
					Anchor:   tc.anchor(at),
					Name:     paramName,
					Type:     tc.typeOf(t, field.Type),
					Explicit: true,
					Scope:    psc,
				})
			}
		}
	}

	if ft.Results != nil {
		for _, field := range ft.Results.List {
			t := info.TypeOf(field.Type)
			if t == nil {
				continue
			}
			for range fieldNames(field) {
				tc.add(enforce.Target{
					Position: enforce.ReturnType,
					Anchor:   tc.anchor(field.Type),
					Name:     name,
					Type:     tc.typeOf(t, field.Type),
					Explicit: true,
					Scope:    scope{inClass: sc.inClass, inInterface: sc.inInterface},
				})
			}
		}
	}
}

// fieldNames lists the names of a field, or a single nil for an unnamed
// one.
func fieldNames(f *ast.Field) []*ast.Ident {
	if len(f.Names) == 0 {
		return []*ast.Ident{nil}
	}
	return f.Names
}

func (tc *targetCollector) typeSpec(ts *ast.TypeSpec) {
	info := tc.pass.TypesInfo
	switch t := ts.Type.(type) {
	case *ast.StructType:
		for _, field := range t.Fields.List {
			ft := info.TypeOf(field.Type)
			if ft == nil {
				continue
			}
			for _, ident := range fieldNames(field) {
				name := ""
				at := ast.Node(field.Type)
				if ident != nil {
					name, at = ident.Name, ident
				}
				if name == "_" {
					continue
				}
				tc.add(enforce.Target{
					Position: enforce.Property,
					Anchor:   tc.anchor(at),
					Name:     name,
					Type:     tc.typeOf(ft, field.Type),
					Explicit: true,
					Scope:    scope{inClass: true, inClassField: true},
				})
			}
		}
	case *ast.InterfaceType:
		for _, m := range t.Methods.List {
			ft, ok := m.Type.(*ast.FuncType)
			if !ok || len(m.Names) == 0 {
				continue
			}
			tc.signature(nil, m.Names[0].Name, ft, scope{inInterface: true})
		}
	}
}

func (tc *targetCollector) valueSpec(vs *ast.ValueSpec, fn ast.Node) {
	info := tc.pass.TypesInfo
	for _, ident := range vs.Names {
		obj, ok := info.Defs[ident].(*types.Var)
		if !ok || ident.Name == "_" {
			continue
		}
		tc.variable(ident, obj, vs.Type, fn)
	}
}

func (tc *targetCollector) define(as *ast.AssignStmt, fn ast.Node) {
	info := tc.pass.TypesInfo
	for _, lhs := range as.Lhs {
		ident, ok := lhs.(*ast.Ident)
		if !ok || ident.Name == "_" {
			continue
		}
		// Redeclared names in a := are plain assignments.
		obj, ok := info.Defs[ident].(*types.Var)
		if !ok {
			continue
		}
		tc.variable(ident, obj, nil, fn)
	}
}

func (tc *targetCollector) variable(ident *ast.Ident, obj *types.Var, typeExpr ast.Expr, fn ast.Node) {
	sc := scope{}
	if fn != nil {
		sc.local = true
		sc.escapes = newEscapeCheck(tc.pass.TypesInfo, fn).escapes(obj)
	}
	tc.add(enforce.Target{
		Position: enforce.Variable,
		Anchor:   tc.anchor(ident),
		Name:     ident.Name,
		Type:     tc.typeOf(obj.Type(), typeExpr),
		Explicit: typeExpr != nil,
		Scope:    sc,
	})
}
