package immutablecheck

import (
	"go/types"

	"github.com/frroossst/readonlylint/typenode"
)

// qualifiedName is how Go types are named to overrides: the package name,
// a dot and the type name, as in "time.Time". Packages sharing a name share
// these names.
func qualifiedName(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Name() + "." + obj.Name()
}

// pathName names a type by its package path, as in
// "example.com/app/model.Config", and is unique within a program.
func pathName(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

// convert models a Go type by what a holder of a value can change through
// it. Values are copied on assignment, so struct fields and array elements
// are readonly slots; slices, maps, pointers and channels share their
// contents and are writable.
func convert(t types.Type) typenode.Node {
	switch t := t.(type) {
	case *types.Basic:
		switch {
		case t.Kind() == types.UnsafePointer:
			return &typenode.Unknown{Reason: "unsafe.Pointer"}
		case t.Kind() == types.UntypedNil:
			return &typenode.Literal{Value: "nil"}
		}
		return &typenode.Primitive{Name: t.Name()}
	case *types.Slice:
		return &typenode.Array{Element: convert(t.Elem())}
	case *types.Array:
		return &typenode.Array{Element: convert(t.Elem()), Fixed: true, Length: int(t.Len()), Readonly: true}
	case *types.Map:
		return &typenode.Object{Index: &typenode.IndexSignature{Key: convert(t.Key()), Value: convert(t.Elem())}}
	case *types.Pointer:
		return &typenode.Object{Fields: []typenode.Field{{Name: "*", Type: convert(t.Elem())}}}
	case *types.Chan:
		return &typenode.Object{Fields: []typenode.Field{{Name: "<-", Type: convert(t.Elem())}}}
	case *types.Struct:
		obj := &typenode.Object{}
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			obj.Fields = append(obj.Fields, typenode.Field{Name: f.Name(), Type: convert(f.Type()), Readonly: true})
		}
		return obj
	case *types.Interface:
		if t.Empty() {
			return &typenode.Unknown{Reason: "empty interface"}
		}
		obj := &typenode.Object{}
		for i := 0; i < t.NumMethods(); i++ {
			obj.Fields = append(obj.Fields, typenode.Field{Name: t.Method(i).Name(), Type: &typenode.Function{}, Readonly: true})
		}
		return obj
	case *types.Signature:
		return &typenode.Function{}
	case *types.Named:
		ref := &typenode.Reference{Name: qualifiedName(t.Obj()), Qualified: pathName(t.Obj()), Handle: t}
		if args := t.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				ref.Args = append(ref.Args, convert(args.At(i)))
			}
		}
		return ref
	case *types.Alias:
		return convert(types.Unalias(t))
	case *types.TypeParam:
		return &typenode.Unknown{Reason: "type parameter " + t.Obj().Name()}
	}
	return &typenode.Unknown{Reason: "unsupported type"}
}

// resolver follows a named type to its underlying type.
var resolver = typenode.ResolverFunc(func(ref *typenode.Reference) (typenode.Node, bool) {
	named, ok := ref.Handle.(*types.Named)
	if !ok {
		return nil, false
	}
	return convert(named.Underlying()), true
})

// withSource attaches the declaration text of a top-level type.
func withSource(n typenode.Node, src typenode.Source) typenode.Node {
	switch n := n.(type) {
	case *typenode.Primitive:
		n.Source = src
	case *typenode.Literal:
		n.Source = src
	case *typenode.Array:
		n.Source = src
	case *typenode.Tuple:
		n.Source = src
	case *typenode.Object:
		n.Source = src
	case *typenode.Union:
		n.Source = src
	case *typenode.Intersection:
		n.Source = src
	case *typenode.Reference:
		n.Source = src
	case *typenode.Function:
		n.Source = src
	case *typenode.Unknown:
		n.Source = src
	}
	return n
}
