package immutablecheck

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
)

const escapeSrc = `package p

var sink []string

type holder struct{ items []string }

func keep(xs []string) { xs[0] = "a" }
func ret(ys []string) []string { return ys }
func global(zs []string) { sink = zs }
func copied(ws []string) []string { c := ws; return c }
func copiedVar(vs []string) []string { var c = vs; return c }
func sent(us []string, ch chan []string) { ch <- us }
func captured(ts []string, run func(func())) { run(func() { ts[0] = "b" }) }
func goroutine(rs []string) { go func() { rs[0] = "c" }() }
func shadow(qs []string) { local := qs; _ = local }
func boxed(ps []string) *holder { return &holder{items: ps} }
func nested(os []string) [][]string { return [][]string{os} }
func resliced(ns []string) []string { return ns[:1] }
func wrapped(ms []string) int { h := holder{items: ms}; return len(h.items) }
`

func TestEscapes(t *testing.T) {
	_, f, _, info := check(t, escapeSrc)

	escapes := map[string]bool{}
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		param := fn.Type.Params.List[0].Names[0]
		escapes[param.Name] = newEscapeCheck(info, fn).escapes(info.Defs[param])
	}
	assert.Equal(t, map[string]bool{
		"xs": false,
		"ys": true,
		"zs": true,
		"ws": true,
		"vs": true,
		"us": true,
		"ts": true,
		"rs": true,
		"qs": false,
		"ps": true,
		"os": true,
		"ns": true,
		"ms": false,
	}, escapes)
}

func TestScope(t *testing.T) {
	s := scope{local: true}
	assert.True(t, s.IsLocal())
	assert.False(t, s.EscapesLocalScope())

	s.escapes = true
	assert.True(t, s.EscapesLocalScope())

	assert.False(t, scope{escapes: true}.EscapesLocalScope())
}
