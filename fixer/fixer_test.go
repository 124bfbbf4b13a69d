package fixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frroossst/readonlylint/immutability"
	"github.com/frroossst/readonlylint/internal/pattern"
	"github.com/frroossst/readonlylint/typenode"
)

func newEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	e, err := New(cfg, opts...)
	require.NoError(t, err)
	return e
}

// apply splices edit into src.
func apply(src string, e Edit) string {
	return src[:e.Span.Start] + e.NewText + src[e.Span.End:]
}

func TestShallowObjectIsSuggestedReadonly(t *testing.T) {
	src := "function foo(arg: { foo: string }) {}"
	text := "{ foo: string }"
	start := 18

	p := newEngine(t, nil).Propose(Request{
		Level: immutability.ReadonlyShallow,
		Text:  text,
		Span:  typenode.Span{Start: start, End: start + len(text)},
	})

	assert.Nil(t, p.Fix)
	require.Len(t, p.Suggestions, 1)
	assert.Equal(t, "Surround with Readonly.", p.Suggestions[0].Label)
	require.Len(t, p.Suggestions[0].Edits, 1)
	assert.Equal(t, "function foo(arg: Readonly<{ foo: string }>) {}", apply(src, p.Suggestions[0].Edits[0]))
}

func TestPrimitiveArrayGetsDeterministicFix(t *testing.T) {
	src := "let xs: string[] = []"
	p := newEngine(t, nil).Propose(Request{
		Level: immutability.Immutable,
		Text:  "string[]",
		Span:  typenode.Span{Start: 8, End: 16},
	})

	require.NotNil(t, p.Fix)
	assert.Empty(t, p.Suggestions)
	assert.Equal(t, "Prepend with readonly.", p.Fix.Label)
	assert.Equal(t, "let xs: readonly string[] = []", apply(src, p.Fix.Edit))
}

func TestBuiltinCollectionRewrites(t *testing.T) {
	e := newEngine(t, nil)

	p := e.Propose(Request{Level: immutability.ReadonlyDeep, Text: "Map<string, number>"})
	require.NotNil(t, p.Fix)
	assert.Equal(t, "ReadonlyMap<string, number>", p.Fix.Edit.NewText)
	assert.Equal(t, "Use ReadonlyMap instead of Map.", p.Fix.Label)

	p = e.Propose(Request{Level: immutability.ReadonlyShallow, Text: "Set<Foo>"})
	assert.Nil(t, p.Fix)
	require.Len(t, p.Suggestions, 2)
	assert.Equal(t, "ReadonlySet<Foo>", p.Suggestions[0].Edits[0].NewText)
	assert.Equal(t, "Readonly<Set<Foo>>", p.Suggestions[1].Edits[0].NewText)

	p = e.Propose(Request{Level: immutability.ReadonlyShallow, Text: "[string, Foo]"})
	require.Len(t, p.Suggestions, 2)
	assert.Equal(t, "readonly [string, Foo]", p.Suggestions[0].Edits[0].NewText)
	assert.Equal(t, "Prepend with readonly.", p.Suggestions[0].Label)
}

func TestDeepWrapperUnwrapsShallowWrapper(t *testing.T) {
	p := newEngine(t, nil).Propose(Request{Level: immutability.ReadonlyDeep, Text: "Readonly<{ foo: { bar: string } }>"})

	assert.Nil(t, p.Fix)
	require.Len(t, p.Suggestions, 1)
	assert.Equal(t, "ReadonlyDeep<{ foo: { bar: string } }>", p.Suggestions[0].Edits[0].NewText)
}

func TestMultilineTypeText(t *testing.T) {
	text := "{\n  foo: string\n}"
	p := newEngine(t, nil).Propose(Request{Level: immutability.ReadonlyShallow, Text: text})

	require.Len(t, p.Suggestions, 1)
	assert.Equal(t, "Readonly<"+text+">", p.Suggestions[0].Edits[0].NewText)
}

func TestDisjointSetsYieldIndependentGroups(t *testing.T) {
	src := "function f(a: Foo<Bar>) {}"
	start, end := 14, 22
	cfg := Config{
		immutability.ReadonlyDeep: {
			Suggest: [][]Pattern{
				{{Expr: `^Foo<(.+)>$`, Replace: `ReadonlyFoo<$1>`}},
				{{Expr: `^(.+)$`, Replace: `Frozen<$1>`, Label: "Freeze $1."}},
			},
		},
	}
	p := newEngine(t, cfg).Propose(Request{
		Level: immutability.ReadonlyDeep,
		Text:  src[start:end],
		Span:  typenode.Span{Start: start, End: end},
	})

	assert.Nil(t, p.Fix)
	require.Len(t, p.Suggestions, 2)
	assert.Equal(t, "Replace with: ReadonlyFoo<Bar>", p.Suggestions[0].Label)
	assert.Equal(t, "Freeze Foo<Bar>.", p.Suggestions[1].Label)

	// each group applies cleanly to the untouched source
	assert.Equal(t, "function f(a: ReadonlyFoo<Bar>) {}", apply(src, p.Suggestions[0].Edits[0]))
	assert.Equal(t, "function f(a: Frozen<Foo<Bar>>) {}", apply(src, p.Suggestions[1].Edits[0]))
}

func TestConfiguredLevelReplacesBuiltins(t *testing.T) {
	cfg := Config{
		immutability.Immutable: {Fix: []Pattern{{Expr: `^(.+)$`, Replace: `Immutable<$1>`}}},
	}
	e := newEngine(t, cfg)

	p := e.Propose(Request{Level: immutability.Immutable, Text: "string[]"})
	require.NotNil(t, p.Fix)
	assert.Equal(t, "Immutable<string[]>", p.Fix.Edit.NewText)

	// other levels keep their built-ins
	p = e.Propose(Request{Level: immutability.ReadonlyDeep, Text: "string[]"})
	require.NotNil(t, p.Fix)
	assert.Equal(t, "readonly string[]", p.Fix.Edit.NewText)
}

func TestWithoutBuiltins(t *testing.T) {
	p := newEngine(t, nil, WithoutBuiltins()).Propose(Request{Level: immutability.Immutable, Text: "string[]"})
	assert.True(t, p.Empty())
}

func TestFixTakesPrecedenceOverSuggestions(t *testing.T) {
	cfg := Config{
		immutability.ReadonlyShallow: {
			Fix:     []Pattern{{Expr: `^int$`, Replace: `never`}},
			Suggest: [][]Pattern{{{Expr: `^(.+)$`, Replace: `Readonly<$1>`}}},
		},
	}
	e := newEngine(t, cfg)

	p := e.Propose(Request{Level: immutability.ReadonlyShallow, Text: "int"})
	require.NotNil(t, p.Fix)
	assert.Empty(t, p.Suggestions)

	p = e.Propose(Request{Level: immutability.ReadonlyShallow, Text: "uint"})
	assert.Nil(t, p.Fix)
	assert.Len(t, p.Suggestions, 1)
}

func TestNoOpRewritesAreSkippedAndDuplicatesMerged(t *testing.T) {
	cfg := Config{
		immutability.ReadonlyDeep: {
			Suggest: [][]Pattern{
				{{Expr: `^(.+)$`, Replace: `$1`}, {Expr: `^(.+)$`, Replace: `RO<$1>`}},
				{{Expr: `^T$`, Replace: `RO<T>`}},
			},
		},
	}
	p := newEngine(t, cfg).Propose(Request{Level: immutability.ReadonlyDeep, Text: "T"})

	require.Len(t, p.Suggestions, 1)
	assert.Equal(t, "RO<T>", p.Suggestions[0].Edits[0].NewText)
}

func TestInsertAnnotation(t *testing.T) {
	src := "const xs = [1, 2]"
	p := newEngine(t, nil).Propose(Request{
		Level:  immutability.Immutable,
		Text:   "number[]",
		Span:   typenode.Span{Start: 8, End: 8},
		Insert: true,
	})

	require.NotNil(t, p.Fix)
	assert.Equal(t, typenode.Span{Start: 8, End: 8}, p.Fix.Edit.Span)
	assert.Equal(t, "const xs: readonly number[] = [1, 2]", apply(src, p.Fix.Edit))
}

func TestUnknownLevelProposesNothing(t *testing.T) {
	p := newEngine(t, nil).Propose(Request{Level: immutability.Mutable, Text: "string[]"})
	assert.True(t, p.Empty())

	var e *Engine
	assert.True(t, e.Propose(Request{Level: immutability.Immutable, Text: "string[]"}).Empty())
}

func TestInvalidPattern(t *testing.T) {
	_, err := New(Config{immutability.ReadonlyDeep: {Fix: []Pattern{{Expr: "("}}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, pattern.ErrInvalid)
	assert.Contains(t, err.Error(), "ReadonlyDeep")
}
