package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/frroossst/readonlylint/enforce"
	"github.com/frroossst/readonlylint/fixer"
	"github.com/frroossst/readonlylint/immutability"
	"github.com/frroossst/readonlylint/typenode"
)

func sample() []enforce.Violation {
	return []enforce.Violation{
		{
			Anchor:   enforce.Anchor{File: "src/a.ts", Span: typenode.Span{Start: 13, End: 16}, Line: 1, Column: 14},
			Position: enforce.Parameter,
			Name:     "arg",
			Kind:     enforce.ParameterNotImmutable,
			Required: immutability.Immutable,
			Actual:   immutability.Mutable,
			Fix: &fixer.Fix{
				Label: "Prepend with readonly.",
				Edit:  fixer.Edit{Span: typenode.Span{Start: 18, End: 26}, NewText: "readonly string[]"},
			},
		},
		{
			Anchor:   enforce.Anchor{File: "src/a.ts", Line: 2, Column: 5},
			Position: enforce.Variable,
			Name:     "m",
			Kind:     enforce.MutableCollectionType,
			Required: immutability.ReadonlyShallow,
			Actual:   immutability.Mutable,
			Suggestions: []fixer.Suggestion{
				{Label: "Use ReadonlyMap instead of Map."},
				{Label: "Surround with Readonly."},
			},
		},
	}
}

func lines(file string, n int) string {
	src := map[int]string{
		1: "function foo(arg: string[]) {}",
		2: "let m: Map<string, number> = new Map();",
	}
	return src[n]
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, Text, WithColor(false), WithSource(lines))
	require.NoError(t, p.Print(sample()))

	want := "\n" +
		"error[parameter-not-immutable]: Parameter should have an immutability of at least \"Immutable\" (actual: \"Mutable\").\n" +
		"  --> a.ts:1:14\n" +
		"   |\n" +
		"   1 | function foo(arg: string[]) {}\n" +
		"   |\n" +
		"   = note: 'arg' is Mutable, required Immutable\n" +
		"   = help: Prepend with readonly. (fixable)\n"
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, want), out)
	assert.Contains(t, out, "error[mutable-collection-type]: Variable should have")
	assert.Contains(t, out, "   = help: suggestion: Use ReadonlyMap instead of Map.\n")
	assert.Contains(t, out, "   = help: suggestion: Surround with Readonly.\n")
	assert.True(t, strings.HasSuffix(out, "\n2 violations found\n"))
}

func TestTextOutputEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, Text, WithColor(false)).Print(nil))
	assert.Empty(t, buf.String())
}

func TestMessageWithoutSource(t *testing.T) {
	msg := Message(sample()[0], nil)
	assert.NotContains(t, msg, " | ")
	assert.Contains(t, msg, "  --> a.ts:1:14\n")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, JSON).Print(sample()))

	var doc struct {
		Count      int `json:"count"`
		Violations []struct {
			Kind     string `json:"kind"`
			Required string `json:"required"`
			Actual   string `json:"actual"`
			Message  string `json:"message"`
			Fix      *struct {
				Label string `json:"label"`
			} `json:"fix"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, 2, doc.Count)
	assert.Equal(t, "parameter-not-immutable", doc.Violations[0].Kind)
	assert.Equal(t, "Immutable", doc.Violations[0].Required)
	assert.Equal(t, "Mutable", doc.Violations[0].Actual)
	require.NotNil(t, doc.Violations[0].Fix)
	assert.Nil(t, doc.Violations[1].Fix)
	assert.Equal(t, sample()[1].Message(), doc.Violations[1].Message)
}

func TestYAMLOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, YAML).Print(sample()))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 2, doc["count"])
	vs, ok := doc["violations"].([]any)
	require.True(t, ok)
	first, ok := vs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "parameter-not-immutable", first["kind"])
	assert.Equal(t, "ReadonlyShallow", vs[1].(map[string]any)["required"])
}

func TestUnknownFormat(t *testing.T) {
	err := New(&bytes.Buffer{}, Format("xml")).Print(sample())
	assert.ErrorIs(t, err, ErrFormat)
}
