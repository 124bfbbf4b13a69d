package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frroossst/readonlylint/enforce"
	"github.com/frroossst/readonlylint/fixer"
	"github.com/frroossst/readonlylint/ignore"
	"github.com/frroossst/readonlylint/immutability"
	"github.com/frroossst/readonlylint/internal/pattern"
	"github.com/frroossst/readonlylint/typenode"
)

const sampleYAML = `
enforcement: ReadonlyShallow
ignoreInferredTypes: false
parameters:  { enforcement: ReadonlyDeep, ignoreInferredTypes: true }
returnTypes: { enforcement: Off }
variables:   { ignoreCollections: true }
ignore:
  classes: fieldsOnly
  allowLocalMutation: true
  patterns: ["^mutable", "legacy/.*\\.ts$"]
overrides:
  - { pattern: "Date", level: Mutable }
  - { pattern: "/^Immutable.+$/", level: Immutable }
  - { pattern: "Ref*", level: Calculate }
wrappers: { ReadonlyDeep: deep }
fixer:
  ReadonlyDeep: [{ pattern: "^(.+)$", replace: "ReadonlyDeep<$1>", label: "Wrap" }]
suggestions:
  ReadonlyShallow: [[{ pattern: "^(.+)$", replace: "Readonly<$1>" }]]
`

const sampleTOML = `
enforcement = "ReadonlyShallow"

[parameters]
enforcement = "ReadonlyDeep"
ignoreInferredTypes = true

[returnTypes]
enforcement = "Off"

[variables]
ignoreCollections = true

[ignore]
classes = "fieldsOnly"
allowLocalMutation = true
patterns = ["^mutable", 'legacy/.*\.ts$']

[[overrides]]
pattern = "Date"
level = "Mutable"

[[overrides]]
pattern = "/^Immutable.+$/"
level = "Immutable"

[[overrides]]
pattern = "Ref*"
level = "Calculate"

[wrappers]
ReadonlyDeep = "deep"

[[fixer.ReadonlyDeep]]
pattern = "^(.+)$"
replace = "ReadonlyDeep<$1>"
label = "Wrap"

[suggestions]
ReadonlyShallow = [[{ pattern = "^(.+)$", replace = "Readonly<$1>" }]]
`

const sampleJSON = `{
  "enforcement": "ReadonlyShallow",
  "parameters": { "enforcement": "ReadonlyDeep", "ignoreInferredTypes": true },
  "returnTypes": { "enforcement": "Off" },
  "variables": { "ignoreCollections": true },
  "ignore": {
    "classes": "fieldsOnly",
    "allowLocalMutation": true,
    "patterns": ["^mutable", "legacy/.*\\.ts$"]
  },
  "overrides": [
    { "pattern": "Date", "level": "Mutable" },
    { "pattern": "/^Immutable.+$/", "level": "Immutable" },
    { "pattern": "Ref*", "level": "Calculate" }
  ],
  "wrappers": { "ReadonlyDeep": "deep" },
  "fixer": {
    "ReadonlyDeep": [{ "pattern": "^(.+)$", "replace": "ReadonlyDeep<$1>", "label": "Wrap" }]
  },
  "suggestions": {
    "ReadonlyShallow": [[{ "pattern": "^(.+)$", "replace": "Readonly<$1>" }]]
  }
}`

func TestParseFormatsAgree(t *testing.T) {
	docs := map[Format]string{YAML: sampleYAML, TOML: sampleTOML, JSON: sampleJSON}
	for format, doc := range docs {
		t.Run(string(format), func(t *testing.T) {
			f, err := Parse([]byte(doc), format)
			require.NoError(t, err)

			assert.Equal(t, "ReadonlyShallow", f.Enforcement)
			require.NotNil(t, f.Parameters)
			assert.Equal(t, "ReadonlyDeep", f.Parameters.Enforcement)
			assert.Equal(t, ignore.ClassesFieldsOnly, f.Ignore.Classes.Mode())
			assert.Equal(t, []string{"^mutable", `legacy/.*\.ts$`}, f.Ignore.Patterns)
			require.Len(t, f.Overrides, 3)
			assert.Equal(t, "Calculate", f.Overrides[2].Level)
			assert.Equal(t, "deep", f.Wrappers["ReadonlyDeep"])
			assert.Equal(t, []fixer.Pattern{{Expr: "^(.+)$", Replace: "ReadonlyDeep<$1>", Label: "Wrap"}}, f.Fixer["ReadonlyDeep"])
			require.Len(t, f.Suggestions["ReadonlyShallow"], 1)
		})
	}
}

func TestPolicyFallsBackToTopLevel(t *testing.T) {
	f, err := Parse([]byte(sampleYAML), YAML)
	require.NoError(t, err)

	policy, err := f.Policy()
	require.NoError(t, err)

	assert.Equal(t, enforce.PositionConfig{Required: enforce.Require(immutability.ReadonlyDeep), IgnoreInferredTypes: true}, policy.For(enforce.Parameter))
	assert.True(t, policy.For(enforce.ReturnType).Required.Off)
	assert.Equal(t, enforce.PositionConfig{Required: enforce.Require(immutability.ReadonlyShallow), IgnoreCollections: true}, policy.For(enforce.Variable))
	assert.Equal(t, enforce.PositionConfig{Required: enforce.Require(immutability.ReadonlyShallow)}, policy.For(enforce.Property))
}

func TestBuildWiresEngines(t *testing.T) {
	f, err := Parse([]byte(sampleYAML), YAML)
	require.NoError(t, err)
	eng, err := f.Build()
	require.NoError(t, err)

	lvl, ok := eng.Overrides.Lookup("ImmutableList")
	assert.True(t, ok)
	assert.Equal(t, immutability.Immutable, lvl)

	deep := &typenode.Reference{Name: "ReadonlyDeep", Args: []typenode.Node{&typenode.Array{Element: &typenode.Primitive{Name: "string"}}}}
	assert.Equal(t, immutability.Immutable, eng.Classifier.Classify(deep, nil))

	assert.True(t, eng.Ignore.Exempt(ignore.Subject{Identifier: "mutableThing"}))

	// the configured ReadonlyDeep fix replaces the built-in one
	p := eng.Fixer.Propose(fixer.Request{Level: immutability.ReadonlyDeep, Text: "string[]"})
	require.NotNil(t, p.Fix)
	assert.Equal(t, "ReadonlyDeep<string[]>", p.Fix.Edit.NewText)
	assert.Equal(t, "Wrap", p.Fix.Label)

	// Immutable keeps its built-ins
	p = eng.Fixer.Propose(fixer.Request{Level: immutability.Immutable, Text: "string[]"})
	require.NotNil(t, p.Fix)
	assert.Equal(t, "readonly string[]", p.Fix.Edit.NewText)

	v := eng.Enforcer.Evaluate(enforce.Target{
		Position: enforce.Variable,
		Name:     "xs",
		Type:     &typenode.Object{Fields: []typenode.Field{{Name: "a", Type: &typenode.Primitive{Name: "string"}}}},
		Explicit: true,
	})
	require.NotNil(t, v)
	assert.Equal(t, immutability.ReadonlyShallow, v.Required)
}

func TestBuildExtraOverridesComeFirst(t *testing.T) {
	f, err := Parse([]byte(sampleYAML), YAML)
	require.NoError(t, err)
	eng, err := f.Build(WithOverrides(immutability.Override{Pattern: "Date", Level: immutability.Immutable}))
	require.NoError(t, err)

	lvl, ok := eng.Overrides.Lookup("Date")
	assert.True(t, ok)
	assert.Equal(t, immutability.Immutable, lvl)
}

func TestSchemaRejectsUnknownKeysAndLevels(t *testing.T) {
	_, err := Parse([]byte("enforcement: Frozen\n"), YAML)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)

	_, err = Parse([]byte("unknown: true\n"), YAML)
	assert.ErrorIs(t, err, ErrSchema)

	_, err = Parse([]byte(`{"ignore": {"classes": "methodsOnly"}}`), JSON)
	assert.ErrorIs(t, err, ErrSchema)

	var cerr *Error
	_, err = Parse([]byte(`{"overrides": [{"pattern": "Date", "level": "Frozen"}]}`), JSON)
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Field, "overrides")
}

func TestInvalidPatternIsConfigError(t *testing.T) {
	f, err := Parse([]byte(`{"ignore": {"patterns": ["(unclosed"]}}`), JSON)
	require.NoError(t, err)

	_, err = f.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, pattern.ErrInvalid)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "ignore.patterns", cerr.Field)

	f = &File{Overrides: []Override{{Pattern: "/(/", Level: "Immutable"}}}
	_, err = f.Build()
	assert.ErrorIs(t, err, pattern.ErrInvalid)

	f = &File{Fixer: map[string][]fixer.Pattern{"Immutable": {{Expr: "(", Replace: "x"}}}}
	_, err = f.Build()
	assert.ErrorIs(t, err, pattern.ErrInvalid)
}

func TestValidateWithoutSchema(t *testing.T) {
	f := &File{
		Enforcement: "Sometimes",
		Wrappers:    map[string]string{"Frozen": "very"},
		Fixer:       map[string][]fixer.Pattern{"Deep": {{Replace: "x"}}},
	}
	err := f.Validate()
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	msg := err.Error()
	assert.Contains(t, msg, "Enforcement")
	assert.Contains(t, msg, "Wrappers")
	assert.Contains(t, msg, "Fixer")
}

func TestLoadAndDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	path := filepath.Join(root, ".readonlylint.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o644))

	assert.Equal(t, path, Discover(nested))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ReadonlyShallow", f.Enforcement)

	bad := filepath.Join(root, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("enforcement: 3\n"), 0o644))
	_, err = Load(bad)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, bad, cerr.Path)

	_, err = Load(filepath.Join(root, "config.ini"))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadKeepsEveryError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enforcement: Frozen\nunknown: true\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok, "want a joined error, got %T", err)
	require.GreaterOrEqual(t, len(joined.Unwrap()), 2)
	for _, e := range joined.Unwrap() {
		var cerr *Error
		require.True(t, errors.As(e, &cerr))
		assert.Equal(t, path, cerr.Path)
		assert.ErrorIs(t, e, ErrSchema)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	f, err := Parse([]byte(sampleYAML), YAML)
	require.NoError(t, err)

	for _, format := range []Format{YAML, JSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, f, format))

			back, err := Parse(buf.Bytes(), format)
			require.NoError(t, err, buf.String())
			assert.Equal(t, f, back)
		})
	}
}

func TestDefault(t *testing.T) {
	eng, err := Default().Build()
	require.NoError(t, err)
	for _, p := range enforce.Positions() {
		assert.Equal(t, enforce.Require(immutability.Immutable), eng.Policy.For(p).Required)
	}
}
