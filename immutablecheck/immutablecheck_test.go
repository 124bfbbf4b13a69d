package immutablecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/frroossst/readonlylint/config"
)

func TestParameters(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), NewAnalyzer(nil), "params")
}

func TestImportedMarkers(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), NewAnalyzer(nil), "uses")
}

func TestAllPositions(t *testing.T) {
	file := &config.File{Enforcement: "ReadonlyShallow"}
	analysistest.Run(t, analysistest.TestData(), NewAnalyzer(file), "positions")
}

func TestFlagsOverrideDefaults(t *testing.T) {
	c := &checker{}
	c.flags.returns = "ReadonlyDeep"
	c.flags.ignoreInferred = true
	file, err := c.configFile()
	require.NoError(t, err)
	assert.Equal(t, "Off", file.Enforcement)
	require.NotNil(t, file.ReturnTypes)
	assert.Equal(t, "ReadonlyDeep", file.ReturnTypes.Enforcement)
	assert.Equal(t, "Immutable", file.Parameters.Enforcement)
	assert.True(t, file.IgnoreInferredTypes)

	// the shared default is left alone
	assert.Nil(t, DefaultConfig().ReturnTypes)
}

func TestConfigFlagErrors(t *testing.T) {
	c := &checker{}
	c.flags.config = "testdata/does-not-exist.yaml"
	_, err := c.configFile()
	assert.Error(t, err)
}

func TestDescribeMarkers(t *testing.T) {
	assert.Equal(t, `{ "a.B": "Immutable", "c.D": "Immutable" }`, describeMarkers([]string{"c.D", "a.B"}))
	assert.Equal(t, "{ }", describeMarkers(nil))
}

func TestPluginSettings(t *testing.T) {
	p, err := PluginNew(nil)
	require.NoError(t, err)
	as, err := p.BuildAnalyzers()
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "readonlylint", as[0].Name)
	assert.Equal(t, "typesinfo", p.GetLoadMode())

	_, err = PluginNew(map[string]any{"enforcement": "ReadonlyDeep", "ignore": map[string]any{"interfaces": true}})
	require.NoError(t, err)

	_, err = PluginNew(map[string]any{"enforcement": "Frozen"})
	assert.Error(t, err)
}
