//go:build cgo

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `export function total(xs: number[]): number {
  return xs.length;
}

export function names(m: Map<string, object>): void {}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckReportsViolations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	writeFile(t, path, source)
	writeFile(t, filepath.Join(dir, ".readonlylint.yaml"), "enforcement: Off\nparameters: { enforcement: Immutable }\n")

	out, err := run(t, "check", "--config", filepath.Join(dir, ".readonlylint.yaml"), "--format", "json", dir)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, exitViolations, ee.code)

	var doc struct {
		Count      int `json:"count"`
		Violations []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, 2, doc.Count)
	assert.Equal(t, "xs", doc.Violations[0].Name)
	assert.Equal(t, "parameter-not-immutable", doc.Violations[0].Kind)
	assert.Equal(t, "m", doc.Violations[1].Name)
}

func TestCheckDiffLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	writeFile(t, path, source)
	cfg := filepath.Join(dir, "cfg.yaml")
	writeFile(t, cfg, "enforcement: Off\nparameters: { enforcement: Immutable }\n")

	out, err := run(t, "check", "--config", cfg, "--diff", path)
	require.Error(t, err)
	assert.Contains(t, out, "-export function total(xs: number[]): number {")
	assert.Contains(t, out, "+export function total(xs: readonly number[]): number {")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, source, string(content))
}

func TestCheckFixRewritesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	writeFile(t, path, source)
	cfg := filepath.Join(dir, "cfg.yaml")
	writeFile(t, cfg, "enforcement: Off\nparameters: { enforcement: Immutable }\n")

	out, err := run(t, "check", "--config", cfg, "--fix", path)
	var ee *exitError
	require.ErrorAs(t, err, &ee, "the Map parameter has only suggestions")
	assert.Contains(t, out, "1 violation found")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "total(xs: readonly number[])")
}

func TestCheckCleanExitsZero(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.ts"), "export function f(n: number, xs: readonly string[]): void {}\n")

	out, err := run(t, "check", dir)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClassify(t *testing.T) {
	out, err := run(t, "classify", "ReadonlyMap<string, readonly number[]>")
	require.NoError(t, err)
	assert.Equal(t, "ReadonlyMap<string, readonly number[]>: Immutable\n", out)

	out, err = run(t, "classify", "Widget")
	require.NoError(t, err)
	assert.Equal(t, "Widget: Mutable (uncertain)\n", out)
}
