package textedit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frroossst/readonlylint/fixer"
	"github.com/frroossst/readonlylint/typenode"
)

func edit(start, end int, text string) fixer.Edit {
	return fixer.Edit{Span: typenode.Span{Start: start, End: end}, NewText: text}
}

func TestApply(t *testing.T) {
	src := []byte("let a: string[] = [];\nlet b: Map<K, V> = m;\n")
	i := strings.Index(string(src), "string[]")
	j := strings.Index(string(src), "Map")

	out, err := Apply(src, []fixer.Edit{
		edit(j, j+3, "ReadonlyMap"),
		edit(i, i, "readonly "),
	})
	require.NoError(t, err)
	assert.Equal(t, "let a: readonly string[] = [];\nlet b: ReadonlyMap<K, V> = m;\n", string(out))
}

func TestApplyRejectsOverlap(t *testing.T) {
	_, err := Apply([]byte("abcdef"), []fixer.Edit{edit(0, 3, "x"), edit(2, 4, "y")})
	assert.ErrorIs(t, err, ErrOverlap)

	_, err = Apply([]byte("abc"), []fixer.Edit{edit(2, 9, "x")})
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	src := []byte("one\ntwo\nlet xs: string[] = [];\nfour\nfive\nsix\nseven\n")
	i := strings.Index(string(src), "string[]")

	out, err := Diff("src/a.ts", src, []fixer.Edit{edit(i, i, "readonly ")})
	require.NoError(t, err)

	want := "--- a/src/a.ts\n" +
		"+++ b/src/a.ts\n" +
		"@@ -1,6 +1,6 @@\n" +
		" one\n" +
		" two\n" +
		"-let xs: string[] = [];\n" +
		"+let xs: readonly string[] = [];\n" +
		" four\n" +
		" five\n" +
		" six\n"
	assert.Equal(t, want, string(out))
}

func TestDiffSeparateHunks(t *testing.T) {
	var lines []string
	for i := range 20 {
		lines = append(lines, "line"+string(rune('a'+i)))
	}
	src := []byte(strings.Join(lines, "\n") + "\n")
	first := strings.Index(string(src), "linea")
	last := strings.Index(string(src), "linet")

	out, err := Diff("f.ts", src, []fixer.Edit{
		edit(first, first+5, "LINEA\nextra"),
		edit(last, last+5, "LINET"),
	})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "@@ -1,4 +1,5 @@\n")
	assert.Contains(t, text, "@@ -17,4 +18,4 @@\n")
	assert.Contains(t, text, "+extra\n")
}

func TestDiffNoEdits(t *testing.T) {
	out, err := Diff("f.ts", []byte("x\n"), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDiffWithoutTrailingNewline(t *testing.T) {
	src := []byte("one\nlet xs: string[] = []")
	i := strings.Index(string(src), "string[]")

	out, err := Diff("a.ts", src, []fixer.Edit{edit(i, i, "readonly ")})
	require.NoError(t, err)

	want := "--- a/a.ts\n" +
		"+++ b/a.ts\n" +
		"@@ -1,2 +1,2 @@\n" +
		" one\n" +
		"-let xs: string[] = []\n" +
		"\\ No newline at end of file\n" +
		"+let xs: readonly string[] = []\n" +
		"\\ No newline at end of file\n"
	assert.Equal(t, want, string(out))
}
