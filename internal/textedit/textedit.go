// Package textedit applies byte-range edits to source text and renders them
// as unified diffs.
package textedit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/frroossst/readonlylint/fixer"
)

// ErrOverlap is returned when two edits touch the same bytes.
var ErrOverlap = errors.New("overlapping edits")

// contextLines is the number of unchanged lines shown around a hunk.
const contextLines = 3

func sorted(src []byte, edits []fixer.Edit) ([]fixer.Edit, error) {
	out := append([]fixer.Edit(nil), edits...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	for i, e := range out {
		if e.Span.Start < 0 || e.Span.End < e.Span.Start || e.Span.End > len(src) {
			return nil, fmt.Errorf("edit %d..%d out of range (len %d)", e.Span.Start, e.Span.End, len(src))
		}
		if i > 0 && e.Span.Start < out[i-1].Span.End {
			return nil, fmt.Errorf("%w at %d", ErrOverlap, e.Span.Start)
		}
	}
	return out, nil
}

// Apply returns src with edits applied. Edits refer to offsets in src and
// must not overlap; insertions at the same offset keep their given order.
func Apply(src []byte, edits []fixer.Edit) ([]byte, error) {
	es, err := sorted(src, edits)
	if err != nil {
		return nil, err
	}
	return splice(src, 0, es), nil
}

// splice applies es to src, whose first byte sits at offset base of the
// file the edits refer to.
func splice(src []byte, base int, es []fixer.Edit) []byte {
	var sb strings.Builder
	last := 0
	for _, e := range es {
		sb.Write(src[last : e.Span.Start-base])
		sb.WriteString(e.NewText)
		last = e.Span.End - base
	}
	sb.Write(src[last:])
	return []byte(sb.String())
}

type lineIndex struct {
	starts []int
	size   int
}

func indexLines(src []byte) lineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' && i+1 < len(src) {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts, size: len(src)}
}

func (li lineIndex) count() int { return len(li.starts) }

// of returns the 0-based line containing offset.
func (li lineIndex) of(offset int) int {
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
}

func (li lineIndex) end(line int) int {
	if line+1 < len(li.starts) {
		return li.starts[line+1]
	}
	return li.size
}

type group struct {
	first, last int
	edits       []fixer.Edit
}

// Diff renders edits against src as a unified diff of path.
func Diff(path string, src []byte, edits []fixer.Edit) ([]byte, error) {
	es, err := sorted(src, edits)
	if err != nil {
		return nil, err
	}
	if len(es) == 0 {
		return nil, nil
	}

	li := indexLines(src)
	var groups []*group
	for _, e := range es {
		first := li.of(e.Span.Start)
		last := first
		if e.Span.End > e.Span.Start {
			last = li.of(e.Span.End - 1)
		}
		if n := len(groups); n > 0 && first <= groups[n-1].last+2*contextLines+1 {
			g := groups[n-1]
			g.last = max(g.last, last)
			g.edits = append(g.edits, e)
			continue
		}
		groups = append(groups, &group{first: first, last: last, edits: []fixer.Edit{e}})
	}

	fd := &diff.FileDiff{OrigName: "a/" + path, NewName: "b/" + path}
	delta := 0
	for _, g := range groups {
		before := max(0, g.first-contextLines)
		after := min(li.count()-1, g.last+contextLines)

		regionStart, regionEnd := li.starts[g.first], li.end(g.last)
		replaced := splitLines(splice(src[regionStart:regionEnd], regionStart, g.edits))

		var body strings.Builder
		for i := before; i < g.first; i++ {
			writeLine(&body, ' ', src[li.starts[i]:li.end(i)])
		}
		for i := g.first; i <= g.last; i++ {
			writeLine(&body, '-', src[li.starts[i]:li.end(i)])
		}
		for _, l := range replaced {
			writeLine(&body, '+', l)
		}
		for i := g.last + 1; i <= after; i++ {
			writeLine(&body, ' ', src[li.starts[i]:li.end(i)])
		}

		origLines := after - before + 1
		newLines := (g.first - before) + len(replaced) + (after - g.last)
		fd.Hunks = append(fd.Hunks, &diff.Hunk{
			OrigStartLine: int32(before + 1),
			OrigLines:     int32(origLines),
			NewStartLine:  int32(before + 1 + delta),
			NewLines:      int32(newLines),
			Body:          []byte(body.String()),
		})
		delta += newLines - origLines
	}
	return diff.PrintFileDiff(fd)
}

func splitLines(b []byte) [][]byte {
	var out [][]byte
	for len(b) > 0 {
		i := strings.IndexByte(string(b), '\n')
		if i < 0 {
			out = append(out, b)
			break
		}
		out = append(out, b[:i+1])
		b = b[i+1:]
	}
	return out
}

// noNewline marks a final line that has no line terminator.
const noNewline = "\\ No newline at end of file\n"

func writeLine(sb *strings.Builder, prefix byte, line []byte) {
	sb.WriteByte(prefix)
	sb.Write(line)
	switch {
	case len(line) == 0:
		sb.WriteByte('\n')
	case line[len(line)-1] != '\n':
		sb.WriteByte('\n')
		sb.WriteString(noNewline)
	}
}
