package immutablecheck

import (
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"

	"github.com/frroossst/readonlylint/enforce"
	"github.com/frroossst/readonlylint/fixer"
	"github.com/frroossst/readonlylint/report"
)

// reporter turns violations into diagnostics.
type reporter struct {
	pass   *analysis.Pass
	byName map[string]*sourceFile
}

func newReporter(pass *analysis.Pass, files []*sourceFile) *reporter {
	r := &reporter{pass: pass, byName: make(map[string]*sourceFile, len(files))}
	for _, f := range files {
		r.byName[f.tok.Name()] = f
	}
	return r
}

// sourceLine returns line n of a file already read for the pass.
func (r *reporter) sourceLine(file string, n int) string {
	f, ok := r.byName[file]
	if !ok || n < 1 || n > f.tok.LineCount() {
		return ""
	}
	start := f.tok.Offset(f.tok.LineStart(n))
	end := len(f.content)
	if n < f.tok.LineCount() {
		end = f.tok.Offset(f.tok.LineStart(n+1)) - 1
	}
	return strings.TrimRight(string(f.content[start:end]), "\r\n")
}

// report emits v unless an inline //@allow-mutate silences it.
func (r *reporter) report(v enforce.Violation) bool {
	f, ok := r.byName[v.Anchor.File]
	if !ok {
		return false
	}
	pos := f.tok.Pos(v.Anchor.Span.Start)
	if hasAllowMutateComment(r.pass, pos, f.ast.Comments) {
		return false
	}

	d := analysis.Diagnostic{
		Pos:      pos,
		End:      f.tok.Pos(v.Anchor.Span.End),
		Category: string(v.Kind),
		Message:  report.Message(v, r.sourceLine),
	}
	if v.Fix != nil {
		d.SuggestedFixes = append(d.SuggestedFixes, analysis.SuggestedFix{
			Message:   v.Fix.Label,
			TextEdits: []analysis.TextEdit{textEdit(f.tok, v.Fix.Edit)},
		})
	}
	for _, s := range v.Suggestions {
		fix := analysis.SuggestedFix{Message: s.Label}
		for _, e := range s.Edits {
			fix.TextEdits = append(fix.TextEdits, textEdit(f.tok, e))
		}
		d.SuggestedFixes = append(d.SuggestedFixes, fix)
	}
	r.pass.Report(d)
	return true
}

func textEdit(tok *token.File, e fixer.Edit) analysis.TextEdit {
	return analysis.TextEdit{
		Pos:     tok.Pos(e.Span.Start),
		End:     tok.Pos(e.Span.End),
		NewText: []byte(e.NewText),
	}
}

func hasAllowMutateComment(pass *analysis.Pass, pos token.Pos, commentGroups []*ast.CommentGroup) bool {
	line := pass.Fset.PositionFor(pos, false).Line

	for _, cg := range commentGroups {
		for _, comment := range cg.List {
			// only inline comments on the exact same line count
			if strings.Contains(comment.Text, "@allow-mutate") && pass.Fset.PositionFor(comment.Pos(), false).Line == line {
				return true
			}
		}
	}
	return false
}
