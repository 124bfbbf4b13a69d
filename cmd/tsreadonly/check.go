package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/frroossst/readonlylint/config"
	"github.com/frroossst/readonlylint/enforce"
	"github.com/frroossst/readonlylint/fixer"
	"github.com/frroossst/readonlylint/internal/logging"
	"github.com/frroossst/readonlylint/internal/textedit"
	"github.com/frroossst/readonlylint/report"
	"github.com/frroossst/readonlylint/tsfront"
)

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report declarations less immutable than required",
		Long: `Check walks the given files and directories (default ".") for TypeScript
sources, skipping node_modules and declaration files.

Examples:
  # Check a project
  tsreadonly check src

  # Preview the deterministic fixes
  tsreadonly check --diff src

  # Apply them and report what is left as JSON
  tsreadonly check --fix --format json src`,
		RunE: a.runCheck,
	}
	cmd.Flags().String("format", "text", "output format: text, json or yaml")
	cmd.Flags().Bool("fix", false, "apply deterministic fixes in place")
	cmd.Flags().Bool("diff", false, "print deterministic fixes as a unified diff without writing")
	cmd.Flags().Int("jobs", runtime.GOMAXPROCS(0), "files analyzed in parallel")
	cmd.Flags().String("color", "auto", "colour text output: auto, always or never")
	for _, name := range []string{"format", "fix", "diff", "jobs", "color"} {
		_ = a.v.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

// fileResult is the outcome for one source file.
type fileResult struct {
	path       string
	src        []byte
	violations []enforce.Violation
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	log := logging.Logger()
	format, err := report.ParseFormat(a.v.GetString("format"))
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	var opts []report.Option
	switch color := a.v.GetString("color"); color {
	case "always":
		opts = append(opts, report.WithColor(true))
	case "never":
		opts = append(opts, report.WithColor(false))
	case "auto":
	default:
		return &exitError{code: exitFailure, err: fmt.Errorf("unknown --color %q: want auto, always or never", color)}
	}

	file, path, err := a.loadConfig()
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	log.Info("configuration loaded", "path", path)
	engines, err := file.Build(config.WithLogger(log))
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	paths, err := collectFiles(args)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	parser := tsfront.NewParser()
	results, err := analyzeAll(cmd.Context(), parser, engines, paths, a.v.GetInt("jobs"), log)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	out := cmd.OutOrStdout()
	for i := range results {
		r := &results[i]
		edits := fixEdits(r.violations)
		if len(edits) == 0 {
			continue
		}
		if a.v.GetBool("diff") {
			d, err := textedit.Diff(r.path, r.src, edits)
			if err != nil {
				return &exitError{code: exitFailure, err: fmt.Errorf("%s: %w", r.path, err)}
			}
			if _, err := out.Write(d); err != nil {
				return err
			}
		}
		if a.v.GetBool("fix") {
			if err := applyFixes(cmd.Context(), parser, engines.Enforcer, r, edits); err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			log.Info("fixes applied", "path", r.path, slog.Int("edits", len(edits)))
		}
	}

	var all []enforce.Violation
	for _, r := range results {
		all = append(all, r.violations...)
	}
	opts = append(opts, report.WithSource(sourceLines(results)))
	if err := report.New(out, format, opts...).Print(all); err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	if len(all) > 0 {
		return &exitError{code: exitViolations}
	}
	return nil
}

// sourceLines serves report lines from the checked contents, which after
// --fix differ from what was read.
func sourceLines(results []fileResult) report.LineSource {
	byPath := make(map[string][]byte, len(results))
	for _, r := range results {
		byPath[r.path] = r.src
	}
	return func(file string, n int) string {
		src, ok := byPath[file]
		if !ok {
			return report.FromDisk(file, n)
		}
		for i := 1; len(src) > 0; i++ {
			line, rest, _ := bytes.Cut(src, []byte("\n"))
			if i == n {
				return strings.TrimSuffix(string(line), "\r")
			}
			src = rest
		}
		return ""
	}
}

// collectFiles expands args into TypeScript sources in a stable order.
func collectFiles(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != arg && (name == "node_modules" || (len(name) > 1 && name[0] == '.')) {
					return filepath.SkipDir
				}
				return nil
			}
			if tsfront.IsSource(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

// analyzeAll checks paths on a pool of jobs workers. Results keep the order
// of paths; unreadable content is logged and skipped.
func analyzeAll(ctx context.Context, parser *tsfront.Parser, engines *config.Engines, paths []string, jobs int, log *slog.Logger) ([]fileResult, error) {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			f, err := parser.Parse(gctx, src, path)
			switch {
			case errors.Is(err, tsfront.ErrFileTooLarge), errors.Is(err, tsfront.ErrInvalidContent):
				log.Warn("file skipped", "path", path, "error", err)
				return nil
			case err != nil:
				return fmt.Errorf("%s: %w", path, err)
			}
			if f.SyntaxErrors {
				log.Warn("syntax errors, results may be incomplete", "path", path)
			}
			results[i] = fileResult{path: path, src: src, violations: engines.Enforcer.EvaluateAll(f.Targets())}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := results[:0]
	for _, r := range results {
		if r.path != "" {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// fixEdits returns the deterministic edits of vs ordered by offset,
// dropping any that overlap an earlier one.
func fixEdits(vs []enforce.Violation) []fixer.Edit {
	var edits []fixer.Edit
	for _, v := range vs {
		if v.Fix != nil {
			edits = append(edits, v.Fix.Edit)
		}
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Span.Start < edits[j].Span.Start })

	out := edits[:0]
	end := -1
	for _, e := range edits {
		if e.Span.Start < end {
			continue
		}
		out = append(out, e)
		end = e.Span.End
	}
	return out
}

// applyFixes writes the fixed source and re-checks it, so the report shows
// what is left at its new position.
func applyFixes(ctx context.Context, parser *tsfront.Parser, enforcer *enforce.Engine, r *fileResult, edits []fixer.Edit) error {
	fixed, err := textedit.Apply(r.src, edits)
	if err != nil {
		return fmt.Errorf("%s: %w", r.path, err)
	}
	info, err := os.Stat(r.path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, fixed, info.Mode().Perm()); err != nil {
		return err
	}
	f, err := parser.Parse(ctx, fixed, r.path)
	if err != nil {
		return fmt.Errorf("%s: %w", r.path, err)
	}
	r.src = fixed
	r.violations = enforcer.EvaluateAll(f.Targets())
	return nil
}
