// Package immutablecheck is the go/analysis host of readonlylint. It reports
// parameters, results, variables and struct fields whose types let their
// holder mutate shared state beyond the configured level.
//
// Types documented with @immutable are trusted to be Immutable, across
// packages through analysis facts.
package immutablecheck

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/frroossst/readonlylint/config"
	"github.com/frroossst/readonlylint/fixer"
	"github.com/frroossst/readonlylint/immutability"
	"github.com/frroossst/readonlylint/internal/logging"
)

const doc = `check that declared types are as immutable as required

Parameters, results, variables and struct fields are classified on the scale
Mutable < ReadonlyShallow < ReadonlyDeep < Immutable. Slices, maps, pointers
and channels are mutable; values are copied and so only as mutable as what
they share. Types documented with @immutable count as Immutable.
A //@allow-mutate comment on the line suppresses a report.`

var Analyzer = NewAnalyzer(nil)

// immutableFact marks a type name documented @immutable. Facts travel
// gob-encoded between vet units, which needs an exported field.
type immutableFact struct {
	Marked bool
}

func (*immutableFact) AFact()         {}
func (*immutableFact) String() string { return "immutable" }

// flags are the command-line settings. Empty strings leave the
// configuration alone.
type flags struct {
	config         string
	parameters     string
	returns        string
	variables      string
	properties     string
	ignoreInferred bool
}

// checker holds the configuration of one Analyzer.
type checker struct {
	flags flags
	fixed *config.File

	once sync.Once
	file *config.File
	err  error
}

// NewAnalyzer returns an analyzer. A nil file means the configuration comes
// from flags, falling back to the Go defaults.
func NewAnalyzer(file *config.File) *analysis.Analyzer {
	c := &checker{fixed: file}
	a := &analysis.Analyzer{
		Name:      "readonlylint",
		Doc:       doc,
		URL:       "https://github.com/frroossst/readonlylint",
		Run:       c.run,
		Requires:  []*analysis.Analyzer{inspect.Analyzer},
		FactTypes: []analysis.Fact{new(immutableFact)},
	}
	a.Flags.StringVar(&c.flags.config, "config", "", "configuration file (yaml, toml or json)")
	a.Flags.StringVar(&c.flags.parameters, "parameters", "", "required level for parameters, or Off")
	a.Flags.StringVar(&c.flags.returns, "returns", "", "required level for results, or Off")
	a.Flags.StringVar(&c.flags.variables, "variables", "", "required level for variables, or Off")
	a.Flags.StringVar(&c.flags.properties, "properties", "", "required level for struct fields, or Off")
	a.Flags.BoolVar(&c.flags.ignoreInferred, "ignore-inferred", false, "skip variables without a written type")
	return a
}

// DefaultConfig is used when neither a file nor flags say otherwise: only
// parameters are checked, since they are where callers hand over state.
func DefaultConfig() *config.File {
	return &config.File{
		Enforcement: "Off",
		Parameters:  &config.Position{Enforcement: immutability.Immutable.String()},
	}
}

// configFile resolves the configuration once per analyzer.
func (c *checker) configFile() (*config.File, error) {
	c.once.Do(func() {
		switch {
		case c.fixed != nil:
			c.file = c.fixed
		case c.flags.config != "":
			c.file, c.err = config.Load(c.flags.config)
		default:
			c.file = DefaultConfig()
		}
		if c.err != nil {
			return
		}

		f := *c.file
		for _, p := range []struct {
			value string
			slot  **config.Position
		}{
			{c.flags.parameters, &f.Parameters},
			{c.flags.returns, &f.ReturnTypes},
			{c.flags.variables, &f.Variables},
			{c.flags.properties, &f.Properties},
		} {
			if p.value == "" {
				continue
			}
			pos := config.Position{}
			if *p.slot != nil {
				pos = **p.slot
			}
			pos.Enforcement = p.value
			*p.slot = &pos
		}
		if c.flags.ignoreInferred {
			f.IgnoreInferredTypes = true
		}
		c.file = &f
	})
	return c.file, c.err
}

// check for parser errors, if they exist, skip analysis
func isParserOk(pass *analysis.Pass) bool {
	for _, file := range pass.Files {
		foundBad := false
		ast.Inspect(file, func(n ast.Node) bool {
			switch n.(type) {
			case *ast.BadExpr, *ast.BadDecl, *ast.BadStmt:
				foundBad = true
			}
			return !foundBad
		})
		if foundBad {
			return false
		}
	}
	return true
}

func hasImmutableComment(genDecl *ast.GenDecl, spec *ast.TypeSpec) bool {
	for _, cg := range []*ast.CommentGroup{genDecl.Doc, spec.Doc} {
		if cg == nil {
			continue
		}
		for _, comment := range cg.List {
			if strings.Contains(comment.Text, "@immutable") {
				return true
			}
		}
	}
	return false
}

// markImmutableTypes exports a fact for every @immutable type in the
// package and returns the names of all marked types visible to it.
func markImmutableTypes(pass *analysis.Pass) []string {
	var names []string
	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				if !hasImmutableComment(gd, ts) {
					continue
				}
				if obj, ok := pass.TypesInfo.Defs[ts.Name].(*types.TypeName); ok {
					pass.ExportObjectFact(obj, &immutableFact{Marked: true})
					names = append(names, pathName(obj))
				}
			}
		}
	}
	for _, f := range pass.AllObjectFacts() {
		if _, ok := f.Fact.(*immutableFact); !ok {
			continue
		}
		if obj, ok := f.Object.(*types.TypeName); ok && obj.Pkg() != pass.Pkg {
			names = append(names, pathName(obj))
		}
	}
	return names
}

// builtinOverrides are library types known to be immutable.
var builtinOverrides = []immutability.Override{
	{Pattern: "time.Time", Level: immutability.Immutable},
	{Pattern: "time.Duration", Level: immutability.Immutable},
	{Pattern: "time.Location", Level: immutability.Immutable},
}

func (c *checker) run(pass *analysis.Pass) (any, error) {
	log := logging.Logger().With("pkg", pass.Pkg.Path())
	log.Info("analysis started")

	if !isParserOk(pass) {
		log.Info("analysis skipped due to errors in package")
		return nil, nil
	}

	file, err := c.configFile()
	if err != nil {
		return nil, err
	}

	marked := markImmutableTypes(pass)
	log.Debug("immutable types", "types", describeMarkers(marked))

	overrides := make([]immutability.Override, 0, len(marked)+len(builtinOverrides))
	for _, name := range marked {
		overrides = append(overrides, immutability.Override{Pattern: name, Level: immutability.Immutable})
	}
	overrides = append(overrides, builtinOverrides...)

	engines, err := file.Build(
		config.WithLogger(log),
		config.WithOverrides(overrides...),
		config.WithClassifierOptions(immutability.WithCollections(immutability.Collections{})),
		config.WithFixerOptions(fixer.WithoutBuiltins()),
	)
	if err != nil {
		return nil, fmt.Errorf("readonlylint configuration: %w", err)
	}

	files, err := sourceFiles(pass)
	if err != nil {
		return nil, err
	}
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	targets := newTargetCollector(pass, files).collect(insp)

	r := newReporter(pass, files)
	count := 0
	for _, v := range engines.Enforcer.EvaluateAll(targets) {
		if r.report(v) {
			count++
		}
	}
	log.Info("analysis finished", slog.Int("targets", len(targets)), slog.Int("violations", count))
	return nil, nil
}

// sourceFiles reads the content of every analyzed file.
func sourceFiles(pass *analysis.Pass) ([]*sourceFile, error) {
	read := pass.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	out := make([]*sourceFile, 0, len(pass.Files))
	for _, f := range pass.Files {
		tok := pass.Fset.File(f.Pos())
		if tok == nil {
			continue
		}
		content, err := read(tok.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", tok.Name(), err)
		}
		out = append(out, &sourceFile{ast: f, tok: tok, content: content})
	}
	return out, nil
}
