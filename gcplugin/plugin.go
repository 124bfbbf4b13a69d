package gcplugin

import (
	"github.com/frroossst/readonlylint/immutablecheck"
	"golang.org/x/tools/go/analysis"
)

// New is the factory function required by golangci-lint module plugin interface.
// This must be in an importable (non-main) package for golangci-lint v2 to load it.
// conf is the linter's settings block, decoded like a configuration file.
func New(conf any) ([]*analysis.Analyzer, error) {
	p, err := immutablecheck.PluginNew(conf)
	if err != nil {
		return nil, err
	}
	return p.BuildAnalyzers()
}
