package main

import (
	"github.com/frroossst/readonlylint/immutablecheck"
	"golang.org/x/tools/go/analysis"
)

// AnalyzerPlugin is the entry point for golangci-lint's legacy .so plugin
// loader, which cannot pass settings. Flags apply as for the analyzer.
type analyzerPlugin struct{}

func (analyzerPlugin) GetAnalyzers() []*analysis.Analyzer {
	return []*analysis.Analyzer{immutablecheck.Analyzer}
}

// This variable must be named "AnalyzerPlugin" and be exported for golangci-lint
var AnalyzerPlugin analyzerPlugin
