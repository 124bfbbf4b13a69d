package main

import (
	"github.com/frroossst/readonlylint/gcplugin"
	"golang.org/x/tools/go/analysis"
)

// New is the factory function required by golangci-lint plugin interface.
// For module plugins in v2, this function must exist and return the analyzers.
func New(conf any) ([]*analysis.Analyzer, error) {
	return gcplugin.New(conf)
}
