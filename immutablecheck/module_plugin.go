package immutablecheck

import (
	"fmt"

	"github.com/golangci/plugin-module-register/register"
	"golang.org/x/tools/go/analysis"

	"github.com/frroossst/readonlylint/config"
)

// pluginModule implements the module plugin interface for golangci-lint v2
type pluginModule struct {
	analyzer *analysis.Analyzer
}

// PluginNew is registered with golangci-lint module plugin system. The
// settings block of .golangci.yml has the same shape as a configuration
// file; an empty block selects the Go defaults.
func PluginNew(settings any) (register.LinterPlugin, error) {
	if settings == nil {
		return &pluginModule{analyzer: NewAnalyzer(DefaultConfig())}, nil
	}
	file, err := register.DecodeSettings[config.File](settings)
	if err != nil {
		return nil, fmt.Errorf("readonlylint settings: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("readonlylint settings: %w", err)
	}
	return &pluginModule{analyzer: NewAnalyzer(&file)}, nil
}

// BuildAnalyzers returns the list of analyzers provided by this plugin.
func (p *pluginModule) BuildAnalyzers() ([]*analysis.Analyzer, error) {
	return []*analysis.Analyzer{p.analyzer}, nil
}

// GetLoadMode specifies which loading mode is required by this plugin.
// Our analyzer uses types information, hence LoadModeTypesInfo.
func (p *pluginModule) GetLoadMode() string {
	return register.LoadModeTypesInfo
}

func init() {
	register.Plugin("readonlylint", PluginNew)
}
