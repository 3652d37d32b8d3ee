package prompt

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noshsh/nosh/internal/prompt/plugins"
)

// inspectTimeout bounds each provider run during inspection. Inspection is
// a debugging aid, so it waits longer than a prompt draw would.
const inspectTimeout = 2 * time.Second

// Diagnostic is the result of test-running one provider variable.
type Diagnostic struct {
	Variable string
	Kind     plugins.ProviderKind
	// Raw is the trimmed command output before any transform; empty for
	// internal providers.
	Raw   string
	Value string
	Err   error
	// Elapsed is how long the provider took to produce the value.
	Elapsed time.Duration
}

// Inspect runs every variable of a plugin synchronously, bypassing the
// cache and registry, and reports raw and transformed results.
func (e *Engine) Inspect(ctx context.Context, pluginName string) ([]Diagnostic, error) {
	plugin, ok := e.store.Plugin(pluginName)
	if !ok {
		return nil, fmt.Errorf("plugin %q is not loaded", pluginName)
	}

	varNames := make([]string, 0, len(plugin.Provides))
	for name := range plugin.Provides {
		varNames = append(varNames, name)
	}
	sort.Strings(varNames)

	diagnostics := make([]Diagnostic, 0, len(varNames))
	for _, varName := range varNames {
		prov := plugin.Provides[varName]
		diagnostics = append(diagnostics, e.inspectVariable(ctx, plugin, prov, varName))
	}

	return diagnostics, nil
}

func (e *Engine) inspectVariable(ctx context.Context, plugin *plugins.Plugin, prov plugins.Provider, varName string) Diagnostic {
	diag := Diagnostic{Variable: varName, Kind: prov.Kind}
	start := time.Now()

	if prov.Kind == plugins.ProviderInternal {
		diag.Value = e.resolveInternal(plugin, prov, varName)
		diag.Elapsed = time.Since(start)
		return diag
	}

	runCtx, cancel := context.WithTimeout(ctx, inspectTimeout)
	defer cancel()

	stdout, _, _, err := e.runner.RunInSubshell(runCtx, prov.Command)
	diag.Elapsed = time.Since(start)
	if err != nil {
		diag.Err = err
		return diag
	}

	diag.Raw = strings.TrimSpace(stdout)
	diag.Value = applyTransform(plugin, prov.Transform, varName, diag.Raw)
	return diag
}
