package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/noshsh/nosh/internal/project"
	"github.com/noshsh/nosh/internal/prompt/plugins"
)

// defaultMinDurationMs is the threshold below which the last-command
// duration is not shown, overridable per plugin via config min_ms.
const defaultMinDurationMs = 500

// resolveInternal dispatches an internal provider. Internal resolvers run
// synchronously and are never scheduled or cached by the engine.
func (e *Engine) resolveInternal(plugin *plugins.Plugin, prov plugins.Provider, varName string) string {
	switch prov.Source {
	case "context":
		return e.contextVariable(varName)
	default:
		// The original "internal" source carries both the exec_time
		// variables and, for compatibility, context lookups.
		switch varName {
		case "duration", "took":
			return e.durationVariable(plugin, varName)
		default:
			return e.contextVariable(varName)
		}
	}
}

// durationVariable formats the last completed command's duration, or
// returns "" below the plugin's minimum threshold.
func (e *Engine) durationVariable(plugin *plugins.Plugin, varName string) string {
	duration, ok := e.lastCommandDuration()
	if !ok {
		return ""
	}

	minMs := plugin.ConfigInt("min_ms", defaultMinDurationMs)
	if duration < time.Duration(minMs)*time.Millisecond {
		return ""
	}

	formatted := FormatDuration(duration)
	if varName == "took" {
		return "took " + formatted
	}
	return formatted
}

// contextVariable answers a project-context lookup for the working
// directory via the independently-cached project detector.
func (e *Engine) contextVariable(varName string) string {
	ctx := e.projectInfo.Get(e.runner.Pwd())

	switch varName {
	case "git_branch":
		if ctx.Git != nil {
			return ctx.Git.Branch
		}
		return ""
	case "git_status":
		if ctx.Git != nil {
			return ctx.Git.StatusIndicator()
		}
		return ""
	case "package_name":
		if ctx.Package != nil {
			return ctx.Package.Name
		}
		return ""
	case "package_version":
		if ctx.Package != nil {
			return ctx.Package.Version
		}
		return ""
	case "package_icon":
		if ctx.Package != nil {
			return project.ToolIcon("package")
		}
		return ""
	}

	// "<tool>_version" and "<tool>_icon" for detected toolchains.
	if tool, found := strings.CutSuffix(varName, "_version"); found {
		if info, ok := ctx.Toolchains[tool]; ok {
			return info.Version
		}
		return ""
	}
	if tool, found := strings.CutSuffix(varName, "_icon"); found {
		if _, ok := ctx.Toolchains[tool]; ok {
			return project.ToolIcon(tool)
		}
		return ""
	}

	return ""
}

// FormatDuration renders a command duration compactly: "450ms", "2.3s",
// "1m5s".
func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	switch {
	case secs >= 60:
		return fmt.Sprintf("%dm%ds", secs/60, secs%60)
	case secs > 0:
		tenths := (d.Milliseconds() % 1000) / 100
		return fmt.Sprintf("%d.%ds", secs, tenths)
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
