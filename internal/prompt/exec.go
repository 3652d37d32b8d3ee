package prompt

import (
	"context"
	"strings"

	"github.com/noshsh/nosh/internal/prompt/plugins"
)

// fetchCommand runs a command provider's command line in a subshell and
// applies its transform. The subprocess's exit code is not inspected:
// many status commands exit non-zero in the benign case, and the trimmed
// stdout is what matters.
func (e *Engine) fetchCommand(ctx context.Context, plugin *plugins.Plugin, prov plugins.Provider, varName string) (string, error) {
	stdout, _, _, err := e.runner.RunInSubshell(ctx, prov.Command)
	if err != nil {
		return "", err
	}

	output := strings.TrimSpace(stdout)
	return applyTransform(plugin, prov.Transform, varName, output), nil
}

// applyTransform post-processes trimmed command output.
func applyTransform(plugin *plugins.Plugin, transform plugins.Transform, varName, output string) string {
	switch transform {
	case plugins.TransformNonEmpty:
		// Empty output means clean, anything else means dirty; the icons
		// carry the rendering. An unconfigured icon omits the value.
		if output == "" {
			return plugin.Icon("clean")
		}
		return plugin.Icon("dirty")

	case plugins.TransformWithIcon:
		// Empty output hides the variable entirely.
		if output == "" {
			return ""
		}
		icon := plugin.Icon(varName)
		if icon == "" {
			icon = plugin.Icon("icon")
		}
		if icon == "" {
			return output
		}
		return icon + " " + output

	default:
		return output
	}
}
