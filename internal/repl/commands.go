package repl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/noshsh/nosh/internal/prompt/plugins"
)

// handleBuiltin intercepts REPL builtin commands. It reports whether the
// line was handled and whether the REPL should exit.
func (r *REPL) handleBuiltin(ctx context.Context, line string) (handled bool, exit bool) {
	switch {
	case line == "exit":
		return true, true

	case line == "/plugins":
		r.listPlugins()
		return true, false

	case strings.HasPrefix(line, "/inspect"):
		name := strings.TrimSpace(strings.TrimPrefix(line, "/inspect"))
		if name == "" {
			fmt.Fprintln(r.out, errorStyle.Render("usage: /inspect <plugin>"))
			return true, false
		}
		r.inspectPlugin(ctx, name)
		return true, false

	case line == "/reload":
		if err := r.engine.Reload(); err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("reload failed: "+err.Error()))
			return true, false
		}
		fmt.Fprintln(r.out, dimStyle.Render("plugins reloaded"))
		return true, false
	}

	return false, false
}

func (r *REPL) listPlugins() {
	summaries := r.engine.Plugins()
	if len(summaries) == 0 {
		fmt.Fprintln(r.out, dimStyle.Render("no plugins loaded"))
		return
	}

	fmt.Fprintln(r.out, headingStyle.Render("loaded plugins"))
	for _, summary := range summaries {
		fmt.Fprintf(r.out, "  %s  %s\n", summary.Name, dimStyle.Render(summary.Description))
		fmt.Fprintf(r.out, "    %s\n", dimStyle.Render(strings.Join(summary.Variables, ", ")))
	}
}

func (r *REPL) inspectPlugin(ctx context.Context, name string) {
	diagnostics, err := r.engine.Inspect(ctx, name)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
		return
	}

	fmt.Fprintln(r.out, headingStyle.Render("plugin "+name))
	for _, diag := range diagnostics {
		key := name + ":" + diag.Variable

		switch {
		case diag.Err != nil:
			fmt.Fprintf(r.out, "  %s  %s\n", key, errorStyle.Render(diag.Err.Error()))
		case diag.Value == "":
			fmt.Fprintf(r.out, "  %s  %s\n", key, dimStyle.Render("(empty)"))
		default:
			fmt.Fprintf(r.out, "  %s  %q\n", key, diag.Value)
		}

		details := []string{diag.Elapsed.Round(time.Millisecond).String()}
		if diag.Kind == plugins.ProviderCommand && diag.Raw != "" && diag.Raw != diag.Value {
			details = append(details, fmt.Sprintf("raw %q", diag.Raw))
		}
		if written, ok := r.engine.CacheWrittenAt(key); ok {
			details = append(details, "cached "+humanize.Time(written))
		}
		fmt.Fprintf(r.out, "    %s\n", dimStyle.Render(strings.Join(details, ", ")))
	}
}
