package repl

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// DefaultFormat is the prompt rendered when NOSH_PROMPT is not set.
const DefaultFormat = "{cwd_short} {git:branch}{git:dirty} {exec_time:took}{newline}$ "

// keyPattern matches {plugin:variable} references in a prompt format
// string. Plugin names may be package-qualified ("pkg/name").
var keyPattern = regexp.MustCompile(`\{([A-Za-z0-9_./-]+:[A-Za-z0-9_-]+)\}`)

// ExtractKeys returns the unique plugin variable keys referenced by a
// prompt format string, in order of first appearance.
func ExtractKeys(format string) []string {
	matches := keyPattern.FindAllStringSubmatch(format, -1)
	keys := lo.Map(matches, func(m []string, _ int) string {
		return m[1]
	})
	return lo.Uniq(keys)
}

// RenderPrompt substitutes resolved variable values and builtin tokens
// into the format string. Empty values disappear along with the
// whitespace that framed them, so the prompt never shows gaps for
// variables that resolved to nothing.
func RenderPrompt(format string, values map[string]string, pwd string) string {
	rendered := keyPattern.ReplaceAllStringFunc(format, func(token string) string {
		key := token[1 : len(token)-1]
		return values[key]
	})

	for token, value := range builtinTokens(pwd) {
		rendered = strings.ReplaceAll(rendered, token, value)
	}

	lines := strings.Split(rendered, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	out := strings.Join(lines, "\n")

	// A format ending in whitespace keeps it: that is where input goes.
	if trailing := trailingSpace(format); trailing != "" && !strings.HasSuffix(out, trailing) {
		out += trailing
	}
	return out
}

// builtinTokens are substitutions resolved by the REPL itself rather
// than by a plugin.
func builtinTokens(pwd string) map[string]string {
	hostname, _ := os.Hostname()
	return map[string]string{
		"{cwd}":       pwd,
		"{cwd_short}": shortenPath(pwd),
		"{user}":      os.Getenv("USER"),
		"{host}":      hostname,
		"{newline}":   "\n",
	}
}

// shortenPath abbreviates the home directory to "~" and keeps only the
// last two path elements of deep paths.
func shortenPath(path string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if path == home {
			return "~"
		}
		if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = "~/" + rel
		}
	}

	parts := strings.Split(path, string(filepath.Separator))
	if len(parts) > 3 {
		parts = parts[len(parts)-2:]
		return filepath.Join(parts...)
	}
	return path
}

func trailingSpace(s string) string {
	trimmed := strings.TrimRight(s, " ")
	return s[len(trimmed):]
}
