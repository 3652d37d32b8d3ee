package project

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// toolTimeout caps how long a single version probe may take. Detection is
// synchronous within a prompt draw, so probes must stay fast.
const toolTimeout = 500 * time.Millisecond

// detectTool probes a toolchain binary for its version.
func detectTool(tool string) (ToolInfo, bool) {
	var version string
	switch tool {
	case "go":
		// "go version go1.23.0 linux/amd64" -> "1.23.0"
		if out, ok := runTool("", "go", "version"); ok {
			fields := strings.Fields(out)
			if len(fields) >= 3 {
				version = strings.TrimPrefix(fields[2], "go")
			}
		}
	case "node":
		// "v20.11.0" -> "20.11.0"
		if out, ok := runTool("", "node", "--version"); ok {
			version = strings.TrimPrefix(out, "v")
		}
	case "bun":
		if out, ok := runTool("", "bun", "--version"); ok {
			version = out
		}
	case "python":
		// "Python 3.12.1" -> "3.12.1"
		if out, ok := runTool("", "python3", "--version"); ok {
			version = strings.TrimPrefix(out, "Python ")
		}
	case "rust":
		// "rustc 1.79.0 (...)" -> "1.79.0"
		if out, ok := runTool("", "rustc", "--version"); ok {
			fields := strings.Fields(out)
			if len(fields) >= 2 {
				version = fields[1]
			}
		}
	case "docker":
		if out, ok := runTool("", "docker", "version", "--format", "{{.Client.Version}}"); ok {
			version = out
		}
	}

	if version == "" {
		return ToolInfo{}, false
	}
	return ToolInfo{Version: version}, true
}

// runTool runs a binary directly (not through the shell) with a bounded
// context, returning its trimmed stdout.
func runTool(dir, name string, args ...string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}
