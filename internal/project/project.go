// Package project detects project context for a working directory: git
// repository state, package metadata, and toolchain versions. It is
// independently owned by the prompt's internal "context" resolver and
// keeps its own mtime-based cache, separate from the prompt value cache.
package project

// Context is the complete detected context for one directory.
type Context struct {
	// Dir is the directory the context was detected in.
	Dir string
	// Git is nil outside a git repository.
	Git *GitInfo
	// Package is nil when no package manifest was found.
	Package *PackageInfo
	// Toolchains maps tool name ("go", "node", ...) to detected info.
	Toolchains map[string]ToolInfo
}

// GitInfo is git repository status information.
type GitInfo struct {
	// Branch is the current branch name, or ":<hash>" for a detached HEAD.
	Branch string
	// Dirty reports uncommitted changes to tracked files.
	Dirty bool
	// Staged reports staged changes.
	Staged bool
	// Untracked reports untracked files.
	Untracked bool
}

// StatusIndicator formats git status as a short indicator string such as
// "[!?]". Returns "" for a clean tree.
func (g *GitInfo) StatusIndicator() string {
	var s string
	if g.Staged {
		s += "!"
	}
	if g.Untracked {
		s += "?"
	}
	if g.Dirty && s == "" {
		s = "*"
	}
	if s == "" {
		return ""
	}
	return "[" + s + "]"
}

// PackageInfo is package/project metadata from a manifest file.
type PackageInfo struct {
	Name    string
	Version string
}

// ToolInfo is a detected toolchain version.
type ToolInfo struct {
	Version string
}

// Icons for detected toolchains and packages.
var toolIcons = map[string]string{
	"go":      "🐹",
	"node":    "⬢",
	"bun":     "🥟",
	"python":  "🐍",
	"rust":    "🦀",
	"docker":  "🐳",
	"package": "📦",
}

// ToolIcon returns the icon for a tool name, or "".
func ToolIcon(name string) string {
	return toolIcons[name]
}
