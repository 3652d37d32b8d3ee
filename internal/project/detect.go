package project

import (
	"os"
	"path/filepath"
	"strings"
)

// Detect performs a single directory scan and then conditionally runs only
// the detectors whose indicator files are present.
func Detect(dir string) Context {
	files := readDirNames(dir)

	hasCargo := files["Cargo.toml"]
	hasPackageJSON := files["package.json"]
	hasBun := files["bun.lockb"] || files["bun.lock"] || files["bunfig.toml"]
	hasGoMod := files["go.mod"]
	hasPython := files["pyproject.toml"] || files["setup.py"] || files["requirements.txt"]
	hasDocker := files["Dockerfile"] || files["docker-compose.yml"] || files["docker-compose.yaml"] ||
		files["compose.yml"] || files["compose.yaml"]
	hasGit := files[".git"] || inGitRepo(dir)

	ctx := Context{
		Dir:        dir,
		Toolchains: map[string]ToolInfo{},
	}

	if hasGit {
		ctx.Git = detectGit(dir)
	}
	ctx.Package = detectPackage(dir, files)

	type probe struct {
		tool    string
		present bool
	}
	for _, p := range []probe{
		{"go", hasGoMod},
		{"node", hasPackageJSON && !hasBun},
		{"bun", hasBun},
		{"python", hasPython},
		{"rust", hasCargo},
		{"docker", hasDocker},
	} {
		if !p.present {
			continue
		}
		if info, ok := detectTool(p.tool); ok {
			ctx.Toolchains[p.tool] = info
		}
	}

	return ctx
}

// readDirNames returns the set of entry names directly in dir.
func readDirNames(dir string) map[string]bool {
	names := map[string]bool{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return names
	}
	for _, entry := range entries {
		names[entry.Name()] = true
	}
	return names
}

// inGitRepo checks for a .git directory in dir or any parent.
func inGitRepo(dir string) bool {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir || strings.TrimSpace(parent) == "" {
			return false
		}
		dir = parent
	}
}
