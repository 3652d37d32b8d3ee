package project

import (
	"os"
	"path/filepath"
	"strings"
)

// detectGit gathers branch and status information for a repository.
// Returns nil when no branch can be determined.
func detectGit(dir string) *GitInfo {
	branch := branchFromCommand(dir)
	if branch == "" {
		branch = branchFromHead(dir)
	}
	if branch == "" {
		return nil
	}

	info := &GitInfo{Branch: branch}

	out, ok := runTool(dir, "git", "status", "--porcelain")
	if ok {
		for _, line := range strings.Split(out, "\n") {
			if len(line) < 2 {
				continue
			}
			switch {
			case strings.HasPrefix(line, "??"):
				info.Untracked = true
			case line[0] != ' ':
				info.Staged = true
			}
			if line[1] != ' ' && !strings.HasPrefix(line, "??") {
				info.Dirty = true
			}
		}
	}

	return info
}

// branchFromCommand asks git for the current branch, falling back to a
// short commit hash for a detached HEAD.
func branchFromCommand(dir string) string {
	if out, ok := runTool(dir, "git", "branch", "--show-current"); ok && out != "" {
		return out
	}
	if out, ok := runTool(dir, "git", "rev-parse", "--short", "HEAD"); ok && out != "" {
		return ":" + out
	}
	return ""
}

// branchFromHead reads .git/HEAD directly, for when git is not on PATH.
func branchFromHead(dir string) string {
	gitDir := findGitDir(dir)
	if gitDir == "" {
		return ""
	}

	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return ""
	}

	head := strings.TrimSpace(string(data))
	if ref, found := strings.CutPrefix(head, "ref: refs/heads/"); found {
		return ref
	}
	if len(head) >= 7 {
		return ":" + head[:7]
	}
	return ""
}

// findGitDir locates the .git directory for dir, walking up parents.
func findGitDir(dir string) string {
	for {
		candidate := filepath.Join(dir, ".git")
		if stat, err := os.Stat(candidate); err == nil && stat.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
