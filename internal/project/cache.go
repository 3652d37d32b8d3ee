package project

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// indicatorFiles are monitored for modification; a change invalidates the
// cached context for a directory.
var indicatorFiles = []string{
	"Cargo.toml",
	"Cargo.lock",
	"package.json",
	"package-lock.json",
	"bun.lockb",
	"bun.lock",
	"bunfig.toml",
	"go.mod",
	"go.sum",
	"pyproject.toml",
	"setup.py",
	"requirements.txt",
	"Dockerfile",
	"docker-compose.yml",
	"docker-compose.yaml",
	"compose.yml",
	"compose.yaml",
	".git/HEAD",
	".git/index",
}

// maxCacheAge forces a refresh even when no indicator file changed, so
// external state (a new branch, a tool upgrade) is picked up.
const maxCacheAge = 5 * time.Second

// Cache memoizes the detected context for the most recent directory. A
// fresh detection runs when the directory changes, an indicator file's
// mtime changes, or the entry exceeds maxCacheAge.
type Cache struct {
	mu     sync.Mutex
	cached *cachedContext
}

type cachedContext struct {
	dir        string
	context    Context
	fileMtimes map[string]time.Time
	detectedAt time.Time
}

// NewCache creates an empty context cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the project context for dir, using the cache when valid.
func (c *Cache) Get(dir string) Context {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.cached != nil &&
		c.cached.dir == dir &&
		now.Sub(c.cached.detectedAt) <= maxCacheAge &&
		!filesChanged(dir, c.cached.fileMtimes) {
		return c.cached.context
	}

	context := Detect(dir)
	c.cached = &cachedContext{
		dir:        dir,
		context:    context,
		fileMtimes: collectMtimes(dir),
		detectedAt: now,
	}

	return context
}

// Invalidate clears the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}

func filesChanged(dir string, old map[string]time.Time) bool {
	for _, file := range indicatorFiles {
		path := filepath.Join(dir, file)
		oldMtime, had := old[file]

		stat, err := os.Stat(path)
		switch {
		case err == nil && !had:
			return true
		case err != nil && had:
			return true
		case err == nil && !stat.ModTime().Equal(oldMtime):
			return true
		}
	}
	return false
}

func collectMtimes(dir string) map[string]time.Time {
	mtimes := map[string]time.Time{}
	for _, file := range indicatorFiles {
		if stat, err := os.Stat(filepath.Join(dir, file)); err == nil {
			mtimes[file] = stat.ModTime()
		}
	}
	return mtimes
}
