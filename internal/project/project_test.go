package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestStatusIndicator(t *testing.T) {
	tests := []struct {
		name string
		info GitInfo
		want string
	}{
		{"clean", GitInfo{}, ""},
		{"dirty only", GitInfo{Dirty: true}, "[*]"},
		{"staged", GitInfo{Staged: true}, "[!]"},
		{"untracked", GitInfo{Untracked: true}, "[?]"},
		{"staged and untracked", GitInfo{Staged: true, Untracked: true}, "[!?]"},
		{"dirty and staged", GitInfo{Dirty: true, Staged: true}, "[!]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.StatusIndicator())
		})
	}
}

func TestDetectPackage(t *testing.T) {
	t.Run("package.json", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"name": "my-app", "version": "1.2.3"}`)

		ctx := Detect(dir)
		require.NotNil(t, ctx.Package)
		assert.Equal(t, "my-app", ctx.Package.Name)
		assert.Equal(t, "1.2.3", ctx.Package.Version)
	})

	t.Run("Cargo.toml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "Cargo.toml", "[package]\nname = \"my-crate\"\nversion = \"0.4.0\"\n\n[dependencies]\nserde = \"1\"\n")

		ctx := Detect(dir)
		require.NotNil(t, ctx.Package)
		assert.Equal(t, "my-crate", ctx.Package.Name)
		assert.Equal(t, "0.4.0", ctx.Package.Version)
	})

	t.Run("go.mod", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "go.mod", "module github.com/example/widget\n\ngo 1.23.0\n")

		ctx := Detect(dir)
		require.NotNil(t, ctx.Package)
		assert.Equal(t, "widget", ctx.Package.Name)
		assert.Equal(t, "", ctx.Package.Version)
	})

	t.Run("package.json wins over go.mod", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"name": "front", "version": "2.0.0"}`)
		writeFile(t, dir, "go.mod", "module github.com/example/back\n")

		ctx := Detect(dir)
		require.NotNil(t, ctx.Package)
		assert.Equal(t, "front", ctx.Package.Name)
	})

	t.Run("empty directory", func(t *testing.T) {
		ctx := Detect(t.TempDir())
		assert.Nil(t, ctx.Package)
		assert.Nil(t, ctx.Git)
		assert.Empty(t, ctx.Toolchains)
	})

	t.Run("malformed manifests are skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "package.json", "{not json")

		ctx := Detect(dir)
		assert.Nil(t, ctx.Package)
	})
}

func TestBranchFromHead(t *testing.T) {
	t.Run("branch ref", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))
		writeFile(t, filepath.Join(dir, ".git"), "HEAD", "ref: refs/heads/feature/fast-prompt\n")

		assert.Equal(t, "feature/fast-prompt", branchFromHead(dir))
	})

	t.Run("detached head", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))
		writeFile(t, filepath.Join(dir, ".git"), "HEAD", "0123456789abcdef0123456789abcdef01234567\n")

		assert.Equal(t, ":0123456", branchFromHead(dir))
	})

	t.Run("no repository", func(t *testing.T) {
		assert.Equal(t, "", branchFromHead(t.TempDir()))
	})
}

func TestCache(t *testing.T) {
	t.Run("caches by directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"name": "cached", "version": "1.0.0"}`)

		cache := NewCache()
		first := cache.Get(dir)
		require.NotNil(t, first.Package)

		// Removing the manifest without touching an indicator file's
		// mtime is impossible, so the next Get re-detects.
		require.NoError(t, os.Remove(filepath.Join(dir, "package.json")))
		second := cache.Get(dir)
		assert.Nil(t, second.Package)
	})

	t.Run("invalidate clears the entry", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"name": "a", "version": "1"}`)

		cache := NewCache()
		cache.Get(dir)
		cache.Invalidate()

		writeFile(t, dir, "package.json", `{"name": "b", "version": "2"}`)
		ctx := cache.Get(dir)
		require.NotNil(t, ctx.Package)
		assert.Equal(t, "b", ctx.Package.Name)
	})

	t.Run("serves cached context within the age ceiling", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"name": "stable", "version": "1"}`)

		cache := NewCache()
		first := cache.Get(dir)
		second := cache.Get(dir)
		assert.Equal(t, first, second)
	})
}

func TestCollectMtimes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module x\n")

	mtimes := collectMtimes(dir)
	assert.Contains(t, mtimes, "go.mod")
	assert.NotContains(t, mtimes, "package.json")

	assert.False(t, filesChanged(dir, mtimes))

	// Changing an indicator file's mtime invalidates.
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "go.mod"), future, future))
	assert.True(t, filesChanged(dir, mtimes))
}
