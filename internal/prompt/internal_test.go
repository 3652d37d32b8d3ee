package prompt

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{450 * time.Millisecond, "450ms"},
		{999 * time.Millisecond, "999ms"},
		{time.Second, "1.0s"},
		{1500 * time.Millisecond, "1.5s"},
		{2300 * time.Millisecond, "2.3s"},
		{59*time.Second + 900*time.Millisecond, "59.9s"},
		{60 * time.Second, "1m0s"},
		{65 * time.Second, "1m5s"},
		{2*time.Minute + 30*time.Second, "2m30s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d), "FormatDuration(%v)", tt.d)
	}
}

func TestDurationVariable(t *testing.T) {
	runner := newFakeRunner()
	engine, _ := newTestEngine(t, runner, `
plugin:
  name: exec_time
provides:
  duration:
    source: internal
  took:
    source: internal
`)

	// No command has completed yet.
	results := engine.Resolve(context.Background(), []string{"exec_time:duration"})
	assert.Equal(t, "", results["exec_time:duration"])

	// Below the default 500ms threshold nothing is shown.
	engine.RecordCommandDuration(300 * time.Millisecond)
	results = engine.Resolve(context.Background(), []string{"exec_time:duration"})
	assert.Equal(t, "", results["exec_time:duration"])

	engine.RecordCommandDuration(65 * time.Second)
	results = engine.Resolve(context.Background(), []string{"exec_time:duration", "exec_time:took"})
	assert.Equal(t, "1m5s", results["exec_time:duration"])
	assert.Equal(t, "took 1m5s", results["exec_time:took"])
}

func TestDurationThresholdConfigurable(t *testing.T) {
	runner := newFakeRunner()
	engine, _ := newTestEngine(t, runner, `
plugin:
  name: exec_time
provides:
  duration:
    source: internal
config:
  min_ms: 50
`)

	engine.RecordCommandDuration(120 * time.Millisecond)
	results := engine.Resolve(context.Background(), []string{"exec_time:duration"})
	assert.Equal(t, "120ms", results["exec_time:duration"])
}

func TestContextVariables(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"name": "webapp", "version": "2.1.0"}`), 0644))

	runner := newFakeRunner()
	runner.dir = dir

	engine, _ := newTestEngine(t, runner, `
plugin:
  name: context
provides:
  package_name:
    source: context
  package_version:
    source: context
  git_branch:
    source: context
  elixir_version:
    source: context
`)

	results := engine.Resolve(context.Background(), []string{
		"context:package_name",
		"context:package_version",
		"context:git_branch",
		"context:elixir_version",
	})

	assert.Equal(t, "webapp", results["context:package_name"])
	assert.Equal(t, "2.1.0", results["context:package_version"])
	assert.Equal(t, "", results["context:git_branch"], "no repository in a bare temp dir")
	assert.Equal(t, "", results["context:elixir_version"], "undetected toolchains resolve empty")
}
