package plugins

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gitPluginYAML = `
plugin:
  name: git
  description: Git status

provides:
  branch:
    command: git branch --show-current
    transform: with_icon
    timeout: 200ms
    cache: 2s
  dirty:
    command: git status --porcelain
    transform: non_empty

icons:
  branch: "⎇"
  clean: ""
  dirty: "*"

config:
  min_ms: 500
`

func TestParse(t *testing.T) {
	t.Run("parses a command plugin", func(t *testing.T) {
		plugin, dropped, err := Parse([]byte(gitPluginYAML))
		require.NoError(t, err)
		assert.Empty(t, dropped)

		assert.Equal(t, "git", plugin.Name)
		assert.Equal(t, "Git status", plugin.Description)

		branch, ok := plugin.Provides["branch"]
		require.True(t, ok)
		assert.Equal(t, ProviderCommand, branch.Kind)
		assert.Equal(t, "git branch --show-current", branch.Command)
		assert.Equal(t, TransformWithIcon, branch.Transform)
		assert.Equal(t, 200*time.Millisecond, branch.Timeout)
		assert.Equal(t, CachePolicy{Mode: PolicyTTL, TTL: 2 * time.Second}, branch.Cache)

		dirty, ok := plugin.Provides["dirty"]
		require.True(t, ok)
		assert.Equal(t, TransformNonEmpty, dirty.Transform)
		assert.Equal(t, DefaultTimeout, dirty.Timeout)
		assert.Equal(t, CachePolicy{Mode: PolicyTTL, TTL: DefaultCacheTTL}, dirty.Cache)

		assert.Equal(t, "⎇", plugin.Icon("branch"))
		assert.Equal(t, "*", plugin.Icon("dirty"))
		assert.Equal(t, 500, plugin.ConfigInt("min_ms", 0))
	})

	t.Run("parses an internal plugin", func(t *testing.T) {
		plugin, dropped, err := Parse([]byte(`
plugin:
  name: exec_time
provides:
  duration:
    source: internal
`))
		require.NoError(t, err)
		assert.Empty(t, dropped)

		duration, ok := plugin.Provides["duration"]
		require.True(t, ok)
		assert.Equal(t, ProviderInternal, duration.Kind)
		assert.Equal(t, "internal", duration.Source)
	})

	t.Run("drops ambiguous variables without failing the plugin", func(t *testing.T) {
		plugin, dropped, err := Parse([]byte(`
plugin:
  name: mixed
provides:
  good:
    command: echo ok
  both:
    command: echo no
    source: internal
  neither:
    transform: trim
`))
		require.NoError(t, err)
		assert.Len(t, dropped, 2)
		assert.Len(t, plugin.Provides, 1)
		assert.Contains(t, plugin.Provides, "good")
	})

	t.Run("unknown transform degrades to trim", func(t *testing.T) {
		plugin, _, err := Parse([]byte(`
plugin:
  name: p
provides:
  v:
    command: echo hi
    transform: sparkle
`))
		require.NoError(t, err)
		assert.Equal(t, TransformNone, plugin.Provides["v"].Transform)
	})

	t.Run("rejects nameless plugins", func(t *testing.T) {
		_, _, err := Parse([]byte(`
provides:
  v:
    command: echo hi
`))
		assert.Error(t, err)
	})

	t.Run("rejects invalid YAML", func(t *testing.T) {
		_, _, err := Parse([]byte("plugin: [not: valid"))
		assert.Error(t, err)
	})
}

func TestPluginConfig(t *testing.T) {
	plugin := &Plugin{Config: map[string]any{
		"min_ms": 250,
		"style":  "compact",
		"ratio":  1.5,
	}}

	assert.Equal(t, 250, plugin.ConfigInt("min_ms", 500))
	assert.Equal(t, 500, plugin.ConfigInt("missing", 500))
	assert.Equal(t, 500, plugin.ConfigInt("style", 500))
	assert.Equal(t, 1, plugin.ConfigInt("ratio", 0))
	assert.Equal(t, "compact", plugin.ConfigString("style", ""))
	assert.Equal(t, "x", plugin.ConfigString("missing", "x"))
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key        string
		pluginName string
		varName    string
		ok         bool
	}{
		{"git:branch", "git", "branch", true},
		{"mypack/git:branch", "mypack/git", "branch", true},
		{"noseparator", "", "", false},
		{":branch", "", "", false},
		{"git:", "", "", false},
	}

	for _, tt := range tests {
		pluginName, varName, ok := SplitKey(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.pluginName, pluginName, tt.key)
		assert.Equal(t, tt.varName, varName, tt.key)
	}
}
