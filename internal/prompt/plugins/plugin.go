// Package plugins defines the prompt plugin schema and the provider store.
// A plugin declares variables the prompt can render and how each one is
// computed: either a shell command line or an internal source built into
// nosh. Definitions are read wholesale from YAML files and are immutable
// after load.
package plugins

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ProviderKind tags how a variable is provided. The kind is decided once
// at parse time; ambiguous shapes are rejected then, never guessed at
// resolution time.
type ProviderKind int

const (
	// ProviderCommand runs a shell command line and captures its output.
	ProviderCommand ProviderKind = iota
	// ProviderInternal resolves synchronously inside nosh, bypassing
	// scheduling and caching.
	ProviderInternal
)

// Transform names a post-processing step applied to command output.
type Transform string

const (
	// TransformNone returns the trimmed output as-is.
	TransformNone Transform = ""
	// TransformTrim is an explicit alias for the default behavior.
	TransformTrim Transform = "trim"
	// TransformNonEmpty maps empty output to the plugin's "clean" icon and
	// non-empty output to its "dirty" icon.
	TransformNonEmpty Transform = "non_empty"
	// TransformWithIcon hides the variable on empty output and otherwise
	// prefixes the configured icon.
	TransformWithIcon Transform = "with_icon"
)

// Provider defines how one prompt variable is computed.
type Provider struct {
	Kind      ProviderKind
	Command   string
	Source    string
	Transform Transform
	Timeout   time.Duration
	Cache     CachePolicy
}

// Plugin is a loaded plugin definition: a set of variable providers plus
// icons and configuration. Read-only after load; reload replaces the whole
// store.
type Plugin struct {
	Name        string
	Description string
	Provides    map[string]Provider
	Icons       map[string]string
	Config      map[string]any
}

// Icon returns the named icon, or an empty string when not configured.
func (p *Plugin) Icon(name string) string {
	return p.Icons[name]
}

// ConfigInt returns an integer config value, or def when absent or not a
// number.
func (p *Plugin) ConfigInt(key string, def int) int {
	v, ok := p.Config[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// ConfigString returns a string config value, or def when absent.
func (p *Plugin) ConfigString(key string, def string) string {
	if s, ok := p.Config[key].(string); ok {
		return s
	}
	return def
}

// rawPlugin mirrors the on-disk YAML shape.
type rawPlugin struct {
	Plugin struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"plugin"`
	Provides map[string]rawProvider `yaml:"provides"`
	Icons    map[string]string      `yaml:"icons"`
	Config   map[string]any         `yaml:"config"`
}

type rawProvider struct {
	Command   string `yaml:"command"`
	Source    string `yaml:"source"`
	Transform string `yaml:"transform"`
	Timeout   string `yaml:"timeout"`
	Cache     string `yaml:"cache"`
}

// Parse decodes a plugin definition. Variables with an ambiguous or empty
// shape are dropped (reported in the returned slice) without failing the
// plugin; a plugin without a name is an error.
func Parse(data []byte) (*Plugin, []error, error) {
	var raw rawPlugin
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse plugin definition: %w", err)
	}
	if raw.Plugin.Name == "" {
		return nil, nil, fmt.Errorf("plugin definition has no name")
	}

	plugin := &Plugin{
		Name:        raw.Plugin.Name,
		Description: raw.Plugin.Description,
		Provides:    make(map[string]Provider, len(raw.Provides)),
		Icons:       raw.Icons,
		Config:      raw.Config,
	}
	if plugin.Icons == nil {
		plugin.Icons = map[string]string{}
	}
	if plugin.Config == nil {
		plugin.Config = map[string]any{}
	}

	var dropped []error
	for name, rp := range raw.Provides {
		prov, err := parseProvider(rp)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("variable %q: %w", name, err))
			continue
		}
		plugin.Provides[name] = prov
	}

	return plugin, dropped, nil
}

func parseProvider(raw rawProvider) (Provider, error) {
	if raw.Source != "" && raw.Command != "" {
		return Provider{}, fmt.Errorf("declares both command and source")
	}
	if raw.Source != "" {
		return Provider{
			Kind:   ProviderInternal,
			Source: raw.Source,
		}, nil
	}
	if raw.Command == "" {
		return Provider{}, fmt.Errorf("declares neither command nor source")
	}

	transform := Transform(raw.Transform)
	switch transform {
	case TransformNone, TransformTrim, TransformNonEmpty, TransformWithIcon:
	default:
		// Unknown transforms degrade to plain trimmed output.
		transform = TransformNone
	}

	return Provider{
		Kind:      ProviderCommand,
		Command:   raw.Command,
		Transform: transform,
		Timeout:   ParseTimeout(raw.Timeout),
		Cache:     ParseCachePolicy(raw.Cache),
	}, nil
}
