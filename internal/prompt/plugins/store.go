package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store holds the loaded plugin definitions and exposes read-only lookups
// keyed by "plugin:variable". Reload rebuilds the table wholesale and swaps
// it atomically, so no caller ever observes a half-updated set of
// providers.
type Store struct {
	pluginsDir  string
	packagesDir string
	logger      *zap.Logger

	mu      sync.RWMutex
	plugins map[string]*Plugin
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// PluginsDir holds top-level plugin definitions, one YAML file each,
	// under "builtin" and "community" subdirectories.
	PluginsDir string
	// PackagesDir holds installed packages; <pkg>/plugins/*.yaml register
	// under the composite name "<pkg>/<plugin>" so they cannot collide
	// with top-level plugins.
	PackagesDir string
	Logger      *zap.Logger
}

// NewStore creates an empty store. Call Load to populate it.
func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		pluginsDir:  opts.PluginsDir,
		packagesDir: opts.PackagesDir,
		logger:      logger,
		plugins:     map[string]*Plugin{},
	}
}

// Load discovers and parses every plugin definition under the configured
// roots, then atomically replaces the current table. Malformed files are
// skipped; Load only fails when a root cannot be listed at all.
func (s *Store) Load() error {
	var (
		mu     sync.Mutex
		loaded = map[string]*Plugin{}
	)

	register := func(name string, p *Plugin) {
		mu.Lock()
		defer mu.Unlock()
		loaded[name] = p
	}

	var g errgroup.Group

	for _, sub := range []string{"builtin", "community"} {
		dir := filepath.Join(s.pluginsDir, sub)
		g.Go(func() error {
			return s.loadDirectory(dir, "", register)
		})
	}

	g.Go(func() error {
		return s.loadPackages(register)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.plugins = loaded
	s.mu.Unlock()

	s.logger.Debug("plugin store loaded", zap.Int("plugins", len(loaded)))
	return nil
}

// Reload is an alias for Load, named for call sites that rebuild an
// already-populated store.
func (s *Store) Reload() error {
	return s.Load()
}

// loadDirectory parses every *.yaml file in dir. A non-empty prefix
// registers plugins under "<prefix>/<name>".
func (s *Store) loadDirectory(dir, prefix string, register func(string, *Plugin)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read plugin directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable plugin file",
				zap.String("path", path), zap.Error(err))
			continue
		}

		plugin, dropped, err := Parse(data)
		if err != nil {
			s.logger.Warn("skipping malformed plugin file",
				zap.String("path", path), zap.Error(err))
			continue
		}
		for _, d := range dropped {
			s.logger.Warn("dropped plugin variable",
				zap.String("path", path), zap.Error(d))
		}

		name := plugin.Name
		if prefix != "" {
			name = prefix + "/" + plugin.Name
		}
		register(name, plugin)
	}

	return nil
}

// loadPackages walks the packages dir and loads <pkg>/plugins/*.yaml under
// composite names.
func (s *Store) loadPackages(register func(string, *Plugin)) error {
	entries, err := os.ReadDir(s.packagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read packages directory %s: %w", s.packagesDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.packagesDir, entry.Name(), "plugins")
		if err := s.loadDirectory(dir, entry.Name(), register); err != nil {
			return err
		}
	}

	return nil
}

// Provider looks up the provider for a variable key of the form
// "plugin:variable".
func (s *Store) Provider(key string) (*Plugin, Provider, bool) {
	pluginName, varName, ok := SplitKey(key)
	if !ok {
		return nil, Provider{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	plugin, ok := s.plugins[pluginName]
	if !ok {
		return nil, Provider{}, false
	}
	prov, ok := plugin.Provides[varName]
	if !ok {
		return nil, Provider{}, false
	}
	return plugin, prov, true
}

// Plugin returns a loaded plugin by name.
func (s *Store) Plugin(name string) (*Plugin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plugins[name]
	return p, ok
}

// Icon returns the named icon of a plugin, or "".
func (s *Store) Icon(pluginName, iconName string) string {
	if p, ok := s.Plugin(pluginName); ok {
		return p.Icon(iconName)
	}
	return ""
}

// Summary describes one loaded plugin for listings.
type Summary struct {
	Name        string
	Description string
	Variables   []string
}

// Summaries lists the loaded plugins sorted by name.
func (s *Store) Summaries() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := lo.MapToSlice(s.plugins, func(name string, p *Plugin) Summary {
		vars := lo.Keys(p.Provides)
		sort.Strings(vars)
		return Summary{
			Name:        name,
			Description: p.Description,
			Variables:   vars,
		}
	})
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

// Roots returns the directories the store loads from, for watchers.
func (s *Store) Roots() []string {
	return []string{
		filepath.Join(s.pluginsDir, "builtin"),
		filepath.Join(s.pluginsDir, "community"),
		s.packagesDir,
	}
}

// SplitKey splits a "plugin:variable" key. The plugin part may itself be a
// composite "package/plugin" name.
func SplitKey(key string) (pluginName, varName string, ok bool) {
	idx := strings.LastIndex(key, ":")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}
