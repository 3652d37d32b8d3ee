// Package prompt implements the prompt variable resolution engine. It
// computes the dynamic values a prompt draw needs (git status, toolchain
// versions, last-command duration, ...) by running provider commands
// concurrently, bounding how long a draw may wait, and caching results
// under per-variable policies. Hung fetches are forcibly reclaimed after a
// hard timeout so a stuck subprocess can never wedge the prompt.
package prompt

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noshsh/nosh/internal/project"
	"github.com/noshsh/nosh/internal/prompt/plugins"
)

// HardTimeout is the absolute ceiling after which an in-flight fetch is
// canceled and its registry entry evicted.
const HardTimeout = 5 * time.Second

// CommandRunner executes provider command lines. Satisfied by
// executor.Executor.
type CommandRunner interface {
	// RunInSubshell runs a command line in a subshell, capturing output.
	RunInSubshell(ctx context.Context, command string) (stdout, stderr string, exitCode int, err error)
	// Pwd returns the shell's current working directory.
	Pwd() string
}

// ProviderSource is the engine's read-only view of the plugin store.
// Satisfied by plugins.Store.
type ProviderSource interface {
	Provider(key string) (*plugins.Plugin, plugins.Provider, bool)
	Plugin(name string) (*plugins.Plugin, bool)
	Summaries() []plugins.Summary
	Reload() error
}

// Options configures an Engine. Store and Runner are required; the shared
// cache and registry are created when nil so independent engine instances
// never interfere with one another.
type Options struct {
	Store    ProviderSource
	Runner   CommandRunner
	Logger   *zap.Logger
	Project  *project.Cache
	Cache    *Cache
	Registry *Registry

	// HardTimeout overrides the stale-task ceiling. Zero means the
	// package default; tests use small values.
	HardTimeout time.Duration
}

// Engine resolves prompt variable keys to rendered values.
type Engine struct {
	store       ProviderSource
	runner      CommandRunner
	logger      *zap.Logger
	projectInfo *project.Cache
	cache       *Cache
	registry    *Registry
	hardTimeout time.Duration

	durationMu   sync.Mutex
	lastDuration time.Duration
	hasDuration  bool
}

// New creates an Engine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewCache()
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	projectInfo := opts.Project
	if projectInfo == nil {
		projectInfo = project.NewCache()
	}
	hardTimeout := opts.HardTimeout
	if hardTimeout == 0 {
		hardTimeout = HardTimeout
	}

	return &Engine{
		store:       opts.Store,
		runner:      opts.Runner,
		logger:      logger,
		projectInfo: projectInfo,
		cache:       cache,
		registry:    registry,
		hardTimeout: hardTimeout,
	}
}

// pending is one key scheduled as a background fetch this cycle.
type pending struct {
	key  string
	t    *task
	wait bool
}

// Resolve computes values for the requested keys, one call per prompt
// draw. Every requested key appears in the result, with an empty string
// when nothing resolvable was available in time. Resolve is re-entrant:
// it may be called again before fetches from a prior call finish.
func (e *Engine) Resolve(ctx context.Context, keys []string) map[string]string {
	now := time.Now()

	for _, key := range e.registry.reap(e.hardTimeout, now) {
		e.logger.Warn("reclaimed stale prompt fetch", zap.String("key", key))
	}

	results := make(map[string]string, len(keys))
	var scheduled []pending
	deadline := now

	for _, key := range keys {
		results[key] = ""

		plugin, prov, ok := e.store.Provider(key)
		if !ok {
			continue
		}

		// Internal providers resolve synchronously, bypassing
		// scheduling and caching.
		if prov.Kind == plugins.ProviderInternal {
			_, varName, _ := plugins.SplitKey(key)
			results[key] = e.resolveInternal(plugin, prov, varName)
			continue
		}

		// A fetch already in flight is never re-spawned; render from
		// whatever is cached.
		if _, running := e.registry.lookup(key); running {
			if value, _, ok := e.cache.Lookup(key, now); ok {
				results[key] = value
			}
			continue
		}

		if value, fresh, ok := e.cache.Lookup(key, now); ok && fresh {
			results[key] = value
			continue
		}

		t, ok := e.spawn(key, plugin, prov)
		if !ok {
			// Lost a race with a concurrent Resolve; fall back to cache.
			if value, _, ok := e.cache.Lookup(key, now); ok {
				results[key] = value
			}
			continue
		}

		wait := prov.Timeout > 0
		if wait {
			keyDeadline := now.Add(prov.Timeout)
			if keyDeadline.After(deadline) {
				deadline = keyDeadline
			}
		}
		scheduled = append(scheduled, pending{key: key, t: t, wait: wait})
	}

	// Wait per key, capped by the time remaining to the one shared
	// deadline, so the whole batch is bounded by the largest timeout
	// rather than the sum.
	for _, p := range scheduled {
		if !p.wait {
			// Fire-and-forget: never waited on; the task still runs to
			// populate the cache for a future draw.
			if value, _, ok := e.cache.Lookup(p.key, now); ok {
				results[p.key] = value
			}
			continue
		}

		if remaining := time.Until(deadline); remaining > 0 {
			timer := time.NewTimer(remaining)
			select {
			case <-p.t.done:
			case <-timer.C:
			case <-ctx.Done():
			}
			timer.Stop()
		}

		select {
		case <-p.t.done:
			if p.t.err == nil {
				results[p.key] = p.t.value
				continue
			}
		default:
			// Timed out: leave the task running for a future draw.
		}

		if value, _, ok := e.cache.Lookup(p.key, time.Now()); ok {
			results[p.key] = value
		}
	}

	return results
}

// spawn registers and starts a background fetch for key. Returns false
// when another fetch for key won the single-flight race.
func (e *Engine) spawn(key string, plugin *plugins.Plugin, prov plugins.Provider) (*task, bool) {
	// The task may outlive the caller's wait, so its context is detached
	// from the draw; only the hard-timeout reaper cancels it.
	taskCtx, cancel := context.WithCancel(context.Background())

	t, ok := e.registry.begin(key, time.Now(), cancel)
	if !ok {
		cancel()
		return nil, false
	}

	go e.runFetch(taskCtx, t, plugin, prov)
	return t, true
}

// runFetch executes one provider fetch to completion. Cache writes are
// gated on still owning the registry entry, so a reaped task can never
// write the cache.
func (e *Engine) runFetch(ctx context.Context, t *task, plugin *plugins.Plugin, prov plugins.Provider) {
	_, varName, _ := plugins.SplitKey(t.key)
	value, err := e.fetchCommand(ctx, plugin, prov, varName)

	owned := e.registry.remove(t)
	switch {
	case !owned:
		e.logger.Debug("fetch finished after reclamation", zap.String("key", t.key))
		if err == nil {
			err = context.Canceled
		}
	case err != nil || ctx.Err() != nil:
		// Failure deregisters without writing, preserving any prior
		// cached value.
		e.logger.Debug("prompt fetch failed",
			zap.String("key", t.key), zap.Error(err))
	default:
		e.cache.Store(t.key, value, prov.Cache, time.Now())
	}

	t.finish(value, err)
}

// RecordCommandDuration reports the duration of the last completed
// foreground command, consumed by the exec_time internal resolver.
func (e *Engine) RecordCommandDuration(d time.Duration) {
	e.durationMu.Lock()
	defer e.durationMu.Unlock()
	e.lastDuration = d
	e.hasDuration = true
}

// lastCommandDuration returns the recorded duration, if any.
func (e *Engine) lastCommandDuration() (time.Duration, bool) {
	e.durationMu.Lock()
	defer e.durationMu.Unlock()
	return e.lastDuration, e.hasDuration
}

// Reload rebuilds the provider store wholesale and drops all cached
// values, including sticky "never" entries.
func (e *Engine) Reload() error {
	if err := e.store.Reload(); err != nil {
		return err
	}
	e.cache.Clear()
	e.projectInfo.Invalidate()
	e.logger.Debug("prompt engine reloaded")
	return nil
}

// Plugins lists the loaded plugins.
func (e *Engine) Plugins() []plugins.Summary {
	return e.store.Summaries()
}

// CacheWrittenAt exposes when a key's cache entry was written, for
// diagnostics.
func (e *Engine) CacheWrittenAt(key string) (time.Time, bool) {
	return e.cache.WrittenAt(key)
}
