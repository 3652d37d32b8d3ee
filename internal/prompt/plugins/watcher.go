package plugins

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceWindow collapses the event bursts editors produce when saving.
const debounceWindow = 200 * time.Millisecond

// Watcher watches the store's roots and triggers a reload when plugin
// definition files change, so edits take effect on the next prompt draw.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	reload  func() error
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatcher creates a watcher over the store's roots. The reload function
// is called after changes settle; it is never called concurrently with
// itself.
func NewWatcher(store *Store, reload func() error, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, root := range store.Roots() {
		// Roots may not exist yet; they are picked up on the next start.
		if err := fsw.Add(root); err != nil {
			logger.Debug("not watching plugin root", zap.String("root", root), zap.Error(err))
		}
	}

	return &Watcher{
		watcher: fsw,
		logger:  logger,
		reload:  reload,
	}, nil
}

// Start begins watching in a background goroutine until ctx is canceled or
// Close is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var pending *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if pending == nil {
				pending = time.NewTimer(debounceWindow)
				fire = pending.C
			} else {
				pending.Reset(debounceWindow)
			}

		case <-fire:
			pending = nil
			fire = nil
			if err := w.reload(); err != nil {
				w.logger.Warn("plugin reload after file change failed", zap.Error(err))
			} else {
				w.logger.Debug("plugins reloaded after file change")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("plugin watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher and waits for the background goroutine to exit.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.watcher.Close()
	if w.done != nil {
		<-w.done
	}
	return err
}
