package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a maxlist directory into a repository whenever a file in
// it changes.
type Watcher struct {
	root     string
	repo     *MemoryRepository
	log      *zap.Logger
	debounce time.Duration
	onReload func(count int, err error)
	watcher  *fsnotify.Watcher
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for a burst of events to
// settle before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the logger.
func WithWatchLogger(log *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// OnReload registers a callback run after every reload attempt.
func OnReload(fn func(count int, err error)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher creates a watcher for root. Nothing is watched until Run.
func NewWatcher(root string, repo *MemoryRepository, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("inventory: watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		repo:     repo,
		log:      zap.NewNop(),
		debounce: 200 * time.Millisecond,
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Reload reads the directory and replaces the repository content. On a
// parse error the repository keeps its previous content.
func (w *Watcher) Reload() error {
	invs, err := ReadDir(w.root)
	if err == nil {
		w.repo.Replace(invs)
		w.log.Info("inventories reloaded", zap.String("dir", w.root), zap.Int("count", len(invs)))
	} else {
		w.log.Warn("inventory reload failed", zap.String("dir", w.root), zap.Error(err))
	}
	if w.onReload != nil {
		w.onReload(len(invs), err)
	}
	return err
}

// Run loads the directory once, then reloads on change until ctx is done.
// It closes the underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("inventory: watch %s: %w", w.root, err)
	}
	if err := w.Reload(); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !IsInventoryFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("inventory changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-timer.C:
			_ = w.Reload()
		}
	}
}
