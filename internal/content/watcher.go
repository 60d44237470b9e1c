package content

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"folio/internal/observability"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for further changes.
const DefaultDebounce = 300 * time.Millisecond

// Invalidator is told when the content on disk changed.
type Invalidator interface {
	Invalidate()
}

// Watcher invalidates a store when documents under a directory change.
// Bursts of events collapse into one invalidation per debounce window.
type Watcher struct {
	dir      string
	target   Invalidator
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *slog.Logger

	done chan struct{}
	once sync.Once
}

// NewWatcher watches dir and every directory below it.
func NewWatcher(dir string, target Invalidator, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		dir:      dir,
		target:   target,
		debounce: debounce,
		fsw:      fsw,
		logger:   observability.Logger.With(slog.String("component", "content_watcher")),
		done:     make(chan struct{}),
	}
	if err := w.addRecursive(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := d.Name()
		if path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", slog.String("path", path), slog.String("error", err.Error()))
		}
		return nil
	})
}

// Run processes events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			pending = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", slog.String("error", err.Error()))

		case <-timerC:
			timerC = nil
			if pending {
				pending = false
				w.logger.Debug("content changed, invalidating")
				w.target.Invalidate()
			}
		}
	}
}

// Close stops the watcher and releases its file descriptors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}
