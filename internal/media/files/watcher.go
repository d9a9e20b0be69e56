package files

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/kakera-app/kakera-server/internal/store"
)

// Watcher monitors the media tree for out-of-band changes. Uploads go
// through Storage, so anything removed underneath us means the filesystem
// and the entry rows have drifted apart. The watcher surfaces that drift
// in the logs instead of letting broken media URLs go unnoticed.
type Watcher struct {
	storage *Storage
	store   store.Store
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher creates a watcher over the storage's media directories.
func NewWatcher(storage *Storage, st store.Store, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	for _, kind := range []Kind{KindImage, KindAudio} {
		dir := filepath.Join(storage.BasePath(), string(kind))
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return &Watcher{
		storage: storage,
		store:   st,
		logger:  logger,
		watcher: fsWatcher,
		done:    make(chan struct{}),
	}, nil
}

// Start begins processing filesystem events until the context is canceled
// or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.processEvents(ctx)
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("media watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	kind := Kind(filepath.Base(filepath.Dir(event.Name)))
	name := filepath.Base(event.Name)
	if !kind.Valid() {
		return
	}

	url := URLPath(kind, name)
	referenced, err := w.isReferenced(ctx, url)
	if err != nil {
		w.logger.Warn("failed to check media references", "url", url, "error", err)
		return
	}

	if referenced {
		w.logger.Warn("referenced media file removed from disk",
			"url", url,
			"path", event.Name,
		)
	} else {
		w.logger.Debug("unreferenced media file removed", "path", event.Name)
	}
}

// isReferenced reports whether any entry still points at the URL.
func (w *Watcher) isReferenced(ctx context.Context, url string) (bool, error) {
	urls, err := w.store.ListMediaURLs(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range urls {
		if u == url {
			return true, nil
		}
	}
	return false, nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
