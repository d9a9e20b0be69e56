package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/kakera-app/kakera-server/internal/logger"
	"github.com/kakera-app/kakera-server/internal/media/files"
	"github.com/kakera-app/kakera-server/internal/service"
)

// FileWatcherHandle wraps the media watcher with shutdown capability.
type FileWatcherHandle struct {
	*files.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the media directory watcher. It logs drift
// between uploaded files on disk and the entries that reference them.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	storage := do.MustInvoke[*files.Storage](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	w, err := files.NewWatcher(storage, storeHandle.Store, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	log.Info("Media watcher started", "path", storage.BasePath())

	return &FileWatcherHandle{Watcher: w, cancel: cancel}, nil
}

// SessionCleanupHandle runs the periodic expired-session purge.
type SessionCleanupHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *SessionCleanupHandle) Shutdown() error {
	h.cancel()
	select {
	case <-h.done:
	case <-time.After(shutdownTimeout):
	}
	return nil
}

// ProvideSessionCleanupJob provides the background job that deletes
// expired auth sessions on an interval.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupHandle, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := sessionService.DeleteExpiredSessions(ctx)
				if err != nil {
					log.Warn("Session cleanup failed", "error", err)
					continue
				}
				if deleted > 0 {
					log.Info("Expired sessions removed", "count", deleted)
				}
			}
		}
	}()

	log.Info("Session cleanup job started", "interval", sessionCleanupInterval)

	return &SessionCleanupHandle{cancel: cancel, done: done}, nil
}
