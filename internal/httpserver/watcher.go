package httpserver

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 300 * time.Millisecond

// watchFallback hot-reloads the fallback dataset when its file changes.
// The returned stop function closes the watcher and waits for the goroutine.
func (s *Server) watchFallback(path string) (stop func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("failed to create fallback watcher", "error", err)
		return func() {}
	}

	// Watch the directory: editors replace files on save, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		s.logger.Warn("failed to watch fallback dataset", "path", path, "error", err)
		_ = watcher.Close()
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var debounce *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Chmod != 0 {
					continue
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}

				if debounce != nil {
					debounce.Reset(reloadDebounce)
					continue
				}
				debounce = time.AfterFunc(reloadDebounce, func() {
					if err := s.fb.Reload(path); err != nil {
						s.logger.Warn("fallback dataset reload failed", "path", path, "error", err)
						return
					}
					s.logger.Info("fallback dataset reloaded", "path", path)
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("fallback watcher error", "error", err)
			}
		}
	}()

	return func() {
		_ = watcher.Close()
		<-done
	}
}
