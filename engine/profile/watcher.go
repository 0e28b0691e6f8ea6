package profile

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/tessera-go/common"
)

// watchDebounce batches editor write bursts into one reload.
const watchDebounce = 250 * time.Millisecond

// Watch reloads profile JSON files in dir as they change on disk. A file
// that fails to parse or validate is logged and skipped; the library keeps
// its previous profiles, so a designer typo never blanks the running
// visuals.
//
// Parameters:
//   - dir: the directory to watch for *.json changes
//
// Returns:
//   - func(): stop function, idempotent; ends the watch goroutine
//   - error: non-nil if the watcher cannot be created or dir cannot be added
func (l *Library) Watch(dir string) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("profile watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("profile watcher %s: %w", dir, err)
	}

	quit := make(chan struct{})
	go func() {
		debounce := time.NewTimer(0)
		if !debounce.Stop() {
			<-debounce.C
		}
		pending := map[string]struct{}{}
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !reloadableEvent(ev) {
					continue
				}
				pending[ev.Name] = struct{}{}
				debounce.Reset(watchDebounce)
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				common.Logger().Warn("profile watcher error", "error", werr)
			case <-debounce.C:
				for path := range pending {
					if err := l.LoadFile(path); err != nil {
						common.Logger().Warn("profile reload failed, keeping previous", "file", path, "error", err)
						continue
					}
					common.Logger().Info("profiles reloaded", "file", path)
				}
				clear(pending)
			case <-quit:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			_ = w.Close()
		})
	}, nil
}

func reloadableEvent(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasSuffix(ev.Name, ".json")
}
