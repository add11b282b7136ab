package catalog

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the catalog root for filesystem changes and emits on the
// returned channel whenever a file under it is created, written, removed,
// or renamed. The loader's own cache is invalidated on every event before
// the signal is forwarded, so a subscriber never observes a stale read
// racing a fresh notification. The channel is closed when ctx is done or
// the watcher's event or error stream ends. If the watcher cannot be
// started, Watch returns the error and no channel.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(l.root); err != nil {
		watcher.Close()
		return nil, err
	}
	for _, t := range typeDirs(l.root) {
		_ = watcher.Add(t) // best-effort: a type dir may not exist yet
	}

	events := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				l.InvalidateCache()
				select {
				case events <- struct{}{}:
				default:
					// a pending notification already covers this one
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnw("catalog watch error", "error", err)
			}
		}
	}()
	return events, nil
}

func typeDirs(root string) []string {
	dirs := make([]string, 0, 5)
	for _, t := range []string{"agents", "commands", "hooks", "templates", "mcps"} {
		dirs = append(dirs, filepath.Join(root, t))
	}
	return dirs
}
