package live

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WatchFile publishes topics whenever the database file at path, or one of
// its -wal/-shm companions, is written by any process. With no topics every
// subscriber is signalled. The watch ends when ctx is done.
func WatchFile(ctx context.Context, hub *Hub, path string, topics ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	// SQLite replaces and creates companion files, so watch the directory.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	base := filepath.Base(path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(ev.Name), base) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if len(topics) == 0 {
					hub.log.Debug("database changed", "path", ev.Name)
					hub.PublishAll()
					continue
				}
				for _, t := range topics {
					hub.log.Debug("database changed", "path", ev.Name, "topic", t, "subscribers", hub.Subscribers(t))
				}
				hub.Publish(topics...)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				hub.log.Warn("file watch error", "path", path, "error", err)
			}
		}
	}()
	return nil
}
