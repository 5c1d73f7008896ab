package hostsfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Guard watches the hosts file for changes made by anything other than the
// manager and nudges the engine so the managed block is repaired on the
// next write cycle.
type Guard struct {
	logger zerolog.Logger
	path   string
	notify func()
}

func NewGuard(path string, notify func(), logger zerolog.Logger) *Guard {
	return &Guard{
		logger: logger,
		path:   filepath.Clean(path),
		notify: notify,
	}
}

// Run blocks until ctx is cancelled. The watch is placed on the directory
// rather than the file itself: rename-based writers replace the inode, and
// a watch pinned to the old inode goes quiet after the first replacement.
func (g *Guard) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(g.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	g.logger.Debug().Str("path", g.path).Msg("guarding hosts file")

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != g.path {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			g.logger.Debug().Str("op", evt.Op.String()).Msg("hosts file changed on disk")
			g.notify()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn().Err(err).Msg("hosts file watcher error")
		}
	}
}
