package service

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/ludo-technologies/jsboard/internal/ignore"
)

// Watcher turns file-system events under the analysis root into change
// notifications. Excluded directories are never watched.
type Watcher struct {
	fs      *fsnotify.Watcher
	matcher *ignore.Matcher
	notify  func(path string)
	logger  *log.Logger
}

// NewWatcher creates a watcher. notify is called for every relevant event.
func NewWatcher(matcher *ignore.Matcher, notify func(path string), logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fs:      fsw,
		matcher: matcher,
		notify:  notify,
		logger:  orDiscard(logger),
	}, nil
}

// AddTree watches dir and every non-excluded directory below it
func (w *Watcher) AddTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.logger.Debug("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.matcher.Root() && w.matcher.Excluded(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", "path", path, "err", err)
		}
		return nil
	})
}

// Run forwards events until ctx is done. Watcher errors are logged and do
// not stop the loop.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if w.matcher.Excluded(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if isDir, err := statDir(event.Name); err == nil && isDir {
			if err := w.AddTree(event.Name); err != nil {
				w.logger.Warn("cannot watch new directory", "path", event.Name, "err", err)
			}
			w.notify(event.Name)
			return
		}
	}

	// A removed or renamed directory may have held tracked files
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if filepath.Ext(event.Name) == "" {
			w.notify(event.Name)
			return
		}
	}

	if w.matcher.Accept(event.Name) {
		w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
		w.notify(event.Name)
	}
}

func statDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.fs.Close()
}
