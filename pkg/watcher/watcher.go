// Package watcher subscribes to filesystem changes under a project root,
// and notifies the relevant ones (not ignored, not inside the .git
// directory) as change events. There is no debouncing: every relevant
// change produces a notification.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/bpineau/autogit/pkg/event"
)

type logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Watcher notifies changes under a project directory
type Watcher struct {
	logger   logger
	project  string
	ignored  func(path string, isDir bool) bool
	notifier event.Notifier
	fsw      *fsnotify.Watcher
	stopch   chan struct{}
	donech   chan struct{}
}

// New creates a Watcher for project, an absolute path. ignored tells which
// absolute paths shouldn't trigger notifications.
func New(log logger, project string, ignored func(path string, isDir bool) bool, notifier event.Notifier) *Watcher {
	return &Watcher{
		logger:   log,
		project:  project,
		ignored:  ignored,
		notifier: notifier,
	}
}

// Start subscribes to the project's tree and forwards its changes
func (w *Watcher) Start() (*Watcher, error) {
	w.logger.Infof("Watching for changes in %s", w.project)

	fi, err := os.Stat(w.project)
	if err != nil {
		return nil, fmt.Errorf("can't watch %s: %v", w.project, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("can't watch %s: not a directory", w.project)
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create a filesystem watcher: %v", err)
	}

	if err = w.addTree(w.project); err != nil {
		_ = w.fsw.Close()
		return nil, err
	}

	w.stopch = make(chan struct{})
	w.donech = make(chan struct{})

	go func() {
		defer close(w.donech)

		for {
			select {
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				w.handle(ev)
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.logger.Errorf("watch error in %s: %v", w.project, err)
			case <-w.stopch:
				return
			}
		}
	}()

	return w, nil
}

// Stop stops the watcher goroutine and releases the subscription
func (w *Watcher) Stop() {
	w.logger.Infof("Stopping watcher for %s", w.project)
	close(w.stopch)
	<-w.donech
	if err := w.fsw.Close(); err != nil {
		w.logger.Errorf("failed to close watcher for %s: %v", w.project, err)
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if w.inGitDir(ev.Name) {
		return
	}

	rel, _ := filepath.Rel(w.project, ev.Name)

	// removed paths can't be stat'ed anymore: they're matched as files
	isDir := false
	if fi, err := os.Stat(ev.Name); err == nil {
		isDir = fi.IsDir()
	}

	if w.ignored(ev.Name, isDir) {
		w.logger.Debugf("Ignoring: %s", rel)
		return
	}

	var action event.Action
	switch {
	case ev.Has(fsnotify.Create):
		action = event.Add
		if isDir {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Errorf("%v", err)
			}
		}
	case ev.Has(fsnotify.Write):
		action = event.Change
	case ev.Has(fsnotify.Remove):
		action = event.Remove
	default:
		// renames are followed by a create, chmods don't change content
		return
	}

	w.logger.Debugf("File %s has been changed. Event: %s", rel, action)

	w.notifier.Send(&event.Notification{
		Action:  action,
		Path:    ev.Name,
		Project: w.project,
	})
}

// addTree subscribes to dir and to all its non ignored subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to walk %s: %v", dir, err)
			}
			w.logger.Errorf("failed to walk %s: %v", path, err)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if w.inGitDir(path) || (path != w.project && w.ignored(path, true)) {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %v", path, err)
		}

		return nil
	})
}

func (w *Watcher) inGitDir(path string) bool {
	rel, err := filepath.Rel(w.project, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == ".git" || strings.HasPrefix(rel, ".git/")
}
