// Package watch reports changes to a single file on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher signals on Changes whenever its file is written or recreated.
// Bursts of events coalesce into one signal.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
	once    sync.Once
	log     zerolog.Logger
}

// New watches path. The parent directory is watched so editors that
// replace the file on save are still seen.
func New(path string, log zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("error accessing file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:    abs,
		fs:      fsw,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     log.With().Str("file", abs).Logger(),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Changes is closed when Run returns.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run delivers events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	w.log.Debug().Msg("watching file")

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
				// a change is already pending
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("fsnotify watcher error")

		case <-w.done:
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
