// Package watch keeps the index current while session files are written.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Zuo-Peng/cc-session-search/internal/index"
	"github.com/Zuo-Peng/cc-session-search/internal/parse"
	"github.com/Zuo-Peng/cc-session-search/internal/scan"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher re-indexes session files under Root as they change. fsnotify is
// not recursive, so every directory below Root is watched and new ones are
// added as they appear.
type Watcher struct {
	Root    string
	Indexer *index.Indexer
	// Debounce is how long a file must stay quiet before it is re-indexed.
	Debounce time.Duration
	// OnIndex is called after each file is re-indexed or removed.
	OnIndex func(path string, err error)

	fsw     *fsnotify.Watcher
	pending map[string]time.Time
}

// New starts watching root. Call Run to process events and Close when done.
func New(root string, ix *index.Indexer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		Root:     root,
		Indexer:  ix,
		Debounce: defaultDebounce,
		fsw:      fsw,
		pending:  make(map[string]time.Time),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	tick := time.NewTicker(debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("WARN: watch: %v", err)
		case now := <-tick.C:
			for path, last := range w.pending {
				if now.Sub(last) < debounce {
					continue
				}
				delete(w.pending, path)
				w.reindex(path)
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				log.Printf("WARN: watch %s: %v", ev.Name, err)
			}
			return
		}
	}
	if !scan.IsSessionFile(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.pending[ev.Name] = time.Now()
	}
}

// addTree watches dir and every directory below it. Session files already
// present are queued, since they may have been written before the watch
// was in place.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if dir != w.Root && scan.IsSessionFile(path) {
			w.pending[path] = time.Now()
		}
		return nil
	})
}

func (w *Watcher) reindex(path string) {
	fi, ok, err := scan.Stat(w.Root, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = w.Indexer.DB.DeleteSession(scan.SessionID(path))
	case err != nil:
	case !ok:
		return
	default:
		err = w.Indexer.IndexFile(fi)
	}

	var empty *parse.EmptyFileError
	if err != nil && !errors.As(err, &empty) {
		log.Printf("WARN: reindex %s: %v", path, err)
	}
	if w.OnIndex != nil {
		w.OnIndex(path, err)
	}
}
