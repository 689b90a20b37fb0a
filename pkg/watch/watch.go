// Package watch reloads datasets when they change on disk, so a running
// solver can overwrite its output file and the viewer follows along.
package watch

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay coalesces the burst of write events a single file save
// produces into one reload.
const DebounceDelay = 250 * time.Millisecond

// Watcher debounces filesystem events on one directory and invokes a
// callback per settled file.
type Watcher struct {
	fs       *fsnotify.Watcher
	onChange func(path string)

	mu       sync.Mutex
	pending  map[string]*time.Timer
	done     chan struct{}
	closeOne sync.Once
}

// New starts watching dir. onChange is called with the absolute path of
// each file whose writes have settled; it runs on the watcher goroutine.
func New(dir string, onChange func(path string)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{
		fs:       fs,
		onChange: onChange,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	go w.loop()
	log.Printf("watch: watching %s", dir)
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)

		case <-w.done:
			return
		}
	}
}

// schedule arms (or re-arms) the debounce timer for one path.
func (w *Watcher) schedule(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[abs]; ok {
		timer.Reset(DebounceDelay)
		return
	}
	w.pending[abs] = time.AfterFunc(DebounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, abs)
		w.mu.Unlock()

		select {
		case <-w.done:
			return
		default:
		}
		w.onChange(abs)
	})
}

// Close stops the watcher and cancels pending callbacks.
func (w *Watcher) Close() error {
	var err error
	w.closeOne.Do(func() {
		close(w.done)
		w.mu.Lock()
		for path, timer := range w.pending {
			timer.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()
		err = w.fs.Close()
	})
	return err
}
