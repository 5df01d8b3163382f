package asset

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Reloader is implemented by stores that can refresh a changed file.
type Reloader interface {
	Reload(path string)
}

// Watcher forwards file system changes under root to a Reloader. Paths
// handed to the Reloader are relative to root.
type Watcher struct {
	watcher *fsnotify.Watcher
	target  Reloader
	root    string
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewWatcher(target Reloader, root string, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, dir := range dirs {
		if err := w.Add(filepath.Join(root, dir)); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		target:  target,
		root:    root,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// run reloads a path once no event for it has arrived for debounceDelay.
func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()
	fire := make(chan string)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				continue
			}
			rel = CleanPath(rel)
			if t, ok := pending[rel]; ok {
				t.Reset(debounceDelay)
				continue
			}
			pending[rel] = time.AfterFunc(debounceDelay, func() {
				select {
				case fire <- rel:
				case <-w.closeCh:
				}
			})
		case rel := <-fire:
			delete(pending, rel)
			w.target.Reload(rel)
			select {
			case w.Events <- rel:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
