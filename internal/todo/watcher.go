package todo

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to specific files. It watches the parent
// directories rather than the files so atomic rename-writes are seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]int
	onChange func(string)
	debounce time.Duration
	mu       sync.RWMutex
	done     chan struct{}

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

func NewWatcher(onChange func(string)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  watcher,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		onChange: onChange,
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}

	go w.watch()
	return w, nil
}

func (w *Watcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[absPath] {
		return nil // Already watching
	}

	dir := filepath.Dir(absPath)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

func (w *Watcher) RemoveFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[absPath] {
		return nil // Not watching
	}
	delete(w.files, absPath)

	dir := filepath.Dir(absPath)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		return w.watcher.Remove(dir)
	}
	return nil
}

func (w *Watcher) watching(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			if !w.watching(name) {
				continue
			}
			w.schedule(name)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore the error and keep watching

		case <-w.done:
			return
		}
	}
}

// schedule (re)starts the debounce timer for name.
func (w *Watcher) schedule(name string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if timer, exists := w.timers[name]; exists {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() { w.fire(name, timer) })
	w.timers[name] = timer
}

// fire reports name unless timer was replaced by a newer one, which will
// report it instead.
func (w *Watcher) fire(name string, timer *time.Timer) {
	w.timersMu.Lock()
	current := w.timers[name] == timer
	if current {
		delete(w.timers, name)
	}
	w.timersMu.Unlock()

	if current && w.watching(name) && w.onChange != nil {
		w.onChange(name)
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
