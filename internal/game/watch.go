package game

import (
	"os"
	"sync"
	"time"
)

// FileWatcher polls file modification times and triggers a callback on change.
// Creating or removing a watched file counts as a change.
type FileWatcher struct {
	Paths    []string
	Interval time.Duration
	onChange func(string) // called with path that changed

	stopCh   chan struct{}
	stopOnce sync.Once
	last     map[string]time.Time // zero time => file absent
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		Paths:    paths,
		Interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		last:     make(map[string]time.Time),
	}
}

// Start primes the mtimes, then polls in a goroutine.
func (w *FileWatcher) Start() {
	w.scanAll(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// scanAll checks mtimes and invokes onChange for files that changed since last scan.
func (w *FileWatcher) scanAll(prime bool) {
	for _, p := range w.Paths {
		var mt time.Time
		if fi, err := os.Stat(p); err == nil {
			mt = fi.ModTime()
		}
		last, seen := w.last[p]
		w.last[p] = mt
		if prime || !seen {
			continue
		}
		if !mt.Equal(last) && w.onChange != nil {
			w.onChange(p)
		}
	}
}
