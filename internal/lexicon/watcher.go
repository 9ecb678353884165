package lexicon

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cvscore/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// ReloadCallback is called after every reload attempt. lex is nil when err is set.
type ReloadCallback func(lex *Lexicon, err error)

// Watcher reloads an external lexicon file into a Store whenever it changes
type Watcher struct {
	mu sync.RWMutex

	file        string
	store       *Store
	lastModTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onReload ReloadCallback
	logger   *errors.Logger

	running bool
}

// NewWatcher creates a watcher for file that swaps reloaded lexicons into store
func NewWatcher(file string, store *Store, debounceDelay time.Duration, onReload ReloadCallback, logger *errors.Logger) (*Watcher, error) {
	if file == "" {
		return nil, fmt.Errorf("lexicon file path is required")
	}
	if store == nil {
		return nil, fmt.Errorf("lexicon store is required")
	}
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}

	return &Watcher{
		file:          filepath.Clean(file),
		store:         store,
		debounceDelay: debounceDelay,
		reloadChan:    make(chan struct{}, 1),
		onReload:      onReload,
		logger:        logger,
	}, nil
}

// Start begins watching the lexicon file
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("lexicon watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsWatcher = watcher

	if stat, err := os.Stat(w.file); err == nil {
		w.lastModTime = stat.ModTime()
	}

	// Watch the directory so editors that write via rename are still seen
	dir := filepath.Dir(w.file)
	if err := w.fsWatcher.Add(dir); err != nil {
		_ = w.fsWatcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w.stopChan = make(chan struct{})
	w.running = true
	go w.watchLoop(w.fsWatcher, w.stopChan)

	if w.logger != nil {
		w.logger.Info("Lexicon file watcher started",
			"file", w.file,
			"debounce_delay", w.debounceDelay)
	}
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			if w.logger != nil {
				w.logger.LogError(err, "Failed to close lexicon file watcher")
			}
			return err
		}
	}

	w.running = false

	if w.logger != nil {
		w.logger.Info("Lexicon file watcher stopped")
	}
	return nil
}

// IsRunning returns whether the watcher is currently running
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// File returns the watched lexicon path
func (w *Watcher) File() string {
	return w.file
}

func (w *Watcher) watchLoop(fsWatcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.scheduleReload()
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.LogError(err, "Lexicon watcher error")
			}

		case <-w.reloadChan:
			if w.hasFileChanged() {
				w.Reload()
			}

		case <-stop:
			return
		}
	}
}

// Reload loads the file now and swaps it into the store when it is valid.
// An invalid file leaves the current lexicon in place.
func (w *Watcher) Reload() {
	lex, err := Load(w.file)
	if err != nil {
		if w.logger != nil {
			w.logger.LogError(err, "Lexicon reload failed, keeping current lexicon", "file", w.file)
		}
		if w.onReload != nil {
			w.onReload(nil, err)
		}
		return
	}

	w.store.Swap(lex, w.file)
	if w.logger != nil {
		w.logger.Info("Lexicon reloaded", "file", w.file, "version", lex.Version)
	}
	if w.onReload != nil {
		w.onReload(lex, nil)
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.file && filepath.Base(event.Name) != filepath.Base(w.file) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) hasFileChanged() bool {
	stat, err := os.Stat(w.file)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastModTime.IsZero() || stat.ModTime().After(w.lastModTime) {
		w.lastModTime = stat.ModTime()
		return true
	}
	return false
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}
