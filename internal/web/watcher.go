package web

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// SnapshotWatcher watches the snapshot file on disk. The in-memory
// collections stay as loaded for the process lifetime, so a replaced
// file only produces a log line telling the operator to restart.
type SnapshotWatcher struct {
	path    string
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewSnapshotWatcher creates a watcher for the snapshot at path.
func NewSnapshotWatcher(path string) (*SnapshotWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &SnapshotWatcher{
		path:    path,
		watcher: fsWatcher,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the snapshot's directory. Watching the
// directory instead of the file survives the atomic rename the
// downloader performs.
func (w *SnapshotWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.running = true

	go w.loop()
	log.Debug().Str("path", w.path).Msg("Snapshot watcher started")
	return nil
}

func (w *SnapshotWatcher) loop() {
	target := filepath.Clean(w.path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				log.Warn().
					Str("path", w.path).
					Str("op", event.Op.String()).
					Msg("Snapshot file changed on disk; restart to serve the new data")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Snapshot watcher error")
		case <-w.done:
			return
		}
	}
}

// Stop halts the watcher. Safe to call more than once.
func (w *SnapshotWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.done)
	if err := w.watcher.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close snapshot watcher")
	}
	w.running = false
}
