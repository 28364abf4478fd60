package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dgallion1/frontmark/internal/parser"
	"github.com/fsnotify/fsnotify"
)

// Watcher feeds the pipeline from a drop folder: files created or
// modified under the root that match one of the include globs are
// submitted as ingestion jobs.
type Watcher struct {
	orch     *Orchestrator
	watcher  *fsnotify.Watcher
	root     string
	globs    []string
	log      *slog.Logger
	debounce map[string]*time.Timer
	mu       sync.Mutex
}

func NewWatcher(orch *Orchestrator, root string, globs []string, log *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		orch:     orch,
		watcher:  fw,
		root:     root,
		globs:    globs,
		log:      log,
		debounce: make(map[string]*time.Timer),
	}

	// Watch the root and all subdirectories.
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			fw.Add(path)
		}
		return nil
	})

	return w, nil
}

// Start begins watching for changes. Blocks until Stop is called.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if !w.matches(path) {
		// But watch new directories.
		if event.Has(fsnotify.Create) {
			info, err := os.Stat(path)
			if err == nil && info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
				w.watcher.Add(path)
			}
		}
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	// Debounce: wait 500ms so half-written files settle.
	w.mu.Lock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(500*time.Millisecond, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()
		w.submit(path)
	})
	w.mu.Unlock()
}

func (w *Watcher) matches(path string) bool {
	if !parser.IsSupportedExtension(path) {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if len(w.globs) == 0 {
		return true
	}
	for _, g := range w.globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) submit(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		w.log.Warn("read dropped file", "path", path, "error", err)
		return
	}

	now := time.Now()
	job := &Job{
		ID:        NewJobID(),
		DocID:     ContentHashHex(data)[:16],
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filepath.Base(path),
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	if err := w.orch.Submit(job); err != nil {
		w.log.Error("submit watched file", "path", path, "error", err)
		return
	}
	w.log.Info("watched file queued", "path", path, "job_id", job.ID)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
